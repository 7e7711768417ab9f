package directory

import (
	"context"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/iov-one/msgauth/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// accountABI is the subset of the multi-party account contract interface
// the directory reads.
const accountABI = `[
  {"type":"function","name":"getOwners","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"getThreshold","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approvedHashes","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"hash","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var parsedAccountABI = mustParseABI(accountABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Chain reads accounts from contract state through an Ethereum node. Every
// call hits the node, at the latest block.
type Chain struct {
	caller ethereum.ContractCaller
	logger log.Logger
}

var (
	_ OwnerDirectory = (*Chain)(nil)
	_ HashApprover   = (*Chain)(nil)
)

// NewChain returns a directory using caller for contract reads.
func NewChain(caller ethereum.ContractCaller, logger log.Logger) *Chain {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Chain{caller: caller, logger: logger.With("module", "directory")}
}

// DialChain connects to a node RPC endpoint.
func DialChain(ctx context.Context, url string, logger log.Logger) (*Chain, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "dial %s: %s", url, err)
	}
	return NewChain(client, logger), nil
}

func (c *Chain) Owners(ctx context.Context, account common.Address) ([]common.Address, error) {
	out, err := c.call(ctx, account, "getOwners")
	if err != nil {
		return nil, err
	}
	owners, ok := out[0].([]common.Address)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "account %s: unexpected owners type %T", account.Hex(), out[0])
	}
	return owners, nil
}

func (c *Chain) Threshold(ctx context.Context, account common.Address) (uint64, error) {
	out, err := c.call(ctx, account, "getThreshold")
	if err != nil {
		return 0, err
	}
	n, ok := out[0].(*big.Int)
	if !ok || !n.IsUint64() {
		return 0, errors.Wrapf(ErrNotFound, "account %s: invalid threshold %v", account.Hex(), out[0])
	}
	return n.Uint64(), nil
}

func (c *Chain) IsHashApproved(ctx context.Context, account, owner common.Address, hash common.Hash) (bool, error) {
	out, err := c.call(ctx, account, "approvedHashes", owner, hash)
	if err != nil {
		return false, err
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return false, errors.Wrapf(ErrNotFound, "account %s: unexpected approval type %T", account.Hex(), out[0])
	}
	return n.Sign() != 0, nil
}

func (c *Chain) call(ctx context.Context, account common.Address, method string, args ...interface{}) ([]interface{}, error) {
	input, err := parsedAccountABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrHuman, "pack %s: %s", method, err)
	}
	raw, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &account, Data: input}, nil)
	if err != nil {
		c.logger.Error("contract call failed", "account", account.Hex(), "method", method, "err", err)
		return nil, errors.Wrapf(ErrUnavailable, "%s on %s: %s", method, account.Hex(), err)
	}
	// An address without code answers with no data.
	if len(raw) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s is not a contract account", account.Hex())
	}
	out, err := parsedAccountABI.Unpack(method, raw)
	if err != nil || len(out) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s is not a multi-party account: %v", account.Hex(), err)
	}
	c.logger.Debug("contract call", "account", account.Hex(), "method", method)
	return out, nil
}
