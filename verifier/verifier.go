/*
Package verifier authenticates single signature records.

Plain key and legacy eth_sign records are authenticated by public key
recovery. Pre-approved hash records are checked against the account state
through the directory. Contract records are checked recursively: the
embedded owner is itself a multi-party account and its payload must carry
enough valid signatures of its own owners over the owner's wrapped hash.
*/
package verifier

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msgauth/directory"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msghash"
	"github.com/iov-one/msgauth/sigcodec"
	"github.com/tendermint/tendermint/libs/log"
)

// DefaultMaxDepth is the number of nested contract owners accepted by
// default.
const DefaultMaxDepth = 10

// Verifier authenticates records against a directory. It holds no mutable
// state and can be shared.
type Verifier struct {
	dir      directory.OwnerDirectory
	chainID  *big.Int
	maxDepth int
	logger   log.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithMaxDepth sets the maximum number of nested contract owners.
func WithMaxDepth(n int) Option {
	return func(v *Verifier) {
		v.maxDepth = n
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l log.Logger) Option {
	return func(v *Verifier) {
		v.logger = l.With("module", "verifier")
	}
}

// New returns a verifier reading accounts from dir.
func New(dir directory.OwnerDirectory, chainID *big.Int, opts ...Option) *Verifier {
	v := &Verifier{
		dir:      dir,
		chainID:  chainID,
		maxDepth: DefaultMaxDepth,
		logger:   log.NewNopLogger(),
	}
	for _, fn := range opts {
		fn(v)
	}
	return v
}

// WithDirectory returns a copy of the verifier reading from dir. Use it to
// bind a per call directory snapshot.
func (v *Verifier) WithDirectory(dir directory.OwnerDirectory) *Verifier {
	cp := *v
	cp.dir = dir
	return &cp
}

// Verify returns the signer authenticated by rec for the hash of a message
// addressed to account. Owner set membership of the returned signer is not
// checked.
func (v *Verifier) Verify(ctx context.Context, rec sigcodec.Record, hash common.Hash, account common.Address) (common.Address, error) {
	return v.verify(ctx, rec, hash, []common.Address{account})
}

// verify authenticates rec in the context of the last account of path.
// Path holds every account on the way from the verified account down to
// the current one.
func (v *Verifier) verify(ctx context.Context, rec sigcodec.Record, hash common.Hash, path []common.Address) (common.Address, error) {
	switch rec.Type() {
	case sigcodec.TypeEOA:
		return recoverSigner(hash[:], rec, 27)
	case sigcodec.TypeEthSign:
		return recoverSigner(accounts.TextHash(hash[:]), rec, 31)
	case sigcodec.TypeApprovedHash:
		return v.approvedHash(ctx, rec, hash, path[len(path)-1])
	case sigcodec.TypeContract:
		return v.contract(ctx, rec, hash, path)
	default:
		return common.Address{}, errors.Wrapf(sigcodec.ErrUnknownSignatureType, "v=%d", rec.V)
	}
}

func recoverSigner(digest []byte, rec sigcodec.Record, base byte) (common.Address, error) {
	sig := make([]byte, sigcodec.RecordLen)
	copy(sig, rec.R[:])
	copy(sig[32:], rec.S[:])
	sig[64] = rec.V - base
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "recover: %s", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func (v *Verifier) approvedHash(ctx context.Context, rec sigcodec.Record, hash common.Hash, account common.Address) (common.Address, error) {
	owner := rec.Owner()
	approver, ok := v.dir.(directory.HashApprover)
	if !ok {
		return common.Address{}, errors.Wrapf(ErrInconclusive, "approval of %s cannot be checked", owner.Hex())
	}
	approved, err := approver.IsHashApproved(ctx, account, owner, hash)
	switch {
	case directory.ErrUnsupported.Is(err):
		return common.Address{}, errors.Wrapf(ErrInconclusive, "approval of %s cannot be checked", owner.Hex())
	case err != nil:
		return common.Address{}, directoryFailure(err, account)
	case !approved:
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "hash not approved by %s", owner.Hex())
	}
	return owner, nil
}

func (v *Verifier) contract(ctx context.Context, rec sigcodec.Record, hash common.Hash, path []common.Address) (common.Address, error) {
	owner := rec.Owner()
	for _, visited := range path {
		if visited == owner {
			return common.Address{}, errors.Wrapf(ErrDirectoryCycle, "%s reached twice", owner.Hex())
		}
	}
	if len(path) > v.maxDepth {
		return common.Address{}, errors.Wrapf(ErrRecursionTooDeep, "more than %d nested owners", v.maxDepth)
	}

	owners, err := v.dir.Owners(ctx, owner)
	if err != nil {
		if directory.ErrNotFound.Is(err) {
			return common.Address{}, errors.Wrapf(ErrInvalidSignature, "%s is not a contract owner", owner.Hex())
		}
		return common.Address{}, directoryFailure(err, owner)
	}
	threshold, err := v.dir.Threshold(ctx, owner)
	if err != nil {
		return common.Address{}, directoryFailure(err, owner)
	}
	if threshold == 0 {
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "%s has no threshold", owner.Hex())
	}

	records, err := sigcodec.Decode(rec.Payload)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "payload of %s", owner.Hex())
	}

	nestedHash := msghash.WrapHash(owner, v.chainID, hash)
	nestedPath := append(path[:len(path):len(path)], owner)

	var (
		last  common.Address
		valid uint64
	)
	for i, r := range records {
		signer, err := v.verify(ctx, r, nestedHash, nestedPath)
		if err != nil {
			return common.Address{}, errors.Wrapf(err, "record %d of %s", i, owner.Hex())
		}
		if i > 0 && bytes.Compare(signer[:], last[:]) <= 0 {
			return common.Address{}, errors.Wrapf(ErrInvalidSignature, "signers of %s not in ascending order", owner.Hex())
		}
		if !directory.IsOwner(owners, signer) {
			return common.Address{}, errors.Wrapf(ErrInvalidSignature, "%s is not an owner of %s", signer.Hex(), owner.Hex())
		}
		last = signer
		valid++
	}
	if valid < threshold {
		return common.Address{}, errors.Wrapf(ErrInvalidSignature, "%s needs %d signatures, got %d", owner.Hex(), threshold, valid)
	}

	v.logger.Debug("contract signature verified", "owner", owner.Hex(), "depth", len(path), "signers", valid)
	return owner, nil
}

// directoryFailure keeps the directory answer but makes sure it is reported
// as an unavailable directory unless it already carries a directory error.
func directoryFailure(err error, account common.Address) error {
	if directory.ErrUnavailable.Is(err) || directory.ErrNotFound.Is(err) {
		return errors.Wrapf(err, "account %s", account.Hex())
	}
	return errors.Wrapf(directory.ErrUnavailable, "account %s: %s", account.Hex(), err)
}
