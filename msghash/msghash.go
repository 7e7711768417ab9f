/*
Package msghash computes account scoped message hashes.

A message is either a plain text (hashed with the "\x19Ethereum Signed
Message:\n" personal message scheme) or an EIP-712 typed data document.
Its digest is then bound to an account and a chain id with the account's
own EIP-712 domain, producing the hash every signature must authenticate.

All functions in this package are pure.
*/
package msghash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/iov-one/msgauth/errors"
)

// Kind tells which hashing rule applies to a message.
type Kind int32

const (
	KindUnknown   Kind = 0
	KindText      Kind = 1
	KindTypedData Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTypedData:
		return "typed_data"
	default:
		return fmt.Sprintf("kind(%d)", int32(k))
	}
}

// Message is a closed variant over the supported message kinds. Build it
// with NewTextMessage, ParseMessage or FromPayload.
type Message struct {
	kind      Kind
	text      string
	typedData *apitypes.TypedData
	// payload is the message exactly as it was received.
	payload []byte
}

// NewTextMessage returns a plain text message.
func NewTextMessage(text string) Message {
	return Message{kind: KindText, text: text, payload: []byte(text)}
}

// ParseMessage decodes a JSON encoded message. A JSON string is a plain
// text message, a JSON object is a typed data document.
func ParseMessage(raw []byte) (Message, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Message{}, errors.Wrap(ErrMalformedMessage, "empty")
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return Message{}, errors.Wrapf(ErrMalformedMessage, "text: %s", err)
		}
		return NewTextMessage(text), nil
	case '{':
		return parseTypedData(trimmed)
	default:
		return Message{}, errors.Wrap(ErrMalformedMessage, "must be a string or an object")
	}
}

// FromPayload rebuilds a message from its stored representation.
func FromPayload(kind Kind, payload []byte) (Message, error) {
	switch kind {
	case KindText:
		return NewTextMessage(string(payload)), nil
	case KindTypedData:
		return parseTypedData(payload)
	default:
		return Message{}, errors.Wrapf(ErrMalformedMessage, "unknown kind %s", kind)
	}
}

func parseTypedData(raw []byte) (Message, error) {
	var td apitypes.TypedData
	if err := json.Unmarshal(raw, &td); err != nil {
		return Message{}, errors.Wrapf(ErrMalformedMessage, "typed data: %s", err)
	}
	if td.PrimaryType == "" {
		return Message{}, errors.Wrap(ErrMalformedMessage, "typed data: missing primary type")
	}
	payload := make([]byte, len(raw))
	copy(payload, raw)
	return Message{kind: KindTypedData, typedData: &td, payload: payload}, nil
}

// Kind returns the message variant.
func (m Message) Kind() Kind { return m.kind }

// Payload returns the message content as received: the UTF-8 text, or the
// typed data JSON document.
func (m Message) Payload() []byte { return m.payload }

// Text returns the content of a plain text message.
func (m Message) Text() string { return m.text }

// Digest returns the message digest, before it is bound to any account.
func Digest(m Message) (common.Hash, error) {
	switch m.kind {
	case KindText:
		return common.BytesToHash(accounts.TextHash([]byte(m.text))), nil
	case KindTypedData:
		if m.typedData == nil {
			return common.Hash{}, errors.Wrap(ErrMalformedMessage, "typed data not set")
		}
		h, _, err := apitypes.TypedDataAndHash(*m.typedData)
		if err != nil {
			return common.Hash{}, errors.Wrapf(ErrMalformedMessage, "typed data: %s", err)
		}
		return common.BytesToHash(h), nil
	default:
		return common.Hash{}, errors.Wrapf(ErrMalformedMessage, "unknown kind %s", m.kind)
	}
}

var (
	domainTypeHash  = crypto.Keccak256Hash([]byte("EIP712Domain(uint256 chainId,address verifyingContract)"))
	messageTypeHash = crypto.Keccak256Hash([]byte("SafeMessage(bytes message)"))
)

// DomainSeparator returns the EIP-712 domain separator of an account on a
// given chain.
func DomainSeparator(account common.Address, chainID *big.Int) common.Hash {
	return crypto.Keccak256Hash(
		domainTypeHash[:],
		math.U256Bytes(new(big.Int).Set(chainIDOrZero(chainID))),
		common.LeftPadBytes(account[:], 32),
	)
}

// Preimage returns the bytes whose keccak256 is the account hash of a
// message with the given keccak256.
func Preimage(account common.Address, chainID *big.Int, messageHash common.Hash) []byte {
	domain := DomainSeparator(account, chainID)
	structHash := crypto.Keccak256Hash(messageTypeHash[:], messageHash[:])

	out := make([]byte, 0, 2+2*common.HashLength)
	out = append(out, 0x19, 0x01)
	out = append(out, domain[:]...)
	out = append(out, structHash[:]...)
	return out
}

// WrapHash binds a message, identified by its keccak256, to an account.
//
// A contract owner validating a signature on behalf of its parent account
// receives the parent preimage as the message, so the owner must sign
// WrapHash(owner, chainID, parentHash).
func WrapHash(account common.Address, chainID *big.Int, messageHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(Preimage(account, chainID, messageHash))
}

// AccountHash returns the hash of arbitrary message bytes for an account.
func AccountHash(account common.Address, chainID *big.Int, message []byte) common.Hash {
	return WrapHash(account, chainID, crypto.Keccak256Hash(message))
}

// Compute returns the account scoped hash of a message. This is the key
// under which the message is stored and the hash its owners sign.
func Compute(account common.Address, chainID *big.Int, m Message) (common.Hash, error) {
	digest, err := Digest(m)
	if err != nil {
		return common.Hash{}, err
	}
	return AccountHash(account, chainID, digest[:]), nil
}

func chainIDOrZero(id *big.Int) *big.Int {
	if id == nil {
		return new(big.Int)
	}
	return id
}
