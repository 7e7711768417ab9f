package sigcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// RecordLen is the size of a static record: r(32) s(32) v(1).
const RecordLen = 65

// Type tells how a record authenticates its signer.
type Type int32

const (
	TypeUnknown      Type = 0
	TypeEOA          Type = 1
	TypeContract     Type = 2
	TypeApprovedHash Type = 3
	TypeEthSign      Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeEOA:
		return "eoa"
	case TypeContract:
		return "contract"
	case TypeApprovedHash:
		return "approved_hash"
	case TypeEthSign:
		return "eth_sign"
	default:
		return fmt.Sprintf("type(%d)", int32(t))
	}
}

// Record is a single signer entry of a signature blob.
type Record struct {
	R common.Hash
	S common.Hash
	V byte
	// Payload is the dynamic part of a contract record: a signature blob
	// meant for the contract owner. Nil for every other type.
	Payload []byte
}

// Type returns the record kind, derived from its recovery tag.
func (r Record) Type() Type {
	switch r.V {
	case 0:
		return TypeContract
	case 1:
		return TypeApprovedHash
	case 27, 28:
		return TypeEOA
	case 31, 32:
		return TypeEthSign
	default:
		return TypeUnknown
	}
}

// Owner returns the signer embedded in r. It is meaningful only for contract
// and approved hash records, other signers are recovered cryptographically.
func (r Record) Owner() common.Address {
	return common.BytesToAddress(r.R[common.HashLength-common.AddressLength:])
}

// Bytes returns the canonical encoding of this single record.
func (r Record) Bytes() []byte {
	return Encode([]Record{r})
}

// NewContractRecord returns a record delegating validation to the contract
// owner, with the owner's own signature blob as payload.
func NewContractRecord(owner common.Address, payload []byte) Record {
	var r common.Hash
	copy(r[common.HashLength-common.AddressLength:], owner[:])
	return Record{R: r, V: 0, Payload: payload}
}

// NewApprovedHashRecord returns a record claiming that owner approved the
// hash on-chain.
func NewApprovedHashRecord(owner common.Address) Record {
	var r common.Hash
	copy(r[common.HashLength-common.AddressLength:], owner[:])
	return Record{R: r, V: 1}
}

// FromRSV builds a record from a 65 byte r||s||v signature.
func FromRSV(sig []byte) (Record, error) {
	if len(sig) != RecordLen {
		return Record{}, ErrTruncatedSignature.Newf("want %d bytes, got %d", RecordLen, len(sig))
	}
	var r Record
	copy(r.R[:], sig[:32])
	copy(r.S[:], sig[32:64])
	r.V = sig[64]
	return r, nil
}

func putOffset(dst []byte, n int) {
	for i := range dst[:24] {
		dst[i] = 0
	}
	binary.BigEndian.PutUint64(dst[24:], uint64(n))
}

// readUint returns the value of a 32 byte big endian word, or false if it
// does not fit in a non-negative int.
func readUint(word []byte) (int, bool) {
	for _, b := range word[:24] {
		if b != 0 {
			return 0, false
		}
	}
	v := binary.BigEndian.Uint64(word[24:])
	if v > uint64(maxInt) {
		return 0, false
	}
	return int(v), true
}

const maxInt = int(^uint(0) >> 1)
