/*
Package msgauthtest provides helpers for testing code that verifies and
aggregates owner signatures.
*/
package msgauthtest

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/msgauth/sigcodec"
)

// Key is a secp256k1 key pair able to sign hashes the way wallets do.
type Key struct {
	priv *ecdsa.PrivateKey
}

// NewKey generates a new random key. It panics on failure, which can only
// happen if the system random source is broken.
func NewKey() *Key {
	priv, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &Key{priv: priv}
}

// Address returns the identity recovered from this key's signatures.
func (k *Key) Address() common.Address {
	return crypto.PubkeyToAddress(k.priv.PublicKey)
}

// Sign returns a plain key record signing given hash.
func (k *Key) Sign(t testing.TB, hash common.Hash) sigcodec.Record {
	t.Helper()
	return k.sign(t, hash[:], 27)
}

// SignEthSign returns a legacy eth_sign record: the hash is signed as a
// personal message and the recovery tag is shifted by 4.
func (k *Key) SignEthSign(t testing.TB, hash common.Hash) sigcodec.Record {
	t.Helper()
	return k.sign(t, accounts.TextHash(hash[:]), 31)
}

func (k *Key) sign(t testing.TB, digest []byte, base byte) sigcodec.Record {
	t.Helper()
	sig, err := crypto.Sign(digest, k.priv)
	if err != nil {
		t.Fatalf("cannot sign: %s", err)
	}
	sig[64] += base
	rec, err := sigcodec.FromRSV(sig)
	if err != nil {
		t.Fatalf("cannot build record: %s", err)
	}
	return rec
}

// SortKeys orders keys by ascending address, the order in which records
// must appear in an aggregated signature.
func SortKeys(keys []*Key) []*Key {
	out := append([]*Key(nil), keys...)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Address(), out[j].Address()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out
}

// RandomAddr returns a random address, usually used as an account or as an
// owner that never signs.
func RandomAddr() common.Address {
	var a common.Address
	if _, err := rand.Read(a[:]); err != nil {
		panic(err)
	}
	return a
}

// Addr returns an address with all bytes set to b. Handy for building
// addresses with a known order.
func Addr(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// ContractRecord packs records as the payload of a contract record signed
// on behalf of owner. Records must already be in ascending signer order.
func ContractRecord(owner common.Address, records ...sigcodec.Record) sigcodec.Record {
	return sigcodec.NewContractRecord(owner, sigcodec.Encode(records))
}
