/*
Package denylist holds the signers the engine refuses to accept.

A list is built once at startup and never changes afterwards, so it can be
shared by every request without locking.
*/
package denylist

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth/errors"
)

// Checker tells whether a signer is banned.
type Checker interface {
	IsBanned(common.Address) bool
}

// List is an immutable set of banned signers. A nil list bans nobody.
type List struct {
	banned map[common.Address]struct{}
}

var _ Checker = (*List)(nil)

// New returns a list banning given addresses.
func New(addrs ...common.Address) *List {
	banned := make(map[common.Address]struct{}, len(addrs))
	for _, a := range addrs {
		banned[a] = struct{}{}
	}
	return &List{banned: banned}
}

// Parse builds a list from hex encoded addresses, as found in a
// configuration file.
func Parse(hexAddrs []string) (*List, error) {
	addrs := make([]common.Address, 0, len(hexAddrs))
	for _, h := range hexAddrs {
		if !common.IsHexAddress(h) {
			return nil, errors.Wrapf(errors.ErrInput, "banned signer %q is not an address", h)
		}
		addrs = append(addrs, common.HexToAddress(h))
	}
	return New(addrs...), nil
}

// IsBanned returns true if addr is on the list.
func (l *List) IsBanned(addr common.Address) bool {
	if l == nil {
		return false
	}
	_, ok := l.banned[addr]
	return ok
}

// Len returns the number of banned signers.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.banned)
}
