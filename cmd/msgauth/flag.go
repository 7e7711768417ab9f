package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *common.Address {
	var a flagAddress
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return (*common.Address)(&a)
}

type flagAddress common.Address

func (a flagAddress) String() string {
	return common.Address(a).Hex()
}

func (a *flagAddress) Set(raw string) error {
	if !common.IsHexAddress(raw) {
		return fmt.Errorf("%q is not a hex encoded address", raw)
	}
	*a = flagAddress(common.HexToAddress(raw))
	return nil
}

// flHash returns a 32 byte hash value. See flAddress.
func flHash(fl *flag.FlagSet, name, usage string) *common.Hash {
	var h flagHash
	fl.Var(&h, name, usage)
	return (*common.Hash)(&h)
}

type flagHash common.Hash

func (h flagHash) String() string {
	return common.Hash(h).Hex()
}

func (h *flagHash) Set(raw string) error {
	b, err := hexutil.Decode(raw)
	if err != nil {
		return err
	}
	if len(b) != common.HashLength {
		return fmt.Errorf("want %d bytes, got %d", common.HashLength, len(b))
	}
	*h = flagHash(common.BytesToHash(b))
	return nil
}

// flHex returns a 0x prefixed hex encoded value. See flAddress.
func flHex(fl *flag.FlagSet, name, usage string) *[]byte {
	var b flagBytes
	fl.Var(&b, name, usage)
	return (*[]byte)(&b)
}

type flagBytes []byte

func (b flagBytes) String() string {
	return hexutil.Encode(b)
}

func (b *flagBytes) Set(raw string) error {
	val, err := hexutil.Decode(raw)
	if err != nil {
		return err
	}
	*b = val
	return nil
}
