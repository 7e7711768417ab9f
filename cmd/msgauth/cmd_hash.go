package main

import (
	"flag"
	"fmt"
	"io"
	"math/big"

	"github.com/iov-one/msgauth/msghash"
)

func cmdHash(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Compute the hash owners of an account sign for a message. The message is read
from the input as JSON: a string for a text message or an EIP-712 typed data
document.
`)
		fl.PrintDefaults()
	}
	var (
		accountFl = flAddress(fl, "account", "", "Address of the account the message is for.")
		chainFl   = fl.Int64("chain", 1, "Chain ID of the network the account lives on.")
		digestFl  = fl.Bool("digest", false, "Print the message digest that is not bound to the account instead.")
	)
	fl.Parse(args)

	msg, err := readMessage(input)
	if err != nil {
		return err
	}
	if *digestFl {
		digest, err := msghash.Digest(msg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(output, digest.Hex())
		return err
	}
	hash, err := msghash.Compute(*accountFl, big.NewInt(*chainFl), msg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, hash.Hex())
	return err
}

func readMessage(input io.Reader) (msghash.Message, error) {
	raw, err := io.ReadAll(input)
	if err != nil {
		return msghash.Message{}, fmt.Errorf("cannot read message: %s", err)
	}
	return msghash.ParseMessage(raw)
}
