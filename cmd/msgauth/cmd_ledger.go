package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/msgauth/ledger"
)

func cmdPropose(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Propose a new message for an account. The message is read from the input as
JSON. The signature must contain a record of at least one account owner.
On success the stored message is displayed.
`)
		fl.PrintDefaults()
	}
	var (
		confFl    = flConfig(fl)
		accountFl = flAddress(fl, "account", "", "Address of the account the message is for.")
		sigFl     = flHex(fl, "signature", "Hex encoded signature of one or more owners.")
		hashFl    = flHash(fl, "hash", "Optional message hash the signers claim to sign. Compared with the computed one.")
		originFl  = fl.String("origin", "", "Optional description of where the message comes from.")
		appFl     = fl.Int64("app", 0, "Optional ID of the application that submits the message.")
	)
	fl.Parse(args)

	msg, err := readMessage(input)
	if err != nil {
		return err
	}
	req := ledger.ProposeRequest{
		Account:   *accountFl,
		Message:   msg,
		Signature: *sigFl,
		Origin:    *originFl,
		AppID:     *appFl,
	}
	if *hashFl != (common.Hash{}) {
		req.ClaimedHash = hashFl
	}

	ctx := context.Background()
	rt, err := open(ctx, *confFl)
	if err != nil {
		return err
	}
	defer rt.Close()

	created, err := rt.ledger.Propose(ctx, req)
	if err != nil {
		return fmt.Errorf("cannot propose: %s", err)
	}
	return show(ctx, output, rt, created.HashValue())
}

func cmdConfirm(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Add the confirmation of a single owner to a message. On success the message
with all its confirmations is displayed.
`)
		fl.PrintDefaults()
	}
	var (
		confFl = flConfig(fl)
		hashFl = flHash(fl, "hash", "Hash of the message.")
		sigFl  = flHex(fl, "signature", "Hex encoded signature of a single owner.")
	)
	fl.Parse(args)

	ctx := context.Background()
	rt, err := open(ctx, *confFl)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.ledger.Confirm(ctx, *hashFl, *sigFl); err != nil {
		return fmt.Errorf("cannot confirm: %s", err)
	}
	return show(ctx, output, rt, *hashFl)
}

func cmdShow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Display a message with its confirmations and the prepared signature.
`)
		fl.PrintDefaults()
	}
	var (
		confFl = flConfig(fl)
		hashFl = flHash(fl, "hash", "Hash of the message.")
	)
	fl.Parse(args)

	ctx := context.Background()
	rt, err := open(ctx, *confFl)
	if err != nil {
		return err
	}
	defer rt.Close()
	return show(ctx, output, rt, *hashFl)
}

func show(ctx context.Context, output io.Writer, rt *runtime, hash common.Hash) error {
	view, err := rt.ledger.Message(ctx, hash)
	if err != nil {
		return fmt.Errorf("cannot load message: %s", err)
	}
	js, err := toViewJSON(view)
	if err != nil {
		return err
	}
	return writeJSON(output, js)
}

func cmdList(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
List all messages of an account, newest first.
`)
		fl.PrintDefaults()
	}
	var (
		confFl    = flConfig(fl)
		accountFl = flAddress(fl, "account", "", "Address of the account.")
	)
	fl.Parse(args)

	ctx := context.Background()
	rt, err := open(ctx, *confFl)
	if err != nil {
		return err
	}
	defer rt.Close()

	msgs, err := rt.ledger.Messages(ctx, *accountFl)
	if err != nil {
		return fmt.Errorf("cannot list messages: %s", err)
	}
	out := make([]messageJSON, 0, len(msgs))
	for _, m := range msgs {
		js, err := toMessageJSON(m)
		if err != nil {
			return err
		}
		out = append(out, js)
	}
	return writeJSON(output, out)
}
