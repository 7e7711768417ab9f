package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/msgauth/sigcodec"
)

type recordJSON struct {
	Type    string          `json:"type"`
	Owner   *common.Address `json:"owner,omitempty"`
	R       common.Hash     `json:"r"`
	S       common.Hash     `json:"s"`
	V       uint8           `json:"v"`
	Payload hexutil.Bytes   `json:"payload,omitempty"`
	Nested  []recordJSON    `json:"nested,omitempty"`
}

func cmdDecode(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode a hex encoded signature read from the input and display its records.
Payloads of contract records are decoded as nested signatures when possible.
No signature is verified.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("cannot read signature: %s", err)
	}
	blob, err := hexutil.Decode(string(bytes.TrimSpace(raw)))
	if err != nil {
		return fmt.Errorf("cannot decode hex: %s", err)
	}
	records, err := sigcodec.Decode(blob)
	if err != nil {
		return err
	}
	return writeJSON(output, toRecordsJSON(records))
}

func toRecordsJSON(records []sigcodec.Record) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		rj := recordJSON{
			Type:    r.Type().String(),
			R:       r.R,
			S:       r.S,
			V:       r.V,
			Payload: r.Payload,
		}
		switch r.Type() {
		case sigcodec.TypeContract:
			owner := r.Owner()
			rj.Owner = &owner
			if nested, err := sigcodec.Decode(r.Payload); err == nil {
				rj.Nested = toRecordsJSON(nested)
			}
		case sigcodec.TypeApprovedHash:
			owner := r.Owner()
			rj.Owner = &owner
		}
		out = append(out, rj)
	}
	return out
}
