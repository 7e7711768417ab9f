package main

import (
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/ledger"
	"github.com/iov-one/msgauth/msghash"
)

// messageJSON is the printed form of a message. Binary values are hex
// encoded and the message content is shown as it was submitted.
type messageJSON struct {
	Hash              common.Hash        `json:"hash"`
	Account           common.Address     `json:"account"`
	Kind              string             `json:"kind"`
	Message           json.RawMessage    `json:"message"`
	ProposedBy        common.Address     `json:"proposed_by"`
	Created           msgauth.UnixTime   `json:"created"`
	Modified          msgauth.UnixTime   `json:"modified"`
	Origin            string             `json:"origin,omitempty"`
	AppID             int64              `json:"app_id,omitempty"`
	Confirmations     []confirmationJSON `json:"confirmations,omitempty"`
	PreparedSignature hexutil.Bytes      `json:"prepared_signature,omitempty"`
}

type confirmationJSON struct {
	Owner         common.Address   `json:"owner"`
	SignatureType string           `json:"signature_type"`
	Signature     hexutil.Bytes    `json:"signature"`
	Created       msgauth.UnixTime `json:"created"`
	Modified      msgauth.UnixTime `json:"modified"`
}

func toMessageJSON(m *ledger.Message) (messageJSON, error) {
	content := json.RawMessage(m.Payload)
	if m.Kind == msghash.KindText {
		raw, err := json.Marshal(string(m.Payload))
		if err != nil {
			return messageJSON{}, err
		}
		content = raw
	}
	return messageJSON{
		Hash:       m.HashValue(),
		Account:    m.AccountAddress(),
		Kind:       m.Kind.String(),
		Message:    content,
		ProposedBy: common.BytesToAddress(m.ProposedBy),
		Created:    m.Created,
		Modified:   m.Modified,
		Origin:     m.Origin,
		AppID:      m.AppID,
	}, nil
}

func toViewJSON(v *ledger.MessageView) (messageJSON, error) {
	out, err := toMessageJSON(v.Message)
	if err != nil {
		return out, err
	}
	for _, c := range v.Confirmations {
		out.Confirmations = append(out.Confirmations, confirmationJSON{
			Owner:         c.OwnerAddress(),
			SignatureType: c.SignatureType.String(),
			Signature:     c.Signature,
			Created:       c.Created,
			Modified:      c.Modified,
		})
	}
	out.PreparedSignature = v.PreparedSignature
	return out, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	pretty, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	_, err = out.Write(append(pretty, '\n'))
	return err
}
