package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
	"github.com/iov-one/msgauth/msghash"
	"github.com/iov-one/msgauth/orm"
	"github.com/iov-one/msgauth/sigcodec"
)

// Message is an off-chain authorization request of one account. It is
// created together with its first confirmations and never deleted.
type Message struct {
	// Hash is the account scoped message hash. Always computed from the
	// payload, never accepted from a caller.
	Hash    []byte       `protobuf:"bytes,1,opt,name=hash,proto3" json:"hash,omitempty"`
	Account []byte       `protobuf:"bytes,2,opt,name=account,proto3" json:"account,omitempty"`
	Kind    msghash.Kind `protobuf:"varint,3,opt,name=kind,proto3" json:"kind,omitempty"`
	// Payload is the message as received: the text, or the typed data
	// JSON document.
	Payload    []byte           `protobuf:"bytes,4,opt,name=payload,proto3" json:"payload,omitempty"`
	ProposedBy []byte           `protobuf:"bytes,5,opt,name=proposed_by,json=proposedBy,proto3" json:"proposed_by,omitempty"`
	Created    msgauth.UnixTime `protobuf:"varint,6,opt,name=created,proto3" json:"created,omitempty"`
	Modified   msgauth.UnixTime `protobuf:"varint,7,opt,name=modified,proto3" json:"modified,omitempty"`
	// Origin and AppID describe where the request came from. They are
	// stored as provided.
	Origin string `protobuf:"bytes,8,opt,name=origin,proto3" json:"origin,omitempty"`
	AppID  int64  `protobuf:"varint,9,opt,name=app_id,json=appId,proto3" json:"app_id,omitempty"`
}

// messagePB is the protobuf view of Message.
type messagePB Message

func (m *messagePB) Reset()         { *m = messagePB{} }
func (m *messagePB) String() string { return proto.CompactTextString(m) }
func (*messagePB) ProtoMessage()    {}

var _ orm.Model = (*Message)(nil)

func (m *Message) Marshal() ([]byte, error)   { return orm.MarshalProto((*messagePB)(m)) }
func (m *Message) Unmarshal(raw []byte) error { return orm.UnmarshalProto(raw, (*messagePB)(m)) }

func (m *Message) Validate() error {
	switch {
	case len(m.Hash) != common.HashLength:
		return errors.Wrap(errors.ErrModel, "invalid hash")
	case len(m.Account) != common.AddressLength:
		return errors.Wrap(errors.ErrModel, "invalid account")
	case m.Kind != msghash.KindText && m.Kind != msghash.KindTypedData:
		return errors.Wrapf(errors.ErrModel, "invalid kind %s", m.Kind)
	case m.Kind == msghash.KindTypedData && len(m.Payload) == 0:
		return errors.Wrap(errors.ErrModel, "empty typed data")
	case len(m.ProposedBy) != common.AddressLength:
		return errors.Wrap(errors.ErrModel, "invalid proposer")
	case m.AppID < 0:
		return errors.Wrap(errors.ErrModel, "negative app id")
	}
	if err := m.Created.Validate(); err != nil {
		return errors.Wrap(err, "created")
	}
	if m.Modified < m.Created {
		return errors.Wrap(errors.ErrModel, "modified before created")
	}
	return nil
}

// HashValue returns the message hash.
func (m *Message) HashValue() common.Hash { return common.BytesToHash(m.Hash) }

// AccountAddress returns the account the message belongs to.
func (m *Message) AccountAddress() common.Address { return common.BytesToAddress(m.Account) }

// Content rebuilds the message content from the stored payload.
func (m *Message) Content() (msghash.Message, error) {
	return msghash.FromPayload(m.Kind, m.Payload)
}

// Confirmation is the authorization of a message by one of its account
// owners.
type Confirmation struct {
	MessageHash   []byte        `protobuf:"bytes,1,opt,name=message_hash,json=messageHash,proto3" json:"message_hash,omitempty"`
	Owner         []byte        `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
	SignatureType sigcodec.Type `protobuf:"varint,3,opt,name=signature_type,json=signatureType,proto3" json:"signature_type,omitempty"`
	// Signature is the canonical encoding of the single record provided
	// by the owner.
	Signature []byte           `protobuf:"bytes,4,opt,name=signature,proto3" json:"signature,omitempty"`
	Created   msgauth.UnixTime `protobuf:"varint,5,opt,name=created,proto3" json:"created,omitempty"`
	Modified  msgauth.UnixTime `protobuf:"varint,6,opt,name=modified,proto3" json:"modified,omitempty"`
}

// confirmationPB is the protobuf view of Confirmation.
type confirmationPB Confirmation

func (m *confirmationPB) Reset()         { *m = confirmationPB{} }
func (m *confirmationPB) String() string { return proto.CompactTextString(m) }
func (*confirmationPB) ProtoMessage()    {}

var _ orm.Model = (*Confirmation)(nil)

func (c *Confirmation) Marshal() ([]byte, error)   { return orm.MarshalProto((*confirmationPB)(c)) }
func (c *Confirmation) Unmarshal(raw []byte) error { return orm.UnmarshalProto(raw, (*confirmationPB)(c)) }

func (c *Confirmation) Validate() error {
	switch {
	case len(c.MessageHash) != common.HashLength:
		return errors.Wrap(errors.ErrModel, "invalid message hash")
	case len(c.Owner) != common.AddressLength:
		return errors.Wrap(errors.ErrModel, "invalid owner")
	case c.SignatureType == sigcodec.TypeUnknown:
		return errors.Wrap(errors.ErrModel, "unknown signature type")
	case len(c.Signature) < sigcodec.RecordLen:
		return errors.Wrap(errors.ErrModel, "signature too short")
	}
	if err := c.Created.Validate(); err != nil {
		return errors.Wrap(err, "created")
	}
	if c.Modified < c.Created {
		return errors.Wrap(errors.ErrModel, "modified before created")
	}
	return nil
}

// OwnerAddress returns the confirming owner.
func (c *Confirmation) OwnerAddress() common.Address { return common.BytesToAddress(c.Owner) }

// Record decodes the stored signature record.
func (c *Confirmation) Record() (sigcodec.Record, error) {
	records, err := sigcodec.Decode(c.Signature)
	if err != nil {
		return sigcodec.Record{}, err
	}
	if len(records) != 1 {
		return sigcodec.Record{}, errors.Wrapf(errors.ErrState, "%d records stored for a single owner", len(records))
	}
	return records[0], nil
}
