package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msgauth/errors"
)

// Persistent is implemented by anything that can be serialized into the
// database.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Persistent
	// Validate returns error if the model is not in a valid state to be
	// saved in the database (eg. field missing, out of range, ...).
	Validate() error
}

// MarshalProto serializes a protobuf message. Models declared as plain Go
// structs with protobuf field tags use it to implement Persistent.
//
// The message passed here must not implement Persistent itself: proto would
// call back into its Marshal method. Models pass a method-less shadow type
// that shares their memory layout instead, for example
//
//	type counterPB counter
//	func (m *counter) Marshal() ([]byte, error) { return MarshalProto((*counterPB)(m)) }
func MarshalProto(m proto.Message) ([]byte, error) {
	raw, err := proto.Marshal(m)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModel, "marshal %T: %s", m, err)
	}
	return raw, nil
}

// UnmarshalProto is the counterpart of MarshalProto.
func UnmarshalProto(raw []byte, m proto.Message) error {
	if err := proto.Unmarshal(raw, m); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal %T: %s", m, err)
	}
	return nil
}
