package orm

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/msgauth/errors"
)

// counter is a minimal model used by the tests of this package.
type counter struct {
	Owner string `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner,omitempty"`
	Count int64  `protobuf:"varint,2,opt,name=count,proto3" json:"count,omitempty"`
}

// counterPB is the protobuf view of counter.
type counterPB counter

func (m *counterPB) Reset()         { *m = counterPB{} }
func (m *counterPB) String() string { return proto.CompactTextString(m) }
func (*counterPB) ProtoMessage()    {}

func (m *counter) Marshal() ([]byte, error)   { return MarshalProto((*counterPB)(m)) }
func (m *counter) Unmarshal(raw []byte) error { return UnmarshalProto(raw, (*counterPB)(m)) }

func (m *counter) Validate() error {
	if m.Count < 0 {
		return errors.Wrap(errors.ErrModel, "negative count")
	}
	return nil
}

func byOwner(m Model) ([]byte, error) {
	c, ok := m.(*counter)
	if !ok {
		return nil, errors.WithType(errors.ErrType, m)
	}
	if c.Owner == "" {
		return nil, nil
	}
	return []byte(c.Owner), nil
}

func loadAll(it ModelIterator) ([]string, []*counter, error) {
	defer it.Release()
	var (
		keys []string
		res  []*counter
	)
	for {
		var c counter
		key, err := it.LoadNext(&c)
		if errors.ErrIteratorDone.Is(err) {
			return keys, res, nil
		}
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, string(key))
		res = append(res, &c)
	}
}
