package msgauth

import (
	"encoding/json"
	"time"

	"github.com/iov-one/msgauth/errors"
)

// UnixTime is a point in time in nanoseconds since the epoch, stored as a
// plain int64 in protobuf models. Nanoseconds keep the modified stamp of a
// message moving forward when two confirmations land in the same second.
type UnixTime int64

func (t UnixTime) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add works like time.Time.Add.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d)
}

func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.UnixNano())
}

// Now returns the current time.
func Now() UnixTime {
	return AsUnixTime(time.Now())
}

// UnmarshalJSON accepts a nanosecond count as well as an RFC 3339 string.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := AsUnixTime(stdtime)
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// MarshalJSON writes RFC 3339 with nanoseconds.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time().Format(time.RFC3339Nano))
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().String()
}
