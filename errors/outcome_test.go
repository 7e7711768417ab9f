package errors

import (
	"io"
	"strings"
	"testing"
)

func TestOutcome(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantMsg  string
	}{
		"success": {
			err:      nil,
			wantCode: SuccessCode,
		},
		"typed nil": {
			err:      (*Error)(nil),
			wantCode: SuccessCode,
		},
		"root error": {
			err:      ErrUnauthorized,
			wantCode: ErrUnauthorized.Code(),
			wantMsg:  "unauthorized",
		},
		"wrapped root error keeps its message": {
			err:      Wrap(Wrapf(ErrDuplicate, "owner %s", "0x01"), "confirm"),
			wantCode: ErrDuplicate.Code(),
			wantMsg:  "confirm: owner 0x01: duplicate",
		},
		"foreign error is hidden": {
			err:      Wrap(io.ErrUnexpectedEOF, "read config"),
			wantCode: internalCode,
			wantMsg:  internalLog,
		},
		"foreign error is shown in debug mode": {
			err:      Wrap(io.ErrUnexpectedEOF, "read config"),
			debug:    true,
			wantCode: internalCode,
			wantMsg:  "read config: unexpected EOF",
		},
		"own code": {
			err:      Wrap(statusErr(403), "rpc"),
			wantCode: 403,
			wantMsg:  "rpc: status",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, msg := Outcome(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want code %d, got %d", tc.wantCode, code)
			}
			if !strings.Contains(msg, tc.wantMsg) {
				t.Errorf("want message containing %q, got %q", tc.wantMsg, msg)
			}
		})
	}
}

type statusErr uint32

func (s statusErr) Code() uint32  { return uint32(s) }
func (s statusErr) Error() string { return "status" }

func TestRoot(t *testing.T) {
	cases := map[string]struct {
		err  error
		want *Error
	}{
		"nil":             {err: nil, want: nil},
		"root":            {err: ErrDatabase, want: ErrDatabase},
		"wrapped":         {err: Wrap(Wrap(ErrNotFound, "message"), "confirm"), want: ErrNotFound},
		"field":           {err: Field("ChainID", ErrInput, "negative"), want: ErrInput},
		"joined":          {err: Append(ErrEmpty, ErrInput), want: ErrEmpty},
		"foreign":         {err: io.EOF, want: nil},
		"wrapped foreign": {err: Wrap(io.EOF, "read"), want: nil},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Root(tc.err); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}
