package assert

import (
	"fmt"
	"testing"

	"github.com/iov-one/msgauth/errors"
)

func TestHelpers(t *testing.T) {
	twoNameErrors := errors.Append(
		errors.Field("Name", errors.ErrEmpty, "first"),
		errors.Field("Name", errors.ErrEmpty, "second"),
	)
	nameErr := errors.Field("Name", errors.ErrEmpty, "missing name")

	cases := map[string]struct {
		check    func(t testing.TB)
		wantFail bool
	}{
		"nil error":             {check: func(t testing.TB) { Nil(t, error(nil)) }},
		"nil slice":             {check: func(t testing.TB) { Nil(t, []byte(nil)) }},
		"non nil":               {check: func(t testing.TB) { Nil(t, errors.ErrEmpty) }, wantFail: true},
		"number is never nil":   {check: func(t testing.TB) { Nil(t, 0) }, wantFail: true},
		"equal slices":          {check: func(t testing.TB) { Equal(t, []byte{1, 2}, []byte{1, 2}) }},
		"different slices":      {check: func(t testing.TB) { Equal(t, []byte{1, 2}, []byte{2, 1}) }, wantFail: true},
		"panic":                 {check: func(t testing.TB) { Panics(t, func() { panic("x") }) }},
		"no panic":              {check: func(t testing.TB) { Panics(t, func() {}) }, wantFail: true},
		"same error":            {check: func(t testing.TB) { IsErr(t, errors.ErrEmpty, errors.ErrEmpty) }},
		"wrapped error":         {check: func(t testing.TB) { IsErr(t, errors.ErrEmpty, errors.Wrap(errors.ErrEmpty, "x")) }},
		"both nil":              {check: func(t testing.TB) { IsErr(t, nil, nil) }},
		"unexpected error":      {check: func(t testing.TB) { IsErr(t, nil, errors.ErrEmpty) }, wantFail: true},
		"different root":        {check: func(t testing.TB) { IsErr(t, errors.ErrEmpty, errors.ErrDuplicate) }, wantFail: true},
		"field error found":     {check: func(t testing.TB) { FieldError(t, nameErr, "Name", errors.ErrEmpty) }},
		"field error of a kind": {check: func(t testing.TB) { FieldError(t, nameErr, "Name", errors.ErrInput) }, wantFail: true},
		"no field error":        {check: func(t testing.TB) { FieldError(t, nameErr, "Age", nil) }},
		"unexpected field":      {check: func(t testing.TB) { FieldError(t, nameErr, "Name", nil) }, wantFail: true},
		"missing field":         {check: func(t testing.TB) { FieldError(t, nameErr, "Age", errors.ErrEmpty) }, wantFail: true},
		"field reported twice":  {check: func(t testing.TB) { FieldError(t, twoNameErrors, "Name", errors.ErrEmpty) }, wantFail: true},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			rec := &recorder{TB: t}
			tc.check(rec)
			if failed := rec.failures > 0; failed != tc.wantFail {
				t.Fatalf("want failure %v, got %d failures", tc.wantFail, rec.failures)
			}
		})
	}
}

// recorder counts failures instead of stopping the test.
type recorder struct {
	testing.TB
	failures int
}

func (r *recorder) Error(args ...interface{}) { r.fail(args...) }
func (r *recorder) Errorf(f string, args ...interface{}) { r.fail(fmt.Sprintf(f, args...)) }
func (r *recorder) Fatal(args ...interface{}) { r.fail(args...) }
func (r *recorder) Fatalf(f string, args ...interface{}) { r.fail(fmt.Sprintf(f, args...)) }

func (r *recorder) fail(args ...interface{}) {
	r.TB.Log(args...)
	r.failures++
}
