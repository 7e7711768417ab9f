package errors

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Frames of these functions are dropped from the top of a printed stack.
var internalFrames = []string{
	"github.com/iov-one/msgauth/errors.Wrap",
	"github.com/iov-one/msgauth/errors.Wrapf",
	"github.com/iov-one/msgauth/errors.(*Error).New",
	"github.com/iov-one/msgauth/errors.(*Error).Newf",
	"runtime.",
}

// Frames of these functions are dropped from the bottom.
var outerFrames = []string{
	"runtime.",
	"testing.tRunner",
}

// frameFunc returns the function of f and its file and line. The pc of a
// pkg/errors frame points after the call, hence the -1.
func frameFunc(f errors.Frame) (name, file string, line int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", "unknown", 0
	}
	file, line = fn.FileLine(pc)
	return fn.Name(), file, line
}

func frameIn(f errors.Frame, prefixes []string) bool {
	name, _, _ := frameFunc(f)
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func trimStack(st errors.StackTrace) errors.StackTrace {
	for len(st) > 1 && frameIn(st[0], internalFrames) {
		st = st[1:]
	}
	for len(st) > 1 && frameIn(st[len(st)-1], outerFrames) {
		st = st[:len(st)-1]
	}
	return st
}

// Format prints the message for %s. %v adds the [file:line] the error was
// created at and %+v the whole stack.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb != 'v' {
		fmt.Fprint(s, e.Error())
		return
	}
	stack := trimStack(stackTrace(e))
	switch {
	case s.Flag('+'):
		fmt.Fprintf(s, "%+v\n%s", stack, e.Error())
	case len(stack) == 0:
		fmt.Fprint(s, e.Error())
	default:
		_, file, line := frameFunc(stack[0])
		if i := strings.Index(file, "github.com/"); i >= 0 {
			file = file[i+len("github.com/"):]
		}
		fmt.Fprintf(s, "%s [%s:%d]", e.Error(), file, line)
	}
}

// stackTrace returns the innermost recorded stack of err, or nil.
func stackTrace(err error) errors.StackTrace {
	type tracer interface {
		StackTrace() errors.StackTrace
	}
	for err != nil {
		if t, ok := err.(tracer); ok {
			return t.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}
