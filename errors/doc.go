/*
Package errors provides registered root errors with codes, wrapping with
stack traces and joining of validation failures.

Each package owning a kind of failure registers its roots in its own
errors.go, inside a code range of its own:

	msghash    100
	orm        105
	sigcodec   110-112
	directory  120-122
	verifier   130-133
	ledger     140-144

Create errors with ErrXyz.New, ErrXyz.Newf or Wrap at the place the failure
happens, so the recorded stack points there. Declaring a wrapped error as a
package level variable records a useless stack.

Format an error with %s for the message only, %v for the message followed by
the [file:line] of its origin, and %+v for the full stack.
*/
package errors
