// Package errors defines snapsweep's error kinds and their process exit
// codes, so that a configuration mistake is distinguishable from a partially
// failed sweep.
package errors

import "fmt"

// Exit codes. Configuration mistakes never reach the destructive phase;
// sweep failures mean some snapshots were deleted and some were not.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitSweep   = 3
)

// Kind classifies an error.
type Kind string

const (
	KindConfig   Kind = "CONFIG"
	KindSweep    Kind = "SWEEP"
	KindInternal Kind = "INTERNAL"
)

// Error is a kind-coded error carrying its exit code.
type Error struct {
	Kind    Kind
	Exit    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewConfig wraps a configuration error: bad source path, bad flag or
// config-file value. These are fatal before any deletion.
func NewConfig(msg string, err error) *Error {
	return &Error{Kind: KindConfig, Exit: ExitConfig, Message: msg, Err: err}
}

// NewSweep reports that failed of total deletion attempts did not complete.
func NewSweep(failed, total int) *Error {
	return &Error{
		Kind:    KindSweep,
		Exit:    ExitSweep,
		Message: fmt.Sprintf("%d of %d deletions failed", failed, total),
	}
}

// ExitCode maps any error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	for e := err; e != nil; e = unwrap(e) {
		if se, ok := e.(*Error); ok {
			return se.Exit
		}
	}
	return ExitFailure
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}
