// core/hyberr/errors.go
package hyberr

import (
	"errors"
	"fmt"
)

// Error kinds for the hyb/fold toolkit. Callers classify with errors.Is;
// messages are built with the *f helpers so every error wraps its kind.
var (
	// ErrConstructor marks malformed input at record-creation time.
	// Never recovered per-field; the construction attempt fails whole.
	ErrConstructor = errors.New("constructor error")

	// ErrArg marks an invalid argument to a method (bad mode string,
	// missing comparison value, unrecognized enum).
	ErrArg = errors.New("argument error")

	// ErrMisc marks a violated precondition during use: a property
	// requested before its prerequisite evaluation, a sequence mismatch
	// beyond tolerance, a disallowed miRNA-dimer access.
	ErrMisc = errors.New("misc error")

	// ErrIter marks paired-iteration failures: invalid sources, bad
	// error modes, fatal consistency failures, or the sequential-skip
	// guard tripping.
	ErrIter = errors.New("iteration error")
)

func Constructorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConstructor, fmt.Sprintf(format, a...))
}

func Argf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArg, fmt.Sprintf(format, a...))
}

func Miscf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMisc, fmt.Sprintf(format, a...))
}

func Iterf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIter, fmt.Sprintf(format, a...))
}
