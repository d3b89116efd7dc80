package cmd

import "github.com/pkg/errors"

// ErrBadArguments is returned for an unknown subcommand or missing
// directory argument.
var ErrBadArguments = errors.New("cmd: bad arguments")

// ErrMissingFile is returned when one of the four required input files is
// absent from the given directory.
var ErrMissingFile = errors.New("cmd: missing input file")

// Exit codes, per SPEC_FULL.md §6.
const (
	ExitOK          = 0
	ExitBadArgs     = 1
	ExitBadInput    = 2
	ExitRuntimeFail = 3
)

// exitCode maps an error to the process exit code it should produce,
// unwrapping to the outermost recognized sentinel.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrBadArguments):
		return ExitBadArgs
	case errors.Is(err, ErrMissingFile):
		return ExitBadInput
	case isBadInput(err):
		return ExitBadInput
	default:
		return ExitRuntimeFail
	}
}
