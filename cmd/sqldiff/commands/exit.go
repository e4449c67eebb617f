package commands

import (
	"errors"

	"github.com/Sumatoshi-tech/sqldiff/pkg/sqlast/node"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitValidation = 2
)

// ErrValidationFailed is returned when a tree document does not match the
// tree schema.
var ErrValidationFailed = errors.New("validation failed")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrValidationFailed), errors.Is(err, node.ErrInvalidDocument):
		return ExitValidation
	default:
		return ExitError
	}
}
