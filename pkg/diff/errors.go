package diff

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ConfigurationError.
var (
	ErrDuplicateSource  = errors.New("source node appears in more than one matching")
	ErrDuplicateTarget  = errors.New("target node appears in more than one matching")
	ErrForeignNode      = errors.New("matching node does not belong to its tree")
	ErrNilNode          = errors.New("matching refers to a nil node")
	ErrInvalidThreshold = errors.New("similarity threshold must be within [0, 1]")
)

// ErrNilTree is returned when the source or target tree is nil.
var ErrNilTree = errors.New("diff: nil tree")

// ConfigurationError reports invalid caller-supplied configuration. It is
// returned before any hashing or matching takes place.
type ConfigurationError struct {
	Err error
	// Index is the position of the offending matching, or -1 when the error
	// is not tied to a matching.
	Index int
}

func (configErr *ConfigurationError) Error() string {
	if configErr.Index < 0 {
		return fmt.Sprintf("diff: invalid configuration: %v", configErr.Err)
	}

	return fmt.Sprintf("diff: invalid matching #%d: %v", configErr.Index, configErr.Err)
}

func (configErr *ConfigurationError) Unwrap() error {
	return configErr.Err
}
