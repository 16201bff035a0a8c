package grove

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Construction errors. These indicate programmer mistakes in schema
// declarations and fail fast; they never occur during validation runs.
var (
	// ErrSealed is raised when a builder handle mutates a schema after Build.
	ErrSealed = errors.New("grove: schema is sealed")
	// ErrEmptyPattern rejects Regex("").
	ErrEmptyPattern = errors.New("grove: empty regex pattern")
	// ErrConstrainedAny rejects occurrence constraints or required semantics
	// on an always-true predicate.
	ErrConstrainedAny = errors.New("grove: always-true predicate cannot be required or counted")
	// ErrBadOccurrence rejects inverted or negative occurrence bounds.
	ErrBadOccurrence = errors.New("grove: invalid occurrence bounds")
	// ErrDuplicateSchema rejects registering a name twice in a Registry.
	ErrDuplicateSchema = errors.New("grove: schema already registered")
)

// StoreError reports that the TreeStore could not answer a traversal query.
// It is distinct from a validation failure: callers can tell "the data does
// not conform" (Report with failures) from "the data could not be read"
// (*StoreError returned by Validate).
type StoreError struct {
	Op   string // the store operation: children, attributes, properties, kind
	Path string // the instance path the engine was visiting
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("grove: store %s at %q: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// AsStoreError extracts a *StoreError from an error chain.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func storeErr(op, path string, err error) *StoreError {
	return &StoreError{Op: op, Path: path, Err: err}
}
