package contract

import (
	"errors"
	"fmt"
)

// Failure kinds. Each terminates the run with a non-zero exit status.
var (
	// ErrNotFound: input path does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRead: any other input I/O or decoding fault.
	ErrRead = errors.New("read failed")
	// ErrWrite: output I/O fault.
	ErrWrite = errors.New("write failed")
	// ErrPathInvalid: a path that cannot name a regular file (empty, a directory).
	ErrPathInvalid = errors.New("path invalid")
	// ErrInvariantViolation: a component broke its contract (e.g. wrong field count).
	ErrInvariantViolation = errors.New("invariant violation")
)

// PathError binds a failure kind to the path it concerns.
// errors.Is matches both Kind and the underlying cause.
type PathError struct {
	Kind error
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewPathError is a shorthand for &PathError{...}.
func NewPathError(kind error, path string, err error) error {
	return &PathError{Kind: kind, Path: path, Err: err}
}
