package diag

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"phonebook/pkg/contract"
)

// Code is the minimal error class used for logs and metrics.
// Exit codes are derived in cmd, not here.
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeNotFound  Code = "not_found"
	CodeRead      Code = "read"
	CodeWrite     Code = "write"
	CodeConfig    Code = "config"
	CodeInvariant Code = "invariant"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
)

// ErrConfig marks configuration faults (bad config.json, unknown component).
var ErrConfig = errors.New("config invalid")

// Classify maps err to a Code using sentinels and standard error types only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, ErrConfig) {
		return CodeConfig
	}
	// not_found before read: a missing input is reported with its own message
	if errors.Is(err, contract.ErrNotFound) {
		return CodeNotFound
	}
	if errors.Is(err, contract.ErrRead) {
		return CodeRead
	}
	if errors.Is(err, contract.ErrWrite) {
		return CodeWrite
	}
	if errors.Is(err, contract.ErrInvariantViolation) || errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
