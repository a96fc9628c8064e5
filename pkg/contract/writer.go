package contract

import (
	"context"
	"io"
)

// Writer persists assembled bytes at the target path.
// Constraints:
//  1. bytes pass through untouched;
//  2. returns promptly once ctx is cancelled;
//  3. failures are classified ErrWrite, no retries.
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader) error
}
