package contract

import (
	"context"
	"io"
)

// Splitter decodes a byte stream into ordered raw rows.
// Rows are returned as read: no padding, no trimming. Decoding faults wrap ErrRead.
type Splitter interface {
	Split(ctx context.Context, r io.Reader) (Sheet, error)
}
