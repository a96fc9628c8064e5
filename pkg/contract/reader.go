package contract

import (
	"context"
	"io"
)

// Reader: input source abstraction.
// Constraints:
//  1. opens a byte stream only, no decoding;
//  2. a missing path yields ErrNotFound, any other failure ErrRead, both as a PathError;
//  3. the caller closes the stream.
type Reader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
