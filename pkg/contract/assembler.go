package contract

import (
	"context"
	"io"
)

// Assembler serializes the output table: header first, then contacts in the given order.
// le is the line ending observed on input; implementations may honour or override it.
type Assembler interface {
	Assemble(ctx context.Context, header Row, contacts []Contact, le LineEnding) (io.Reader, error)
}
