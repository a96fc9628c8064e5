package csv

import (
	"bytes"
	"context"
	encsv "encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"phonebook/pkg/contract"
)

// Options are the optional CSV Assembler settings.
type Options struct {
	// Comma: field delimiter, exactly one rune. Default ",".
	Comma string `json:"comma"`
	// LineEnding: auto (follow the input), lf or crlf. Default auto.
	LineEnding string `json:"line_ending"`
}

// Assembler encodes the header and the contacts as CSV.
type Assembler struct {
	comma rune
	le    contract.LineEnding
}

const cancelCheckRows = 1024

// New validates opts and creates an Assembler.
func New(opts *Options) (*Assembler, error) {
	a := &Assembler{comma: ',', le: contract.LineEndingAuto}
	if opts == nil {
		return a, nil
	}
	if opts.Comma != "" {
		r, size := utf8.DecodeRuneInString(opts.Comma)
		if size != len(opts.Comma) || r == 0 || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return nil, errors.Errorf("csv assembler: invalid comma %q", opts.Comma)
		}
		a.comma = r
	}
	switch le := contract.LineEnding(strings.ToLower(strings.TrimSpace(opts.LineEnding))); le {
	case "", contract.LineEndingAuto:
	case contract.LineEndingLF, contract.LineEndingCRLF:
		a.le = le
	default:
		return nil, errors.Errorf("csv assembler: invalid line_ending %q", opts.LineEnding)
	}
	return a, nil
}

var _ contract.Assembler = (*Assembler)(nil)

// Assemble writes the header, padded or truncated to seven fields, then one record per contact
// in the given order. Every record is terminated, the last one included.
func (a *Assembler) Assemble(ctx context.Context, header contract.Row, contacts []contract.Contact, le contract.LineEnding) (io.Reader, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	w := encsv.NewWriter(&buf)
	w.Comma = a.comma
	w.UseCRLF = a.resolve(le) == contract.LineEndingCRLF

	if err := w.Write(contract.PadRow(header)); err != nil {
		return nil, errors.Wrapf(contract.ErrWrite, "header: %v", err)
	}
	for i, c := range contacts {
		if i%cancelCheckRows == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if err := w.Write(c.Fields()); err != nil {
			return nil, errors.Wrapf(contract.ErrWrite, "record %d: %v", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrapf(contract.ErrWrite, "flush: %v", err)
	}
	return bytes.NewReader(buf.Bytes()), nil
}

// resolve picks the configured line ending, or the input one when configured as auto.
func (a *Assembler) resolve(in contract.LineEnding) contract.LineEnding {
	if a.le != contract.LineEndingAuto {
		return a.le
	}
	if in == contract.LineEndingCRLF {
		return contract.LineEndingCRLF
	}
	return contract.LineEndingLF
}
