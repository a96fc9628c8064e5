package csv

import (
	"bufio"
	"bytes"
	"context"
	encsv "encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"phonebook/pkg/contract"
)

// Options are the optional CSV Splitter settings.
type Options struct {
	// Comma: field delimiter, exactly one rune. Default ",".
	Comma string `json:"comma"`
	// LazyQuotes: tolerate stray quotes inside unquoted fields. Default true.
	LazyQuotes *bool `json:"lazy_quotes,omitempty"`
	// StripBOM: drop a leading UTF-8 byte order mark. Default false (the mark stays in the first header cell).
	StripBOM bool `json:"strip_bom"`
	// SkipBlankLines: drop empty lines instead of returning them as zero-field rows. Default false.
	SkipBlankLines bool `json:"skip_blank_lines"`
}

// Splitter decodes UTF-8 comma separated text into raw rows.
type Splitter struct {
	comma     rune
	lazy      bool
	stripBOM  bool
	skipBlank bool
}

const (
	peekSize        = 64 * 1024
	cancelCheckRows = 1024
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// New validates opts and creates a Splitter.
func New(opts *Options) (*Splitter, error) {
	s := &Splitter{comma: ',', lazy: true}
	if opts == nil {
		return s, nil
	}
	if opts.Comma != "" {
		r, size := utf8.DecodeRuneInString(opts.Comma)
		if size != len(opts.Comma) || !validDelim(r) {
			return nil, errors.Errorf("csv splitter: invalid comma %q", opts.Comma)
		}
		s.comma = r
	}
	if opts.LazyQuotes != nil {
		s.lazy = *opts.LazyQuotes
	}
	s.stripBOM = opts.StripBOM
	s.skipBlank = opts.SkipBlankLines
	return s, nil
}

func validDelim(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

var _ contract.Splitter = (*Splitter)(nil)

// Split reads every record of r. Field counts may vary. An empty line is a row with no
// fields unless blank lines are skipped. Invalid UTF-8 and CSV syntax faults are reported
// as contract.ErrRead.
func (s *Splitter) Split(ctx context.Context, r io.Reader) (contract.Sheet, error) {
	select {
	case <-ctx.Done():
		return contract.Sheet{}, ctx.Err()
	default:
	}

	lc := &lineCounter{r: transform.NewReader(r, encoding.UTF8Validator)}
	br := bufio.NewReaderSize(lc, peekSize)
	if s.stripBOM {
		if b, _ := br.Peek(len(utf8BOM)); bytes.Equal(b, utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}
	}
	sheet := contract.Sheet{LineEnding: detectLineEnding(br)}

	cr := encsv.NewReader(br)
	cr.Comma = s.comma
	cr.LazyQuotes = s.lazy
	cr.FieldsPerRecord = -1

	// encoding/csv drops empty lines; they are restored from the gaps between record line numbers.
	lastLine := 0
	for n := 0; ; n++ {
		if n%cancelCheckRows == 0 {
			select {
			case <-ctx.Done():
				return contract.Sheet{}, ctx.Err()
			default:
			}
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return contract.Sheet{}, errors.Wrapf(contract.ErrRead, "csv: %v", err)
		}
		first, _ := cr.FieldPos(0)
		sheet.Rows = s.blankRows(sheet.Rows, first-lastLine-1)
		sheet.Rows = append(sheet.Rows, contract.Row(rec))

		// a quoted last field may span lines
		end := len(rec) - 1
		line, _ := cr.FieldPos(end)
		lastLine = line + strings.Count(rec[end], "\n")
	}
	sheet.Rows = s.blankRows(sheet.Rows, lc.lines()-lastLine)
	return sheet, nil
}

func (s *Splitter) blankRows(rows []contract.Row, n int) []contract.Row {
	if s.skipBlank {
		return rows
	}
	for ; n > 0; n-- {
		rows = append(rows, contract.Row{})
	}
	return rows
}

// lineCounter counts the lines of everything read through it.
type lineCounter struct {
	r     io.Reader
	feeds int
	last  byte
	seen  bool
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.feeds += bytes.Count(p[:n], []byte{'\n'})
		c.last = p[n-1]
		c.seen = true
	}
	return n, err
}

// lines is the number of lines, the last one counted even without a terminator.
func (c *lineCounter) lines() int {
	if !c.seen || c.last == '\n' {
		return c.feeds
	}
	return c.feeds + 1
}

// detectLineEnding inspects the first line terminator without consuming input.
// No terminator within the peek window means LF.
func detectLineEnding(br *bufio.Reader) contract.LineEnding {
	b, _ := br.Peek(peekSize)
	i := bytes.IndexByte(b, '\n')
	if i > 0 && b[i-1] == '\r' {
		return contract.LineEndingCRLF
	}
	return contract.LineEndingLF
}
