package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"phonebook/internal/diag"
	"phonebook/internal/merge"
	"phonebook/pkg/contract"
)

// - Single goroutine: stages run one after another over data held in memory.
// - Nothing touches the output path until the input has been read, decoded and merged.
// - The first error stops the run; it is logged, counted and returned wrapped.

// Components are the stage implementations of one run.
type Components struct {
	Reader     contract.Reader
	Splitter   contract.Splitter
	Normalizer contract.Normalizer
	// Phone is optional; when set, formatted phones it rejects are counted and reported.
	Phone     contract.PhoneChecker
	Assembler contract.Assembler
	Writer    contract.Writer
}

// Settings are the input and output paths.
type Settings struct {
	Input  string
	Output string
}

// Result summarizes a successful run.
type Result struct {
	// Rows: data rows read, header excluded.
	Rows int
	// Contacts: rows written after merging, header excluded.
	Contacts int
	// Merged: rows folded into an earlier contact with the same key.
	Merged int
	// InvalidPhones: written contacts whose non-empty phone failed the Phone check.
	InvalidPhones int
}

// Run executes Reader → Splitter → Normalizer → merge → sort → Assembler → Writer.
// The first input row is the header: padded to seven fields and written first, never merged or sorted.
// Input without any row fails with contract.ErrRead and writes nothing.
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Result, error) {
	var res Result
	if err := sanity(comp, set); err != nil {
		return res, errors.Wrap(err, "sanity")
	}

	// read + decode
	if err := ctx.Err(); err != nil {
		return res, err
	}
	t0 := time.Now()
	rtimer := logger.StartWithKV("reader", "open", map[string]string{"path": set.Input})
	rc, err := comp.Reader.Open(ctx, set.Input)
	if err != nil {
		stageFail(logger, "reader", "open failed", t0, err, map[string]string{"path": set.Input})
		return res, errors.Wrap(err, "reader open")
	}
	defer rc.Close()
	stageDone(rtimer, "reader", "open", 0, t0)

	t0 = time.Now()
	stimer := logger.Start("splitter", "split")
	sheet, err := comp.Splitter.Split(ctx, rc)
	if err == nil && len(sheet.Rows) == 0 {
		err = contract.NewPathError(contract.ErrRead, set.Input, errors.New("no header row"))
	}
	if err != nil {
		if !errors.Is(err, contract.ErrRead) && diag.Classify(err) != diag.CodeCancel {
			err = contract.NewPathError(contract.ErrRead, set.Input, err)
		}
		stageFail(logger, "splitter", "split failed", t0, err, map[string]string{"path": set.Input})
		return res, errors.Wrap(err, "splitter split")
	}
	header, rows := sheet.Rows[0], sheet.Rows[1:]
	res.Rows = len(rows)
	stageDone(stimer, "splitter", "split", res.Rows, t0)
	diag.AddRows("input", res.Rows)
	diag.GetTerminal().Stage("read", res.Rows)

	// normalize + merge
	if err := ctx.Err(); err != nil {
		return res, err
	}
	t0 = time.Now()
	ntimer := logger.Start("normalizer", "normalize")
	table := merge.NewTable(len(rows))
	for _, r := range rows {
		key, c := comp.Normalizer.Normalize(r)
		table.Add(key, c)
	}
	res.Contacts = table.Len()
	res.Merged = table.Merged()
	stageDone(ntimer, "normalizer", "normalize", res.Contacts, t0)
	diag.AddRows("contact", res.Contacts)
	diag.AddRows("merged", res.Merged)
	diag.GetTerminal().Stage("merge", res.Contacts)

	// sort
	sorted := table.Sorted()
	if len(sorted) != res.Contacts {
		return res, errors.Wrapf(contract.ErrInvariantViolation, "sorted %d contacts, table has %d", len(sorted), res.Contacts)
	}

	if comp.Phone != nil {
		for _, c := range sorted {
			if p := c[contract.FieldPhone]; p != "" && !comp.Phone.Valid(p) {
				res.InvalidPhones++
			}
		}
		if res.InvalidPhones > 0 {
			logger.Warn("phone", "phones not recognized as valid numbers", map[string]string{"count": strconv.Itoa(res.InvalidPhones)})
			diag.AddRows("invalid_phone", res.InvalidPhones)
		}
	}

	// encode + write
	if err := ctx.Err(); err != nil {
		return res, err
	}
	t0 = time.Now()
	atimer := logger.Start("assembler", "assemble")
	out, err := comp.Assembler.Assemble(ctx, header, sorted, sheet.LineEnding)
	if err != nil {
		stageFail(logger, "assembler", "assemble failed", t0, err, nil)
		return res, errors.Wrap(err, "assembler assemble")
	}
	stageDone(atimer, "assembler", "assemble", res.Contacts+1, t0)

	t0 = time.Now()
	wtimer := logger.StartWithKV("writer", "write", map[string]string{"path": set.Output})
	if err := comp.Writer.Write(ctx, set.Output, out); err != nil {
		stageFail(logger, "writer", "write failed", t0, err, map[string]string{"path": set.Output})
		return res, errors.Wrap(err, "writer write")
	}
	stageDone(wtimer, "writer", "write", res.Contacts+1, t0)
	diag.GetTerminal().Stage("write", res.Contacts)
	return res, nil
}

func stageDone(t *diag.Timer, comp, msg string, count int, t0 time.Time) {
	t.Finish(msg, int64(count))
	diag.IncOp(comp, "finish", "success")
	diag.ObserveDuration(comp, "finish", time.Since(t0).Milliseconds())
}

func stageFail(logger *diag.Logger, comp, msg string, t0 time.Time, err error, kv map[string]string) {
	code := diag.Classify(err)
	if kv == nil {
		kv = map[string]string{}
	}
	kv["err"] = err.Error()
	logger.ErrorWithKV(comp, string(code), msg, &t0, kv)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
	diag.ObserveDuration(comp, "error", time.Since(t0).Milliseconds())
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Splitter == nil || c.Normalizer == nil || c.Assembler == nil || c.Writer == nil {
		return errors.Wrap(contract.ErrInvariantViolation, "pipeline: missing components")
	}
	if s.Input == "" || s.Output == "" {
		return errors.Wrap(contract.ErrInvariantViolation, "pipeline: empty input or output path")
	}
	return nil
}
