package filesystem

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"phonebook/pkg/contract"
)

// Options are the optional filesystem Writer settings.
type Options struct {
	// Atomic: write a temp file in the target directory and rename it over the target.
	// Default true; explicit false writes in place (a failed run may then leave a truncated file).
	Atomic *bool `json:"atomic,omitempty"`
	// PermFile/PermDir: permissions for the output file and created parent directories.
	// 0 means 0644 / 0755.
	PermFile os.FileMode `json:"perm_file,omitempty"`
	PermDir  os.FileMode `json:"perm_dir,omitempty"`
	// BufSize: write buffer size; <=0 means 64 KiB.
	BufSize int `json:"buf_size,omitempty"`
}

// FS writes the output table to a local file.
type FS struct {
	atomic  bool
	permF   os.FileMode
	permD   os.FileMode
	bufSize int
}

const tempPattern = ".phonebook-*.tmp"

// New creates a filesystem Writer.
func New(opts *Options) (*FS, error) {
	w := &FS{atomic: true, permF: 0o644, permD: 0o755, bufSize: 64 * 1024}
	if opts == nil {
		return w, nil
	}
	if opts.PermFile&^os.ModePerm != 0 || opts.PermDir&^os.ModePerm != 0 {
		return nil, errors.Errorf("fs writer: permissions must be within 0777 (file %o, dir %o)", opts.PermFile, opts.PermDir)
	}
	if opts.Atomic != nil {
		w.atomic = *opts.Atomic
	}
	if opts.PermFile != 0 {
		w.permF = opts.PermFile
	}
	if opts.PermDir != 0 {
		w.permD = opts.PermDir
	}
	if opts.BufSize > 0 {
		w.bufSize = opts.BufSize
	}
	return w, nil
}

var _ contract.Writer = (*FS)(nil)

// Write copies all of r to path, creating parent directories as needed.
// Every failure is a contract.PathError of kind ErrWrite naming path.
func (w *FS) Write(ctx context.Context, path string, r io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dest, err := destPath(path)
	if err != nil {
		return contract.NewPathError(contract.ErrWrite, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), w.permD); err != nil {
		return contract.NewPathError(contract.ErrWrite, path, err)
	}

	if w.atomic {
		err = w.writeAtomic(ctx, dest, r)
	} else {
		err = w.writeInPlace(ctx, dest, r)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		return contract.NewPathError(contract.ErrWrite, path, err)
	}
	return nil
}

// destPath cleans path and refuses empty targets and existing directories.
func destPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", contract.ErrPathInvalid
	}
	dest := filepath.Clean(path)
	if fi, err := os.Stat(dest); err == nil && fi.IsDir() {
		return "", errors.Wrap(contract.ErrPathInvalid, "is a directory")
	}
	return dest, nil
}

func (w *FS) writeInPlace(ctx context.Context, dest string, r io.Reader) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.permF)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, w.bufSize)
	if _, err := io.Copy(bw, readerWithCtx(ctx, r)); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (w *FS) writeAtomic(ctx context.Context, dest string, r io.Reader) (err error) {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()
	// CreateTemp uses 0600; not every filesystem honours chmod.
	_ = tmp.Chmod(w.permF)

	bw := bufio.NewWriterSize(tmp, w.bufSize)
	if _, err = io.Copy(bw, readerWithCtx(ctx, r)); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return replaceFile(tmpPath, dest)
}

// readerWithCtx checks ctx before every Read.
func readerWithCtx(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}
	return cr.r.Read(p)
}
