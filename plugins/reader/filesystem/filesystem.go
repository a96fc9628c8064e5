package filesystem

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"

	"phonebook/pkg/contract"
)

// Options are the optional FileSystem Reader settings.
type Options struct {
	// BufSize is the read buffer size in bytes. Default 64KiB.
	BufSize int `json:"buf_size"`
}

// FileSystem opens the input table from the local file system.
type FileSystem struct {
	bufSize int
}

// New creates a FileSystem Reader.
func New(opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &FileSystem{bufSize: b}
}

var _ contract.Reader = (*FileSystem)(nil)

// Open returns a buffered handle on path. Symlinks to regular files are followed.
//   - missing path: ErrNotFound
//   - empty path, directory, permission or other fault: ErrRead
func (r *FileSystem) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if strings.TrimSpace(path) == "" {
		return nil, contract.NewPathError(contract.ErrRead, path, contract.ErrPathInvalid)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, contract.NewPathError(contract.ErrNotFound, path, err)
		}
		return nil, contract.NewPathError(contract.ErrRead, path, err)
	}
	if info.IsDir() {
		return nil, contract.NewPathError(contract.ErrRead, path, errors.Wrap(contract.ErrPathInvalid, "is a directory"))
	}

	f, err := os.Open(path)
	if err != nil {
		// lost a race with a delete between Stat and Open
		if errors.Is(err, fs.ErrNotExist) {
			return nil, contract.NewPathError(contract.ErrNotFound, path, err)
		}
		return nil, contract.NewPathError(contract.ErrRead, path, err)
	}
	return newBufferedCloser(f, r.bufSize), nil
}

// bufferedCloser pairs a bufio.Reader with the underlying Closer.
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

func (b *bufferedCloser) Close() error { return b.c.Close() }
