package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook/pkg/contract"
)

// TestOpenReadsFile reads a regular file through the buffered handle.
func TestOpenReadsFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "phonebook_raw.csv")
	require.NoError(t, os.WriteFile(fp, []byte("lastname,firstname\n"), 0o644))

	rc, err := New(nil).Open(context.Background(), fp)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "lastname,firstname\n", string(b))
}

func TestOpenSmallBuffer(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "in.csv")
	payload := make([]byte, 10_000)
	for i := range payload {
		payload[i] = 'a'
	}
	require.NoError(t, os.WriteFile(fp, payload, 0o644))

	rc, err := New(&Options{BufSize: 16}).Open(context.Background(), fp)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Len(t, b, len(payload))
}

// TestOpenMissing: a missing input is ErrNotFound and names the path.
func TestOpenMissing(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "nope.csv")
	_, err := New(nil).Open(context.Background(), fp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, contract.ErrRead))

	var pe *contract.PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, fp, pe.Path)
}

func TestOpenDirectory(t *testing.T) {
	_, err := New(nil).Open(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrRead))
	assert.True(t, errors.Is(err, contract.ErrPathInvalid))
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := New(nil).Open(context.Background(), "  ")
	assert.True(t, errors.Is(err, contract.ErrRead))
}

func TestOpenPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	fp := filepath.Join(t.TempDir(), "locked.csv")
	require.NoError(t, os.WriteFile(fp, []byte("x"), 0o000))
	_, err := New(nil).Open(context.Background(), fp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrRead))
	assert.False(t, errors.Is(err, contract.ErrNotFound))
}

func TestOpenSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "t.csv")
	require.NoError(t, os.WriteFile(target, []byte("ok"), 0o644))
	link := filepath.Join(dir, "l.csv")
	require.NoError(t, os.Symlink(target, link))

	rc, err := New(nil).Open(context.Background(), link)
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "ok", string(b))

	dangling := filepath.Join(dir, "d.csv")
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.csv"), dangling))
	_, err = New(nil).Open(context.Background(), dangling)
	assert.True(t, errors.Is(err, contract.ErrNotFound))
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Open(ctx, "whatever.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
