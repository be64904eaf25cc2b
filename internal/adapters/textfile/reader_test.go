package textfile

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlain(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzip(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadLines_Plain(t *testing.T) {
	path := writePlain(t, "one\ntwo\nthree\n")
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestReadLines_GzipSameAsPlain(t *testing.T) {
	content := "hello world\tX1\nquick brown fox\tX2\n"
	plain, err := ReadLines(writePlain(t, content))
	require.NoError(t, err)
	gzipped, err := ReadLines(writeGzip(t, content))
	require.NoError(t, err)
	assert.Equal(t, plain, gzipped)
}

func TestOpen_DetectsByMagicNotName(t *testing.T) {
	// Gzip content in a file without a .gz suffix is still unwrapped.
	path := filepath.Join(t.TempDir(), "patterns.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("alpha beta\tX\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha beta\tX"}, lines)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writePlain(t, "")
	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.False(t, r.Scan())
	assert.NoError(t, r.Err())
}
