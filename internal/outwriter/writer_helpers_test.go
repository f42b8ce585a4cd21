package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatter(t *testing.T) {
	assert.Equal(t, "3.14", createFormatter(2)(3.14159))
	assert.Equal(t, "3", createFormatter(0)(3.14159))
	assert.Equal(t, "-42.57", createFormatter(2)(-42.567))
}

func TestFormatOptional(t *testing.T) {
	v := 1.5
	assert.Equal(t, "1.50", formatOptional(&v, createFormatter(2), "n/a"))
	assert.Equal(t, "n/a", formatOptional(nil, createFormatter(2), "n/a"))
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, make(chan int))
	assert.ErrorContains(t, err, "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"test", "note"}, func(w *csv.Writer) error {
		return w.Write([]string{"regex", "a, b"})
	})
	require.NoError(t, err)
	assert.Equal(t, "test,note\nregex,\"a, b\"\n", buf.String())

	err = writeCSVWithHeader(&buf, []string{"x"}, func(*csv.Writer) error { return assert.AnError })
	assert.Equal(t, assert.AnError, err)
}

func TestWriteWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, writeWithFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "content")
		return err
	}, "Wrote test"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	assert.Equal(t, assert.AnError, writeWithFile(path, func(io.Writer) error { return assert.AnError }, "x"))
	assert.Error(t, writeWithFile("/nonexistent/dir/out.txt", func(io.Writer) error { return nil }, "x"))
}
