package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendLinesAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")

	AppendLines(t, path, "one", "two")
	AppendRaw(t, path, "three")

	assert.Equal(t, "one\ntwo\nthree", ReadFile(t, path))
	assert.Equal(t, int64(13), FileSize(t, path))
	assert.True(t, Exists(path))
	assert.False(t, Exists(path+".missing"))
}

func TestWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")

	WriteFile(t, path, "first")
	WriteFile(t, path, "second")

	assert.Equal(t, "second", ReadFile(t, path))
}

func TestCaptureLogger(t *testing.T) {
	var buf bytes.Buffer
	CaptureLogger(&buf).Debug("hello", "k", "v")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=v")
}
