package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "session.json")
	w := &FileWriter{Path: path}

	require.NoError(t, w.WriteState([]byte(`{"version":"1.0.0"}`)))
	require.NoError(t, w.WriteState([]byte(`{"version":"1.0.1"}`)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1.0.1"}`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileWriter_RenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path makes the rename fail.
	target := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), nil, 0o644))

	w := &FileWriter{Path: target}
	require.Error(t, w.WriteState([]byte("{}")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemWriter(t *testing.T) {
	var w MemWriter
	var sink Sink = &w

	require.NoError(t, sink.WriteState([]byte("abc")))
	require.NoError(t, sink.WriteState([]byte("de")))
	assert.Equal(t, "de", string(w.Buf))
	assert.Equal(t, 2, w.Writes)
}
