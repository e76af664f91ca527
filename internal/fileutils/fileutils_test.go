package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/fatura-csv/internal/fileutils"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "nonexistent.txt")))
	// Directories are not files.
	assert.False(t, fileutils.FileExists(tmpDir))
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "nonexistent")))

	testFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0600))
	assert.False(t, fileutils.DirectoryExists(testFile))
}

func TestEnsureDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()

	newDir := filepath.Join(tmpDir, "new", "nested", "dir")
	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.True(t, fileutils.DirectoryExists(newDir))

	// Existing directory and empty path are no-ops.
	assert.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.NoError(t, fileutils.EnsureDirectoryExists(""))
}

func TestReadWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out", "report.json")

	require.NoError(t, fileutils.WriteFile(path, []byte(`{"ok":true}`), 0600))

	data, err := fileutils.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	_, err = fileutils.ReadFile(filepath.Join(tmpDir, "missing.json"))
	assert.Error(t, err)
}

func TestListFilesWithExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.TXT", "c.csv", "d.PDF"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "sub.pdf"), 0750))

	files, err := fileutils.ListFilesWithExtensions(tmpDir, ".pdf", ".txt")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "a.TXT"),
		filepath.Join(tmpDir, "b.pdf"),
		filepath.Join(tmpDir, "d.PDF"),
	}, files)

	_, err = fileutils.ListFilesWithExtensions(filepath.Join(tmpDir, "missing"), ".pdf")
	assert.Error(t, err)
}
