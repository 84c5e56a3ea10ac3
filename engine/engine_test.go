package engine

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenInMemory verifies that we can open an in-memory SQLite database
// using the modernc.org/sqlite driver and execute a trivial statement.
func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE t(x INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO t(x) VALUES (1),(2),(3)")
	require.NoError(t, err)
}

func TestOpenFile_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.sqlite")

	rw, err := OpenFile(path, false)
	require.NoError(t, err)
	_, err = rw.Exec("CREATE TABLE t(x INTEGER)")
	require.NoError(t, err)
	_, err = rw.Exec("INSERT INTO t(x) VALUES (7)")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := OpenFile(path, true)
	require.NoError(t, err)
	defer ro.Close()

	var x int
	require.NoError(t, ro.QueryRow("SELECT x FROM t").Scan(&x))
	assert.Equal(t, 7, x)

	_, err = ro.Exec("INSERT INTO t(x) VALUES (8)")
	assert.Error(t, err, "read-only handle must reject writes")
}

func TestOpenFile_ReadOnlyMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sqlite")
	_, err := OpenFile(path, true)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestOpenFile_ReservedCharactersInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db?x#y %z")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "store.sqlite")

	rw, err := OpenFile(path, false)
	require.NoError(t, err)
	_, err = rw.Exec("CREATE TABLE t(x INTEGER)")
	require.NoError(t, err)
	require.NoError(t, rw.Close())
	assert.FileExists(t, path)

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing written next to the directory")

	ro, err := OpenFile(path, true)
	require.NoError(t, err)
	defer ro.Close()
	var n int
	require.NoError(t, ro.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
}

func TestFileURI(t *testing.T) {
	params := url.Values{}
	params.Add("mode", "ro")
	assert.Equal(t, "file:///data/db%3Fx%23y/vectors.sqlite?mode=ro", fileURI("/data/db?x#y/vectors.sqlite", params))
}
