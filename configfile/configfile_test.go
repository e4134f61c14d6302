package configfile

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/kjk/common/assert"
	"github.com/kjk/common/require"
	"github.com/kjk/common/u"
	"github.com/kjk/plainconfig/plainconfig"
)

func testPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "test_config.txt")
}

func TestWriteReadFile(t *testing.T) {
	path := testPath(t)
	db := map[string]any{
		"hostname": "example.com",
		"port":     int64(8080),
		"timeout":  30.5,
		"enabled":  true,
		"key":      []byte("secret_bytes"),
		"metadata": plainconfig.Dict{"version": int64(1), "author": "user"},
	}
	require.NoError(t, WriteFile(path, db, nil))

	got, s, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, db, got)
	assert.Equal(t, len(db), s.Len())
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := testPath(t)
	require.NoError(t, WriteFile(path, map[string]any{"key": "value"}, nil))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestUpdatePreservesLayout(t *testing.T) {
	path := testPath(t)
	orig := "# This is a comment\n" +
		"\n" +
		"key1=value1\n" +
		"# Another comment\n" +
		"key2/i=42\n"
	require.NoError(t, os.WriteFile(path, []byte(orig), 0o600))

	err := Update(path, nil, func(db map[string]any) error {
		db["key1"] = "modified"
		db["key3"] = "new_value"
		return nil
	})
	require.NoError(t, err)

	d, err := os.ReadFile(path)
	require.NoError(t, err)
	exp := "# This is a comment\n" +
		"\n" +
		"key1=modified\n" +
		"# Another comment\n" +
		"key2/i=42\n" +
		"key3=new_value\n"
	assert.Equal(t, exp, string(u.NormalizeNewlines(d)))
}

func TestUpdateMissingFile(t *testing.T) {
	path := testPath(t)
	err := Update(path, nil, func(db map[string]any) error {
		db["created"] = true
		return nil
	})
	require.NoError(t, err)

	db, _, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"created": true}, db)
}

func TestUpdateDeletesKey(t *testing.T) {
	path := testPath(t)
	require.NoError(t, WriteFile(path, map[string]any{"a": "1", "b": "2"}, nil))

	err := Update(path, nil, func(db map[string]any) error {
		delete(db, "a")
		return nil
	})
	require.NoError(t, err)

	db, _, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b": "2"}, db)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.txt")
	require.NoError(t, WriteFile(path, map[string]any{"k": "v"}, nil))

	// a failed write must clean up after itself too
	err := WriteFile(path, map[string]any{"bad=key": "v"}, nil)
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cfg.txt", entries[0].Name())
}
