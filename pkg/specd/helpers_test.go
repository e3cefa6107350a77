package specd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestCatalog writes data as data.csv in a fresh directory, along with
// any listed files, and returns the catalog.
func newTestCatalog(t *testing.T, data string, files ...string) *Catalog {
	t.Helper()
	root := filepath.Join(t.TempDir(), "test.cdb")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, DataFileName), []byte(data), 0o644))
	for _, f := range files {
		touch(t, filepath.Join(root, f))
	}
	return NewCatalog(root)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func codes(fs []Finding) []Code {
	out := make([]Code, len(fs))
	for i, f := range fs {
		out[i] = f.Code
	}
	return out
}
