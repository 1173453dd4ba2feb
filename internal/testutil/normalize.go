package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ReadTree reads every regular file under dir into a map keyed by
// slash-separated relative path. Contents are normalized for comparison.
func ReadTree(t *testing.T, dir string, ignore ...string) map[string]string {
	t.Helper()

	skip := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		skip[name] = true
	}

	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || skip[d.Name()] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = NormalizeContent(string(data))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", dir, err)
	}
	return out
}

// NormalizeContent makes line endings uniform so golden trees checked out
// on any platform compare equal.
func NormalizeContent(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
