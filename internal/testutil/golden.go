package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

var (
	// updateGolden controls whether golden trees should be updated.
	// Use: go test ./... -run TestGolden -update
	updateGolden = flag.Bool("update", false, "update golden trees")

	// scenarioFilter limits which scenarios run.
	// Use: go test ./... -run TestGolden -scenario=self-contained
	scenarioFilter = flag.String("scenario", "", "filter scenarios (comma-separated)")
)

// ShouldUpdate returns true if golden trees should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// ShouldRun returns true if the named scenario passes the -scenario filter.
func ShouldRun(name string) bool {
	if *scenarioFilter == "" {
		return true
	}
	for _, s := range strings.Split(*scenarioFilter, ",") {
		if strings.TrimSpace(s) == name {
			return true
		}
	}
	return false
}

// CompareTree compares the output tree in gotDir against the scenario's
// expected tree, failing with a diff per mismatched file. Files matching
// ignore (base names) are left out on both sides. With -update the
// expected tree is replaced instead.
func CompareTree(t *testing.T, sc *Scenario, gotDir string, ignore ...string) {
	t.Helper()

	got := ReadTree(t, gotDir, ignore...)

	if *updateGolden {
		UpdateTree(t, sc, got)
		t.Logf("Updated golden tree: %s", sc.ExpectedDir)
		return
	}

	if _, err := os.Stat(sc.ExpectedDir); os.IsNotExist(err) {
		t.Fatalf("Golden tree missing: %s\n\nRun with -update to create:\n  go test ./... -run %s -update",
			sc.ExpectedDir, t.Name())
	}
	expected := ReadTree(t, sc.ExpectedDir, ignore...)

	for _, path := range unionKeys(expected, got) {
		exp, inExp := expected[path]
		g, inGot := got[path]
		switch {
		case !inExp:
			t.Errorf("Unexpected file %s:\n%s", path, g)
		case !inGot:
			t.Errorf("Missing file %s", path)
		case exp != g:
			t.Errorf("Golden mismatch for %s:\n%s", path, unifiedDiff(exp, g, path))
		}
	}
	if t.Failed() {
		t.Logf("Run with -update to refresh:\n  go test ./... -run %s -update", t.Name())
	}
}

// UpdateTree replaces the scenario's expected tree with files.
func UpdateTree(t *testing.T, sc *Scenario, files map[string]string) {
	t.Helper()

	if err := os.RemoveAll(sc.ExpectedDir); err != nil {
		t.Fatalf("Failed to clear expected tree: %v", err)
	}
	for path, content := range files {
		full := filepath.Join(sc.ExpectedDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create expected directory: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
	}
}

func unionKeys(a, b map[string]string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, m := range []map[string]string{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

// unifiedDiff produces a simple line-by-line diff between two strings.
func unifiedDiff(expected, got, path string) string {
	var buf bytes.Buffer

	expectedLines := strings.Split(expected, "\n")
	gotLines := strings.Split(got, "\n")

	fmt.Fprintf(&buf, "--- %s (expected)\n", path)
	fmt.Fprintf(&buf, "+++ %s (got)\n", path)

	maxLines := max(len(expectedLines), len(gotLines))

	inHunk := false
	hunkStart := 0
	var hunkLines []string

	flushHunk := func() {
		if len(hunkLines) > 0 {
			fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n", hunkStart+1, len(hunkLines), hunkStart+1, len(hunkLines))
			for _, line := range hunkLines {
				buf.WriteString(line)
				buf.WriteString("\n")
			}
			hunkLines = nil
		}
	}

	for i := 0; i < maxLines; i++ {
		var expLine, gotLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(gotLines) {
			gotLine = gotLines[i]
		}

		if expLine == gotLine {
			if inHunk {
				hunkLines = append(hunkLines, " "+expLine)
				if len(hunkLines) > 6 {
					flushHunk()
					inHunk = false
				}
			}
			continue
		}
		if !inHunk {
			inHunk = true
			hunkStart = i
			for j := max(0, i-3); j < i; j++ {
				if j < len(expectedLines) {
					hunkLines = append(hunkLines, " "+expectedLines[j])
				}
			}
		}
		if i < len(expectedLines) {
			hunkLines = append(hunkLines, "-"+expLine)
		}
		if i < len(gotLines) {
			hunkLines = append(hunkLines, "+"+gotLine)
		}
	}

	flushHunk()
	return buf.String()
}
