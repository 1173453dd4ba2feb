// Package testutil provides golden-tree helpers for slice scenarios.
//
// A scenario lives in testdata/scenarios/<name>/ at the project root:
//
//	src/          the source root handed to the slicer
//	targets.txt   one target per line
//	expected/     the output tree the slice must reproduce
package testutil

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Scenario holds the paths of one loaded scenario.
type Scenario struct {
	Name string

	// Root is the absolute path to the scenario directory
	Root string

	// SourceDir is the source root of the scenario
	SourceDir string

	// ExpectedDir is the golden output tree
	ExpectedDir string

	Targets []string
}

// LoadScenario loads a scenario by name, failing the test on error.
func LoadScenario(t *testing.T, name string) *Scenario {
	t.Helper()

	dir := filepath.Join(scenariosRoot(t), name)
	sourceDir := filepath.Join(dir, "src")
	if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
		t.Fatalf("Scenario source not found: %s", sourceDir)
	}

	targets, err := readTargets(filepath.Join(dir, "targets.txt"))
	if err != nil {
		t.Fatalf("Failed to read targets of %s: %v", name, err)
	}
	if len(targets) == 0 {
		t.Fatalf("Scenario %s has no targets", name)
	}

	return &Scenario{
		Name:        name,
		Root:        dir,
		SourceDir:   sourceDir,
		ExpectedDir: filepath.Join(dir, "expected"),
		Targets:     targets,
	}
}

func readTargets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// scenariosRoot returns the absolute path to testdata/scenarios/.
func scenariosRoot(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	root := filepath.Join(projectRoot, "testdata", "scenarios")

	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Scenarios root not found: %s", root)
	}
	return root
}

// AvailableScenarios returns the names of all scenarios.
func AvailableScenarios(t *testing.T) []string {
	t.Helper()

	root := scenariosRoot(t)
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("Failed to read scenarios directory: %v", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !isHiddenDir(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names
}

func isHiddenDir(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
