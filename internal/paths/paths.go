// Package paths maps between Java qualified names, source files and the
// per-root .jslice data directory.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the per-root directory holding config, journal and logs
	DataDirName = ".jslice"
	// ConfigFileName is the config file inside DataDirName
	ConfigFileName = "config.json"
	// JournalFileName is the sqlite run journal inside DataDirName
	JournalFileName = "journal.db"
	// JavaExt is the source extension of every emitted file
	JavaExt = ".java"
)

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to the source root
// - Returns the relative path with forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if os.IsNotExist(err) {
			resolved = absolutePath
		} else {
			return "", err
		}
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if os.IsNotExist(err) {
			rootResolved = root
		} else {
			return "", err
		}
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relativePath), nil
}

// IsWithinRoot checks if a path is within the source root
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath converts OS separators to forward slashes
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// JoinRootPath joins a root with a canonical (slash separated) path
func JoinRootPath(root string, canonicalPath string) string {
	normalizedPath := strings.ReplaceAll(canonicalPath, "\\", "/")
	parts := strings.Split(normalizedPath, "/")
	return filepath.Join(append([]string{root}, parts...)...)
}

// QualifiedToFile returns the canonical file path of a top-level type,
// e.g. com.example.Foo -> com/example/Foo.java.
func QualifiedToFile(pkg, simpleName string) string {
	if pkg == "" {
		return simpleName + JavaExt
	}
	return strings.ReplaceAll(pkg, ".", "/") + "/" + simpleName + JavaExt
}

// FileToQualified is the inverse of QualifiedToFile for canonical paths.
// It returns false for paths that do not end in the Java extension.
func FileToQualified(canonicalPath string) (string, bool) {
	p := NormalizePath(canonicalPath)
	if !strings.HasSuffix(p, JavaExt) {
		return "", false
	}
	return strings.ReplaceAll(strings.TrimSuffix(p, JavaExt), "/", "."), true
}

// SplitQualified splits a dotted name into its qualifier and last segment.
func SplitQualified(name string) (qualifier, simple string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// DataDir returns <root>/.jslice
func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// EnsureDataDir creates <root>/.jslice if needed and returns it
func EnsureDataDir(root string) (string, error) {
	dir := DataDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// ConfigPath returns <root>/.jslice/config.json
func ConfigPath(root string) string {
	return filepath.Join(DataDir(root), ConfigFileName)
}

// JournalPath returns <root>/.jslice/journal.db
func JournalPath(root string) string {
	return filepath.Join(DataDir(root), JournalFileName)
}

// LogPath returns <root>/.jslice/logs/<name>.log
func LogPath(root, name string) string {
	return filepath.Join(DataDir(root), "logs", name+".log")
}

// IsHiddenOrBuildDir reports directories the source walker never enters.
func IsHiddenOrBuildDir(name string) bool {
	if name == "." || name == "" {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "build", "target", "out", "bin", "node_modules":
		return true
	}
	return false
}
