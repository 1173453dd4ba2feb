package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "com", "example", "Foo.java")
	if err := os.MkdirAll(filepath.Dir(testFile), 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("package com.example;"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	canonical, err := CanonicalizePath(testFile, tempDir)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}

	expected := "com/example/Foo.java"
	if canonical != expected {
		t.Errorf("Expected %s, got %s", expected, canonical)
	}
}

func TestIsWithinRoot(t *testing.T) {
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "sub", "A.java")
	if err := os.MkdirAll(filepath.Dir(testFile), 0755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}
	if err := os.WriteFile(testFile, []byte("class A {}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !IsWithinRoot(testFile, tempDir) {
		t.Error("Expected file to be within root")
	}
	if IsWithinRoot(filepath.Join(filepath.Dir(tempDir), "outside.java"), tempDir) {
		t.Error("Expected file outside root to return false")
	}
}

func TestJoinRootPath(t *testing.T) {
	result := JoinRootPath("/src/root", "com/example/Foo.java")
	expected := filepath.Join("/src/root", "com", "example", "Foo.java")
	if result != expected {
		t.Errorf("JoinRootPath: expected %s, got %s", expected, result)
	}
}

func TestQualifiedToFile(t *testing.T) {
	tests := []struct {
		pkg, simple string
		want        string
	}{
		{"com.example", "Foo", "com/example/Foo.java"},
		{"", "Foo", "Foo.java"},
		{"org", "SyntheticTypeForX", "org/SyntheticTypeForX.java"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := QualifiedToFile(tt.pkg, tt.simple); got != tt.want {
				t.Errorf("QualifiedToFile(%q, %q) = %q, want %q", tt.pkg, tt.simple, got, tt.want)
			}
		})
	}
}

func TestFileToQualified(t *testing.T) {
	got, ok := FileToQualified("com/example/Foo.java")
	if !ok || got != "com.example.Foo" {
		t.Errorf("FileToQualified = %q, %v; want com.example.Foo, true", got, ok)
	}
	if _, ok := FileToQualified("README.md"); ok {
		t.Error("FileToQualified should reject non-Java paths")
	}
}

func TestSplitQualified(t *testing.T) {
	q, s := SplitQualified("com.example.Outer.Inner")
	if q != "com.example.Outer" || s != "Inner" {
		t.Errorf("SplitQualified = %q, %q", q, s)
	}
	q, s = SplitQualified("Foo")
	if q != "" || s != "Foo" {
		t.Errorf("SplitQualified(Foo) = %q, %q", q, s)
	}
}

func TestDataPaths(t *testing.T) {
	root := t.TempDir()

	dir, err := EnsureDataDir(root)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	if dir != filepath.Join(root, ".jslice") {
		t.Errorf("EnsureDataDir = %s", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("data dir should exist: %v", err)
	}
	if got := JournalPath(root); got != filepath.Join(root, ".jslice", "journal.db") {
		t.Errorf("JournalPath = %s", got)
	}
	if got := ConfigPath(root); got != filepath.Join(root, ".jslice", "config.json") {
		t.Errorf("ConfigPath = %s", got)
	}
	if got := LogPath(root, "watch"); got != filepath.Join(root, ".jslice", "logs", "watch.log") {
		t.Errorf("LogPath = %s", got)
	}
}

func TestIsHiddenOrBuildDir(t *testing.T) {
	tests := map[string]bool{
		".git":    true,
		".jslice": true,
		"build":   true,
		"target":  true,
		"src":     false,
		"com":     false,
		".":       false,
	}
	for name, want := range tests {
		if got := IsHiddenOrBuildDir(name); got != want {
			t.Errorf("IsHiddenOrBuildDir(%q) = %v, want %v", name, got, want)
		}
	}
}
