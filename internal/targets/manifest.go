// Package targets reads target manifests: the list of members to slice
// for, plus per-run overrides, kept next to the sources.
package targets

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	jerrors "jslice/internal/errors"
)

// Manifest is a target list with optional run overrides. Empty fields
// fall back to flags and config.
type Manifest struct {
	Version int      `toml:"version" yaml:"version"`
	Root    string   `toml:"root,omitempty" yaml:"root,omitempty"`
	Out     string   `toml:"out,omitempty" yaml:"out,omitempty"`
	Policy  string   `toml:"policy,omitempty" yaml:"policy,omitempty"`
	Targets []string `toml:"targets" yaml:"targets"`
}

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	// FormatList is one target per line; blank lines and lines starting
	// with # or // are skipped.
	FormatList Format = "list"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatList
}

// Load reads a manifest file. A relative Root or Out is resolved against
// the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, jerrors.New(jerrors.ConfigInvalid, fmt.Sprintf("failed to read targets file %s", path), err)
	}
	m, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if m.Root != "" && !filepath.IsAbs(m.Root) {
		m.Root = filepath.Join(dir, m.Root)
	}
	if m.Out != "" && !filepath.IsAbs(m.Out) {
		m.Out = filepath.Join(dir, m.Out)
	}
	return m, nil
}

// Parse decodes a manifest. Targets are trimmed and deduplicated in
// order; a manifest without targets is invalid.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, jerrors.New(jerrors.ConfigInvalid, "failed to parse TOML targets file", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, jerrors.New(jerrors.ConfigInvalid, "failed to parse YAML targets file", err)
		}
	default:
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
				continue
			}
			m.Targets = append(m.Targets, line)
		}
		if err := sc.Err(); err != nil {
			return nil, jerrors.New(jerrors.ConfigInvalid, "failed to read targets list", err)
		}
	}

	if m.Version < 1 {
		m.Version = 1
	}
	m.Targets = Merge(m.Targets)
	if len(m.Targets) == 0 {
		return nil, jerrors.Newf(jerrors.TargetInvalid, "targets file names no targets")
	}
	return &m, nil
}

// Merge concatenates target lists, trimming entries and dropping blanks
// and repeats. The first occurrence keeps its position.
func Merge(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Write stores m at path in the format its extension names.
func Write(path string, m *Manifest) error {
	var buf bytes.Buffer
	switch FormatOf(path) {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return fmt.Errorf("failed to encode targets file: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode targets file: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode targets file: %w", err)
		}
	default:
		for _, t := range m.Targets {
			buf.WriteString(t)
			buf.WriteByte('\n')
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
