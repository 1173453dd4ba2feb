package engine

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/blake2b"

	jerrors "jslice/internal/errors"
	"jslice/internal/version"
)

// ManifestFileName marks a directory as a jslice output.
const ManifestFileName = "jslice.toml"

// ManifestVersion is the manifest schema written by this build.
const ManifestVersion = 1

// Manifest describes a written slice. It holds no run id or timestamps so
// the same input always writes the same manifest.
type Manifest struct {
	Version    int            `toml:"version"`
	Generator  string         `toml:"generator"`
	Root       string         `toml:"root"`
	Policy     string         `toml:"policy"`
	Targets    []string       `toml:"targets"`
	Oracle     string         `toml:"oracle"`
	Iterations int            `toml:"iterations"`
	Digest     string         `toml:"digest"`
	Choices    []string       `toml:"choices,omitempty"`
	Files      []ManifestFile `toml:"file"`
}

// ManifestFile is one entry of Manifest.Files.
type ManifestFile struct {
	Path      string `toml:"path"`
	Synthetic bool   `toml:"synthetic"`
	Digest    string `toml:"digest"`
}

func newManifest(rep *Report) *Manifest {
	m := &Manifest{
		Version:    ManifestVersion,
		Generator:  version.ManifestTag(),
		Root:       rep.Root,
		Policy:     rep.Policy,
		Targets:    rep.Targets,
		Oracle:     rep.Oracle,
		Iterations: rep.Iterations,
		Digest:     rep.Digest,
		Choices:    rep.Choices,
	}
	for _, f := range rep.Files {
		m.Files = append(m.Files, ManifestFile{Path: f.Path, Synthetic: f.Synthetic, Digest: f.Digest})
	}
	return m
}

func writeManifest(dir string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return jerrors.New(jerrors.OutputFailed, "failed to encode manifest", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0644); err != nil {
		return jerrors.New(jerrors.OutputFailed, "failed to write manifest", err)
	}
	return nil
}

// ReadManifest reads the manifest of an output directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, jerrors.Newf(jerrors.OutputFailed, "%s holds no %s", dir, ManifestFileName)
		}
		return nil, jerrors.New(jerrors.OutputFailed, "failed to read manifest", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, jerrors.New(jerrors.OutputFailed, "malformed manifest in "+dir, err)
	}
	return &m, nil
}

// fileDigest is the hex blake2b-256 of content.
func fileDigest(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// sliceDigest hashes files, which must be sorted by path, so two slices
// with the same paths and contents share a digest.
func sliceDigest(files []File) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	for _, f := range files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(n[:], uint64(len(f.Content)))
		h.Write(n[:])
		h.Write(f.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
