package slogutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// LogFile is an append-only log file. With a size limit it rotates
// before a write would cross the limit: the current file is compressed
// to <path>.1.zst, older backups shift up, and at most keep backups
// survive.
type LogFile struct {
	path  string
	limit int64
	keep  int

	mu      sync.Mutex
	f       *os.File
	written int64
}

// OpenLogFile opens path for appending, creating its directory. limit 0
// disables rotation.
func OpenLogFile(path string, limit int64, keep int) (*LogFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	lf := &LogFile{path: path, limit: limit, keep: keep}
	if err := lf.open(); err != nil {
		return nil, err
	}
	return lf, nil
}

func (lf *LogFile) open() error {
	f, err := os.OpenFile(lf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	lf.f, lf.written = f, info.Size()
	return nil
}

func (lf *LogFile) Write(p []byte) (int, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.f == nil {
		return 0, os.ErrClosed
	}
	if lf.limit > 0 && lf.written > 0 && lf.written+int64(len(p)) > lf.limit {
		if err := lf.rotate(); err != nil && lf.f == nil {
			return 0, err
		}
	}
	n, err := lf.f.Write(p)
	lf.written += int64(n)
	return n, err
}

func (lf *LogFile) Close() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.f == nil {
		return nil
	}
	err := lf.f.Close()
	lf.f = nil
	return err
}

// rotate keeps writing to the old file when a backup step fails; only a
// failed reopen leaves lf without a file.
func (lf *LogFile) rotate() error {
	if err := lf.f.Close(); err != nil {
		return err
	}
	lf.f = nil

	var err error
	if lf.keep > 0 {
		_ = os.Remove(lf.backup(lf.keep))
		for n := lf.keep - 1; n >= 1; n-- {
			if _, statErr := os.Stat(lf.backup(n)); statErr == nil {
				_ = os.Rename(lf.backup(n), lf.backup(n+1))
			}
		}
		err = compressFile(lf.path, lf.backup(1))
	}
	if err == nil {
		_ = os.Remove(lf.path)
	}
	if openErr := lf.open(); openErr != nil {
		return openErr
	}
	return err
}

func (lf *LogFile) backup(n int) string {
	return fmt.Sprintf("%s.%d.zst", lf.path, n)
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var sizeUnits = []struct {
	suffix string
	factor float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize reads logging.maxSize values such as "10MB" or "512KB". A
// bare number is bytes. Empty, negative or malformed sizes are 0.
func ParseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	factor := 1.0
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s, factor = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.factor
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v * factor)
}
