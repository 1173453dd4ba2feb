package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// ErrRunNotFound is returned when no journaled run matches an id
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed width so stored times sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunStatus is the lifecycle state of a journaled run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one slice run
type Run struct {
	ID      string
	Root    string
	OutDir  string
	Targets []string
	Policy  string
	Status  RunStatus
	// Outcome is the oracle outcome, empty when the oracle did not run
	Outcome      string
	ErrorCode    string
	ErrorMessage string
	KeptNodes    int
	Generated    int
	FilesWritten int
	Digest       string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Iteration is one journaled oracle iteration
type Iteration struct {
	RunID       string
	N           int
	Files       int
	Diagnostics int
	Applied     int
	Duration    time.Duration
	Error       string
	Transcript  string
}

// Journal records runs and oracle iterations
type Journal struct {
	db  *DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewJournal wraps an open database
func NewJournal(db *DB) (*Journal, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to create transcript decoder: %w", err)
	}
	return &Journal{db: db, enc: enc, dec: dec}, nil
}

// Close releases the codecs and the database
func (j *Journal) Close() error {
	j.dec.Close()
	encErr := j.enc.Close()
	if err := j.db.Close(); err != nil {
		return err
	}
	return encErr
}

// BeginRun assigns r an id and start time and stores it as running
func (j *Journal) BeginRun(ctx context.Context, r *Run) error {
	r.ID = uuid.New().String()
	r.StartedAt = time.Now().UTC()
	r.Status = RunRunning

	targets, err := json.Marshal(r.Targets)
	if err != nil {
		return fmt.Errorf("failed to encode targets: %w", err)
	}
	_, err = j.db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, root, out_dir, targets_json, policy, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Root, r.OutDir, string(targets), r.Policy, string(r.Status), r.StartedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final state of r and stamps its finish time
func (j *Journal) FinishRun(ctx context.Context, r *Run) error {
	now := time.Now().UTC()
	r.FinishedAt = &now
	res, err := j.db.conn.ExecContext(ctx, `
		UPDATE runs SET status = ?, outcome = ?, error_code = ?, error_message = ?,
			kept_nodes = ?, generated = ?, files_written = ?, digest = ?, finished_at = ?
		WHERE id = ?
	`, string(r.Status), nullString(r.Outcome), nullString(r.ErrorCode), nullString(r.ErrorMessage),
		r.KeptNodes, r.Generated, r.FilesWritten, nullString(r.Digest), now.Format(timeLayout), r.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, r.ID)
	}
	return nil
}

// RecordIteration stores one oracle iteration of a run
func (j *Journal) RecordIteration(ctx context.Context, it Iteration) error {
	var transcript []byte
	if it.Transcript != "" {
		transcript = j.enc.EncodeAll([]byte(it.Transcript), nil)
	}
	_, err := j.db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO iterations (run_id, n, files, diagnostics, applied, duration_ms, error, transcript)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, it.RunID, it.N, it.Files, it.Diagnostics, it.Applied, it.Duration.Milliseconds(), nullString(it.Error), transcript)
	if err != nil {
		return fmt.Errorf("failed to insert iteration: %w", err)
	}
	return nil
}

const runColumns = `id, root, out_dir, targets_json, policy, status, outcome, error_code, error_message,
	kept_nodes, generated, files_written, digest, started_at, finished_at`

// GetRun returns the run whose id is id or starts with it
func (j *Journal) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := j.db.conn.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return &runs[0], nil
	}
	return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
}

// ListRuns returns the most recent runs first; limit <= 0 returns all
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.conn.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Iterations returns the oracle iterations of a run in order, with
// transcripts decompressed
func (j *Journal) Iterations(ctx context.Context, runID string) ([]Iteration, error) {
	rows, err := j.db.conn.QueryContext(ctx, `
		SELECT n, files, diagnostics, applied, duration_ms, error, transcript
		FROM iterations WHERE run_id = ? ORDER BY n
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iterations: %w", err)
	}
	defer rows.Close()

	var out []Iteration
	for rows.Next() {
		it := Iteration{RunID: runID}
		var durationMs int64
		var errText sql.NullString
		var transcript []byte
		if err := rows.Scan(&it.N, &it.Files, &it.Diagnostics, &it.Applied, &durationMs, &errText, &transcript); err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}
		it.Duration = time.Duration(durationMs) * time.Millisecond
		it.Error = errText.String
		if len(transcript) > 0 {
			plain, err := j.dec.DecodeAll(transcript, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress transcript of iteration %d: %w", it.N, err)
			}
			it.Transcript = string(plain)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// PruneRuns deletes all but the keep most recent runs and returns how
// many were deleted; keep <= 0 deletes nothing
func (j *Journal) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM runs WHERE id NOT IN (
				SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
			)
		`, keep)
		if err != nil {
			return fmt.Errorf("failed to prune runs: %w", err)
		}
		if deleted, err = res.RowsAffected(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM iterations WHERE run_id NOT IN (SELECT id FROM runs)`); err != nil {
			return fmt.Errorf("failed to prune iterations: %w", err)
		}
		return nil
	})
	return deleted, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var r Run
	var targets, status, startedAt string
	var outcome, errCode, errMsg, digest, finishedAt sql.NullString
	if err := s.Scan(&r.ID, &r.Root, &r.OutDir, &targets, &r.Policy, &status, &outcome, &errCode, &errMsg,
		&r.KeptNodes, &r.Generated, &r.FilesWritten, &digest, &startedAt, &finishedAt); err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(targets), &r.Targets); err != nil {
		return nil, fmt.Errorf("failed to decode targets of run %s: %w", r.ID, err)
	}
	r.Status = RunStatus(status)
	r.Outcome = outcome.String
	r.ErrorCode = errCode.String
	r.ErrorMessage = errMsg.String
	r.Digest = digest.String

	var err error
	if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse start time of run %s: %w", r.ID, err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finish time of run %s: %w", r.ID, err)
		}
		r.FinishedAt = &t
	}
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
