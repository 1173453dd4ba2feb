package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jslice/internal/engine"
	jerrors "jslice/internal/errors"
	"jslice/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *engine.Report:
		return formatReportHuman(v), nil
	case *engine.CheckReport:
		return formatCheckHuman(v), nil
	case []storage.Run:
		return formatRunsHuman(v), nil
	case *RunDetail:
		return formatRunDetailHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatReportHuman(r *engine.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Slice written to %s\n", r.OutDir)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&b, "Targets (%d):\n", len(r.Targets))
	for _, t := range r.Targets {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Kept nodes:   %d\n", r.KeptNodes)
	fmt.Fprintf(&b, "Synthesized:  %d groups\n", r.Generated)
	fmt.Fprintf(&b, "Policy:       %s\n", r.Policy)
	oracle := r.Oracle
	if r.Iterations > 0 {
		oracle = fmt.Sprintf("%s after %d iteration(s), %d diagnostic(s) left", r.Oracle, r.Iterations, r.Remaining)
	}
	fmt.Fprintf(&b, "Oracle:       %s\n", oracle)
	fmt.Fprintf(&b, "Duration:     %s\n", r.Duration.Round(time.Millisecond))
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run:          %s\n", r.RunID)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Files (%d):\n", len(r.Files))
	for _, f := range r.Files {
		marker := " "
		if f.Synthetic {
			marker = "+"
		}
		fmt.Fprintf(&b, "  %s %s (%d bytes)\n", marker, f.Path, f.Bytes)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped sources (%d):\n", len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "  %s: %s\n", s.Path, s.Reason)
		}
	}
	fmt.Fprintf(&b, "\nDigest: %s", r.Digest)
	return b.String()
}

func formatCheckHuman(r *engine.CheckReport) string {
	var b strings.Builder
	status := "clean"
	if !r.Clean() {
		status = "errors"
	}
	fmt.Fprintf(&b, "Checked %d file(s) in %s: %s\n", len(r.Files), r.Dir, status)
	for _, f := range r.Files {
		if f.ExitCode == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n  %s (exit %d)\n", f.Path, f.ExitCode)
		for _, d := range f.Diagnostics {
			fmt.Fprintf(&b, "    %s: %s vs %s\n", d.Kind, d.Found, d.Required)
		}
	}
	fmt.Fprintf(&b, "\nType diagnostics: %d", r.Diagnostics)
	return b.String()
}

func formatRunsHuman(runs []storage.Run) string {
	if len(runs) == 0 {
		return "No runs journaled."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s  %-19s  %-9s  %-9s  %5s  %s\n", "RUN", "STARTED", "STATUS", "ORACLE", "FILES", "TARGETS")
	for _, r := range runs {
		oracle := r.Outcome
		if oracle == "" {
			oracle = "-"
		}
		status := string(r.Status)
		if r.ErrorCode != "" {
			status = r.ErrorCode
		}
		fmt.Fprintf(&b, "%-8s  %-19s  %-9s  %-9s  %5d  %s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			oracle,
			r.FilesWritten,
			strings.Join(r.Targets, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRunDetailHuman(d *RunDetail) string {
	var b strings.Builder
	r := d.Run
	fmt.Fprintf(&b, "Run %s\n", r.ID)
	b.WriteString(strings.Repeat("─", 50) + "\n")
	fmt.Fprintf(&b, "Root:      %s\n", r.Root)
	fmt.Fprintf(&b, "Output:    %s\n", r.OutDir)
	fmt.Fprintf(&b, "Policy:    %s\n", r.Policy)
	fmt.Fprintf(&b, "Status:    %s\n", r.Status)
	if r.ErrorCode != "" {
		fmt.Fprintf(&b, "Error:     [%s] %s\n", r.ErrorCode, r.ErrorMessage)
	}
	if r.Outcome != "" {
		fmt.Fprintf(&b, "Oracle:    %s\n", r.Outcome)
	}
	fmt.Fprintf(&b, "Started:   %s\n", r.StartedAt.Local().Format(time.RFC3339))
	if r.FinishedAt != nil {
		fmt.Fprintf(&b, "Finished:  %s (%s)\n", r.FinishedAt.Local().Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "Kept:      %d nodes, %d synthetic groups, %d files\n", r.KeptNodes, r.Generated, r.FilesWritten)
	if r.Digest != "" {
		fmt.Fprintf(&b, "Digest:    %s\n", r.Digest)
	}
	b.WriteString("\nTargets:\n")
	for _, t := range r.Targets {
		fmt.Fprintf(&b, "  %s\n", t)
	}
	if len(d.Iterations) > 0 {
		b.WriteString("\nOracle iterations:\n")
		for _, it := range d.Iterations {
			fmt.Fprintf(&b, "  #%d  files=%d diagnostics=%d applied=%d  %s", it.N, it.Files, it.Diagnostics, it.Applied, it.Duration)
			if it.Error != "" {
				fmt.Fprintf(&b, "  error: %s", it.Error)
			}
			b.WriteString("\n")
			if d.Transcripts && it.Transcript != "" {
				for _, line := range strings.Split(strings.TrimRight(it.Transcript, "\n"), "\n") {
					fmt.Fprintf(&b, "      | %s\n", line)
				}
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatError renders a command failure. Coded errors show their code and
// suggested fixes.
func FormatError(err error, format OutputFormat) (string, error) {
	var se *jerrors.SliceError
	if !errors.As(err, &se) {
		se = jerrors.New(jerrors.InternalError, err.Error(), nil)
	}
	if format == FormatJSON {
		return formatJSON(map[string]interface{}{"error": se})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s", err.Error())
	if len(se.SuggestedFixes) > 0 {
		b.WriteString("\n\nSuggested fixes:")
		for _, fix := range se.SuggestedFixes {
			switch {
			case fix.Command != "":
				fmt.Fprintf(&b, "\n  - %s\n      %s", fix.Description, fix.Command)
			case fix.Key != "":
				fmt.Fprintf(&b, "\n  - %s (%s)", fix.Description, fix.Key)
			default:
				fmt.Fprintf(&b, "\n  - %s", fix.Description)
			}
		}
	}
	return b.String(), nil
}
