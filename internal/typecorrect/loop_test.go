package typecorrect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedChecker answers each call with the next output; the last one
// repeats.
type scriptedChecker struct {
	outputs []string
	errs    []error
	calls   int
	files   []string
}

func (s *scriptedChecker) Check(_ context.Context, _, file string) (Output, error) {
	i := s.calls
	if i >= len(s.outputs) {
		i = len(s.outputs) - 1
	}
	s.calls++
	s.files = append(s.files, file)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return Output{Text: s.outputs[i], ExitCode: 1}, err
}

type recordingDrafter struct {
	keys []string
}

func (r *recordingDrafter) Draft(_ context.Context, c *Corrections) ([]string, error) {
	r.keys = append(r.keys, c.Key())
	return []string{"com/example/Main.java"}, nil
}

func TestLoop_DoneWhenCheckerIsQuiet(t *testing.T) {
	checker := &scriptedChecker{outputs: []string{""}}
	drafter := &recordingDrafter{}
	var its []Iteration
	loop := &Loop{Checker: checker, Drafter: drafter, Root: "/tmp/slice", Observer: ObserverFunc(func(it Iteration) { its = append(its, it) })}

	report, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, report.Outcome)
	assert.Equal(t, 1, report.Iterations)
	assert.Equal(t, 0, report.Corrections.Len())
	require.Len(t, its, 1)
	assert.Equal(t, 1, its[0].N)
	assert.Equal(t, 1, its[0].Files)
	assert.Equal(t, []string{"com/example/Main.java"}, checker.files)
}

func TestLoop_PatchesThenDone(t *testing.T) {
	checker := &scriptedChecker{outputs: []string{
		"Main.java:5: error: incompatible types: GetCountReturnType cannot be converted to int\n",
		"",
	}}
	drafter := &recordingDrafter{}
	loop := &Loop{Checker: checker, Drafter: drafter, Root: "/tmp/slice"}

	report, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, report.Outcome)
	assert.Equal(t, 2, report.Iterations)
	got, ok := report.Corrections.Replacement("GetCountReturnType")
	assert.True(t, ok)
	assert.Equal(t, "int", got)
	require.Len(t, drafter.keys, 2)
	assert.Empty(t, drafter.keys[0])
	assert.Equal(t, report.Corrections.Key(), drafter.keys[1])
}

func TestLoop_NothingNewToLearnIsDone(t *testing.T) {
	checker := &scriptedChecker{outputs: []string{
		"Main.java:5: error: incompatible types: Apple cannot be converted to Pear\n",
	}}
	loop := &Loop{Checker: checker, Drafter: &recordingDrafter{}}

	report, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, report.Outcome)
	assert.Equal(t, 2, report.Iterations)
	assert.Equal(t, "no new corrections", report.Reason)
}

func TestLoop_BudgetExhausted(t *testing.T) {
	var outputs []string
	for i := 0; i < 5; i++ {
		outputs = append(outputs, fmt.Sprintf("A.java:1: error: incompatible types: Step%dReturnType cannot be converted to int\n", i))
	}
	drafter := &recordingDrafter{}
	loop := &Loop{Checker: &scriptedChecker{outputs: outputs}, Drafter: drafter, MaxIterations: 3}

	report, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Exhausted, report.Outcome)
	assert.Equal(t, 3, report.Iterations)
	assert.Equal(t, 3, report.Corrections.Len())
	// the final draft carries every correction
	require.Len(t, drafter.keys, 4)
	assert.Equal(t, report.Corrections.Key(), drafter.keys[3])
}

func TestLoop_CheckerFailureIsExhausted(t *testing.T) {
	failure := fmt.Errorf("%w: javac not found", ErrCheckerFailed)
	var its []Iteration
	loop := &Loop{
		Checker:  &scriptedChecker{outputs: []string{""}, errs: []error{failure}},
		Drafter:  &recordingDrafter{},
		Observer: ObserverFunc(func(it Iteration) { its = append(its, it) }),
	}

	report, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Exhausted, report.Outcome)
	assert.ErrorIs(t, report.Err, ErrCheckerFailed)
	require.Len(t, its, 1)
	assert.ErrorIs(t, its[0].Err, ErrCheckerFailed)
}

func TestLoop_CheckerTimeoutIsExhausted(t *testing.T) {
	loop := &Loop{
		Checker: &scriptedChecker{outputs: []string{""}, errs: []error{fmt.Errorf("%w: Main.java", ErrCheckerTimeout)}},
		Drafter: &recordingDrafter{},
	}

	report, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Exhausted, report.Outcome)
	assert.ErrorIs(t, report.Err, ErrCheckerTimeout)
}

func TestLoop_DraftFailureIsReturned(t *testing.T) {
	boom := errors.New("disk full")
	loop := &Loop{
		Checker: &scriptedChecker{outputs: []string{""}},
		Drafter: DraftFunc(func(context.Context, *Corrections) ([]string, error) { return nil, boom }),
	}

	_, err := loop.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLoop_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop := &Loop{Checker: &scriptedChecker{outputs: []string{""}}, Drafter: &recordingDrafter{}}

	_, err := loop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJavacChecker_MissingBinary(t *testing.T) {
	c := &JavacChecker{Javac: filepath.Join(t.TempDir(), "no-such-javac")}
	assert.False(t, c.Available())

	_, err := c.Check(context.Background(), t.TempDir(), "Main.java")
	assert.ErrorIs(t, err, ErrCheckerFailed)
}

func TestJavacChecker_CompilesWhenAvailable(t *testing.T) {
	if _, err := exec.LookPath("javac"); err != nil {
		t.Skip("javac not installed")
	}
	root := t.TempDir()
	dir := filepath.Join(root, "com", "example")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Main.java"), []byte(
		"package com.example;\n\npublic class Main {\n    int run() {\n        String s = 1;\n        return 0;\n    }\n}\n"), 0o644))

	c := &JavacChecker{}
	out, err := c.Check(context.Background(), root, "com/example/Main.java")
	require.NoError(t, err)
	assert.Equal(t, 1, out.ExitCode)

	diags, err := ParseDiagnostics(strings.NewReader(out.Text))
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, "int", diags[0].Found)
	assert.Equal(t, "String", diags[0].Required)
}
