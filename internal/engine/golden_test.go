//go:build cgo

package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jslice/internal/testutil"
)

func TestGolden(t *testing.T) {
	for _, name := range testutil.AvailableScenarios(t) {
		if !testutil.ShouldRun(name) {
			continue
		}
		t.Run(name, func(t *testing.T) {
			sc := testutil.LoadScenario(t, name)
			out := filepath.Join(t.TempDir(), "out")
			_, err := newEngine(t, Options{}).Run(context.Background(), Request{
				Root:    sc.SourceDir,
				Targets: sc.Targets,
				OutDir:  out,
			})
			require.NoError(t, err)
			testutil.CompareTree(t, sc, out, ManifestFileName)
		})
	}
}
