package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest_Defaults(t *testing.T) {
	path := writeManifest(t, `
defaults:
  columns: {node1: p1, node2: p2, sim: sim, sup: sup}
  centrality: dense
  min_centrality_quantile: 0.25
runs:
  - name: first
    input: {location: a.csv}
    outgraph: a.graphml
    group: a.json
  - input: {location: b.xlsx, sheet: edges}
    outgraph: b.graphml
    group: b.json
    centrality: power
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Runs, 2)
	assert.Equal(t, "first", m.Runs[0].Name)
	assert.Equal(t, "run-2", m.Runs[1].Name)

	first := m.Resolved(0)
	assert.Equal(t, testColumns, first.Columns)
	assert.Equal(t, "dense", first.Provider)
	require.NotNil(t, first.CentralityQuantile)
	assert.Equal(t, 0.25, *first.CentralityQuantile)

	second := m.Resolved(1)
	assert.Equal(t, "power", second.Provider)
	assert.Equal(t, "edges", second.Input.Sheet)
	assert.Equal(t, testColumns, second.Columns)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no runs", "defaults: {centrality: power}\nruns: []\n"},
		{"unknown key", "runs:\n  - input: {location: a.csv}\n    colour: blue\n"},
		{"not yaml", "runs: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMerge_LegacyFilterIsInherited(t *testing.T) {
	d := Config{LegacySupportFilter: true}
	assert.True(t, merge(Config{}, d).LegacySupportFilter)

	// A run that sets its own quantile does not inherit the legacy filter.
	own := merge(Config{SupportQuantile: quantile(0.2)}, d)
	assert.False(t, own.LegacySupportFilter)
	assert.Equal(t, 0.2, *own.SupportQuantile)
}

func TestRunBatch_ContinuesPastFailures(t *testing.T) {
	good := writeEdges(t, "A,B,0.9,5", "B,C,0.8,5")
	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("x,y\n1,2\n"), 0o644))
	empty := writeEdges(t)
	out := t.TempDir()

	path := writeManifest(t, fmt.Sprintf(`
defaults:
  columns: {node1: p1, node2: p2, sim: sim, sup: sup}
  legacy_support_filter: true
runs:
  - name: good
    input: {location: '%s'}
    outgraph: '%s'
    group: '%s'
  - name: bad
    input: {location: '%s'}
    outgraph: '%s'
    group: '%s'
  - name: empty
    input: {location: '%s'}
    outgraph: '%s'
    group: '%s'
`,
		good, filepath.Join(out, "good.graphml"), filepath.Join(out, "good.json"),
		bad, filepath.Join(out, "bad.graphml"), filepath.Join(out, "bad.json"),
		empty, filepath.Join(out, "empty.graphml"), filepath.Join(out, "empty.json"),
	))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	results, err := testRunner().RunBatch(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "good", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.Equal(t, StatusOK, results[0].Result.Status)

	assert.Equal(t, "bad", results[1].Name)
	assert.ErrorIs(t, results[1].Err, ErrSchemaMismatch)
	assert.Nil(t, results[1].Result)
	assert.NoFileExists(t, filepath.Join(out, "bad.graphml"))

	require.NoError(t, results[2].Err)
	assert.Equal(t, StatusEmptyInput, results[2].Result.Status)
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &Manifest{Runs: []ManifestRun{{Name: "never"}}}
	results, err := testRunner().RunBatch(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
