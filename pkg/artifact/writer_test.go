package artifact

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocations(t *testing.T, graphName string) Locations {
	t.Helper()
	dir := t.TempDir()
	return Locations{
		Graph:  filepath.Join(dir, graphName),
		Groups: filepath.Join(dir, "groups.json"),
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestWriter_WriteEmpty(t *testing.T) {
	loc := testLocations(t, "graph.graphml")
	w := NewWriter(FileSink{}, FormatGraphML, nil)

	require.NoError(t, w.WriteEmpty(context.Background(), loc))

	assert.Empty(t, readFile(t, loc.Graph))
	assert.Empty(t, readFile(t, loc.Groups))

	file, err := ReadGroups(bytes.NewReader(readFile(t, loc.Groups)))
	require.NoError(t, err)
	assert.Empty(t, file.Groups)
}

func TestWriter_WriteDiagnostic(t *testing.T) {
	loc := testLocations(t, "graph.graphml")
	w := NewWriter(FileSink{}, FormatGraphML, nil)

	require.NoError(t, w.WriteDiagnostic(context.Background(), loc, errors.New("no unique dominant eigenvector")))

	for _, path := range []string{loc.Graph, loc.Groups} {
		msg, ok := ParseDiagnostic(readFile(t, path))
		assert.True(t, ok, path)
		assert.Equal(t, "no unique dominant eigenvector", msg)
	}
}

func TestWriter_WriteResult_GraphML(t *testing.T) {
	loc := testLocations(t, "graph.graphml")
	w := NewWriter(FileSink{}, FormatGraphML, nil)
	g := pathGraph()

	out := Output{Graph: g, Groups: [][]string{{"A", "B", "C"}}}
	require.NoError(t, w.WriteResult(context.Background(), loc, out))

	back, _, err := ReadGraphML(bytes.NewReader(readFile(t, loc.Graph)))
	require.NoError(t, err)
	assert.Equal(t, 3, back.NodeCount())

	file, err := ReadGroups(bytes.NewReader(readFile(t, loc.Groups)))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "B", "C"}}, file.Groups)

	// Rewriting the same output is byte-identical
	first := readFile(t, loc.Graph)
	require.NoError(t, w.WriteResult(context.Background(), loc, out))
	assert.Equal(t, first, readFile(t, loc.Graph))
}

func TestWriter_WriteResult_DOT(t *testing.T) {
	loc := testLocations(t, "graph.dot")
	w := NewWriter(FileSink{}, FormatDOT, nil)
	g := pathGraph()

	out := Output{
		Graph:  g,
		Scores: map[string]float64{"A": 0.75, "B": 1, "C": 0.66},
		Groups: [][]string{{"A", "B", "C"}},
	}
	require.NoError(t, w.WriteResult(context.Background(), loc, out))

	dot := string(readFile(t, loc.Graph))
	assert.True(t, strings.Contains(dot, "graph coordinated"), dot)
	assert.Contains(t, dot, "--")
	assert.Contains(t, dot, "weight=")
	assert.Contains(t, dot, "support=")
	assert.NotContains(t, dot, "sim=")
	assert.Contains(t, dot, "centrality=")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatGraphML, "graphml": FormatGraphML, "dot": FormatDOT, "gv": FormatDOT} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("gexf")
	assert.Error(t, err)
}
