// Package artifact writes the two outputs of a detection run: the filtered
// graph and the list of coordinated groups.
package artifact

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dd0wney/cluso-tcd/pkg/graph"
	"github.com/dd0wney/cluso-tcd/pkg/logging"
)

// Format selects the graph artifact encoding.
type Format string

const (
	FormatGraphML Format = "graphml"
	FormatDOT     Format = "dot"
)

// ParseFormat accepts "graphml" (also the empty string) and "dot".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatGraphML:
		return FormatGraphML, nil
	case FormatDOT, "gv":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown graph format %q", s)
	}
}

// Locations names where the two artifacts of a run go.
type Locations struct {
	Graph  string
	Groups string
}

// Output is the data of a successful run.
type Output struct {
	Graph  graph.Reader
	Scores map[string]float64
	Groups [][]string
}

// Writer renders run outputs and hands them to a Sink.
type Writer struct {
	sink   Sink
	format Format
	logger logging.Logger
}

// NewWriter creates a writer. A nil logger discards output.
func NewWriter(sink Sink, format Format, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if format == "" {
		format = FormatGraphML
	}
	return &Writer{sink: sink, format: format, logger: logger.With(logging.Component("artifact"))}
}

func (w *Writer) put(ctx context.Context, kind, location string, data []byte) error {
	if err := w.sink.Put(ctx, location, data); err != nil {
		return fmt.Errorf("write %s artifact: %w", kind, err)
	}
	w.logger.Debug("artifact written",
		logging.String("kind", kind),
		logging.Path(location),
		logging.Int("bytes", len(data)))
	return nil
}

// WriteEmpty writes two zero-byte artifacts.
func (w *Writer) WriteEmpty(ctx context.Context, loc Locations) error {
	if err := w.put(ctx, "graph", loc.Graph, nil); err != nil {
		return err
	}
	return w.put(ctx, "groups", loc.Groups, nil)
}

// WriteDiagnostic replaces both artifacts with a single diagnostic line.
func (w *Writer) WriteDiagnostic(ctx context.Context, loc Locations, cause error) error {
	line := []byte(DiagnosticLine(cause))
	if err := w.put(ctx, "graph", loc.Graph, line); err != nil {
		return err
	}
	return w.put(ctx, "groups", loc.Groups, line)
}

// WriteResult writes the filtered graph and its groups.
func (w *Writer) WriteResult(ctx context.Context, loc Locations, out Output) error {
	var graphBuf bytes.Buffer
	switch w.format {
	case FormatDOT:
		if err := WriteDOT(ctx, &graphBuf, out.Graph, out.Scores, out.Groups); err != nil {
			return err
		}
	default:
		if err := WriteGraphML(&graphBuf, out.Graph, out.Scores); err != nil {
			return err
		}
	}

	var groupsBuf bytes.Buffer
	if err := WriteGroups(&groupsBuf, out.Groups); err != nil {
		return err
	}

	if err := w.put(ctx, "graph", loc.Graph, graphBuf.Bytes()); err != nil {
		return err
	}
	return w.put(ctx, "groups", loc.Groups, groupsBuf.Bytes())
}
