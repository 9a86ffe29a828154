package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-tcd/pkg/logging"
)

// Manifest lists many independent runs. Each entry inherits every option it
// leaves unset from Defaults.
type Manifest struct {
	Defaults Config        `yaml:"defaults"`
	Runs     []ManifestRun `yaml:"runs"`
}

// ManifestRun is one entry of a Manifest.
type ManifestRun struct {
	Name   string `yaml:"name"`
	Config `yaml:",inline"`
}

// BatchResult is the outcome of one manifest entry. Exactly one of Result
// and Err is set.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// LoadManifest reads a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Runs) == 0 {
		return nil, fmt.Errorf("parse manifest: no runs")
	}
	for i := range m.Runs {
		if m.Runs[i].Name == "" {
			m.Runs[i].Name = fmt.Sprintf("run-%d", i+1)
		}
	}
	return &m, nil
}

// Resolved returns the configuration of entry i with defaults applied.
func (m *Manifest) Resolved(i int) Config {
	return merge(m.Runs[i].Config, m.Defaults)
}

// RunBatch executes every manifest entry in order, each with its own graph.
// A failed entry is recorded and the batch moves on; only cancellation of
// ctx stops it early.
func (r *Runner) RunBatch(ctx context.Context, m *Manifest) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(m.Runs))
	failed := 0
	for i, entry := range m.Runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Run(ctx, m.Resolved(i))
		if err != nil {
			failed++
			r.logger.Error("batch entry failed", logging.String("name", entry.Name), logging.Error(err))
		}
		results = append(results, BatchResult{Name: entry.Name, Result: res, Err: err})
	}
	r.logger.Info("batch finished",
		logging.Int("runs", len(results)),
		logging.Int("failed", failed))
	return results, nil
}

// merge fills the unset fields of c from d.
func merge(c, d Config) Config {
	if c.Input.Location == "" {
		c.Input.Location = d.Input.Location
	}
	if c.Input.Format == "" {
		c.Input.Format = d.Input.Format
	}
	if c.Input.Table == "" {
		c.Input.Table = d.Input.Table
	}
	if c.Input.Sheet == "" {
		c.Input.Sheet = d.Input.Sheet
	}
	if c.Columns.Node1 == "" {
		c.Columns.Node1 = d.Columns.Node1
	}
	if c.Columns.Node2 == "" {
		c.Columns.Node2 = d.Columns.Node2
	}
	if c.Columns.Weight == "" {
		c.Columns.Weight = d.Columns.Weight
	}
	if c.Columns.Support == "" {
		c.Columns.Support = d.Columns.Support
	}
	if c.OutGraph == "" {
		c.OutGraph = d.OutGraph
	}
	if c.OutGroups == "" {
		c.OutGroups = d.OutGroups
	}
	if c.SupportQuantile == nil && !c.LegacySupportFilter {
		c.SupportQuantile = d.SupportQuantile
		c.LegacySupportFilter = d.LegacySupportFilter
	}
	if c.CentralityQuantile == nil {
		c.CentralityQuantile = d.CentralityQuantile
	}
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Duplicates == "" {
		c.Duplicates = d.Duplicates
	}
	if c.GraphFormat == "" {
		c.GraphFormat = d.GraphFormat
	}
	return c
}
