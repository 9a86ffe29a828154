package pipeline

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tcd/pkg/algorithms"
	"github.com/dd0wney/cluso-tcd/pkg/artifact"
	"github.com/dd0wney/cluso-tcd/pkg/edgetable"
	"github.com/dd0wney/cluso-tcd/pkg/graph"
	"github.com/dd0wney/cluso-tcd/pkg/validation"
)

// Config describes one detection run.
type Config struct {
	Input     edgetable.SourceConfig `json:"input" yaml:"input"`
	OutGraph  string                 `json:"outgraph" yaml:"outgraph" validate:"required"`
	OutGroups string                 `json:"group" yaml:"group" validate:"required"`
	Columns   edgetable.Columns      `json:"columns" yaml:"columns"`

	// SupportQuantile drops rows at or below this quantile of the support
	// column. Nil selects edgetable.DefaultSupportQuantile.
	SupportQuantile *float64 `json:"min_interaction_quantile,omitempty" yaml:"min_interaction_quantile,omitempty"`
	// LegacySupportFilter keeps every row with positive support instead.
	LegacySupportFilter bool `json:"legacy_support_filter,omitempty" yaml:"legacy_support_filter,omitempty"`
	// CentralityQuantile drops nodes at or below this quantile of the
	// centrality scores. Nil selects the fixed cutoff.
	CentralityQuantile *float64 `json:"min_centrality_quantile,omitempty" yaml:"min_centrality_quantile,omitempty"`

	Provider      string `json:"centrality,omitempty" yaml:"centrality,omitempty" validate:"omitempty,oneof=power dense"`
	MaxIterations int    `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty" validate:"omitempty,min=1"`
	Duplicates    string `json:"duplicates,omitempty" yaml:"duplicates,omitempty" validate:"omitempty,oneof=overwrite sum mean max"`
	GraphFormat   string `json:"graph_format,omitempty" yaml:"graph_format,omitempty" validate:"omitempty,oneof=graphml dot"`
}

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	err := validation.NewConfigValidator("Config").
		Struct(c).
		Quantile("min_interaction_quantile", c.SupportQuantile).
		Quantile("min_centrality_quantile", c.CentralityQuantile).
		Distinct("outgraph", c.OutGraph, "group", c.OutGroups).
		When(edgetable.DetectFormat(c.Input.Location) == edgetable.FormatPostgres, func(cv *validation.ConfigValidator) {
			cv.Required("input.table", c.Input.Table)
		}).
		When(c.LegacySupportFilter, func(cv *validation.ConfigValidator) {
			cv.Custom("legacy_support_filter", func() error {
				if c.SupportQuantile != nil {
					return errors.New("cannot be combined with min_interaction_quantile")
				}
				return nil
			})
		}).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// WithDefaults returns a copy of c with every unset option filled in.
func (c Config) WithDefaults() Config {
	if c.SupportQuantile == nil && !c.LegacySupportFilter {
		q := edgetable.DefaultSupportQuantile
		c.SupportQuantile = &q
	}
	c.Provider = validation.DefaultOr(c.Provider, algorithms.PowerIterationName)
	c.MaxIterations = validation.DefaultOr(c.MaxIterations, algorithms.DefaultEigenvectorOptions().MaxIterations)
	c.Duplicates = validation.DefaultOr(c.Duplicates, graph.Overwrite.String())
	c.GraphFormat = validation.DefaultOr(c.GraphFormat, string(artifact.FormatGraphML))
	return c
}

func (c Config) supportPolicy() edgetable.SupportPolicy {
	if c.LegacySupportFilter {
		return edgetable.PositiveSupport{}
	}
	return edgetable.QuantileSupport{Q: *c.SupportQuantile}
}

func (c Config) eigenvectorOptions() algorithms.EigenvectorOptions {
	opts := algorithms.DefaultEigenvectorOptions()
	opts.MaxIterations = c.MaxIterations
	return opts
}
