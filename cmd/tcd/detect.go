package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dd0wney/cluso-tcd/pkg/edgetable"
	"github.com/dd0wney/cluso-tcd/pkg/pipeline"
)

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Run detection over one edge table",
		Long: `Run detection over one edge table and write the filtered graph and its
groups. An unreadable or empty table and undefined centrality are not errors:
the artifacts are written empty or with a one-line diagnostic and the command
succeeds. Every flag can also be set as TCD_<FLAG> (dashes become
underscores) or as a key of the --config file.`,
		Args: cobra.NoArgs,
		RunE: runDetect,
	}

	f := cmd.Flags()
	f.StringP("interaction", "i", "", "edge table: CSV/TSV/XLSX path or postgres:// URL")
	f.String("format", "", "edge table format: csv, tsv, xlsx or postgres (detected when empty)")
	f.String("table", "", "PostgreSQL table holding the edges")
	f.String("sheet", "", "XLSX worksheet (first sheet when empty)")
	f.StringP("outgraph", "o", "", "graph artifact location (path or s3://bucket/key)")
	f.StringP("group", "g", "", "group artifact location (path or s3://bucket/key)")
	f.String("node1", "", "first account column")
	f.String("node2", "", "second account column")
	f.String("sim", "", "similarity (edge weight) column")
	f.String("sup", "", "support column")
	f.Float64("min-interaction-quantile", edgetable.DefaultSupportQuantile, "drop rows with support at or below this quantile")
	f.Bool("legacy-support-filter", false, "keep every row with positive support instead of using a quantile")
	f.Float64("min-centrality-quantile", 0, "drop nodes with centrality at or below this quantile (fixed 0.5 cutoff when unset)")
	f.String("centrality", "power", "centrality provider: power or dense")
	f.Int("max-iterations", 0, "power iteration budget (default 100)")
	f.String("duplicates", "overwrite", "duplicate pair policy: overwrite, sum, mean or max")
	f.String("graph-format", "graphml", "graph artifact format: graphml or dot")
	return cmd
}

func runDetect(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}

	res, runErr := e.runner().Run(cmd.Context(), detectConfig(e.v))
	if err := e.finish(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// detectConfig maps flag values onto a pipeline configuration. Quantiles
// are only set when given explicitly, so their absence keeps its meaning.
func detectConfig(v *viper.Viper) pipeline.Config {
	cfg := pipeline.Config{
		Input: edgetable.SourceConfig{
			Location: v.GetString("interaction"),
			Format:   edgetable.Format(v.GetString("format")),
			Table:    v.GetString("table"),
			Sheet:    v.GetString("sheet"),
		},
		OutGraph:  v.GetString("outgraph"),
		OutGroups: v.GetString("group"),
		Columns: edgetable.Columns{
			Node1:   v.GetString("node1"),
			Node2:   v.GetString("node2"),
			Weight:  v.GetString("sim"),
			Support: v.GetString("sup"),
		},
		LegacySupportFilter: v.GetBool("legacy-support-filter"),
		Provider:            v.GetString("centrality"),
		MaxIterations:       v.GetInt("max-iterations"),
		Duplicates:          v.GetString("duplicates"),
		GraphFormat:         v.GetString("graph-format"),
	}
	if v.IsSet("min-interaction-quantile") {
		q := v.GetFloat64("min-interaction-quantile")
		cfg.SupportQuantile = &q
	}
	if v.IsSet("min-centrality-quantile") {
		q := v.GetFloat64("min-centrality-quantile")
		cfg.CentralityQuantile = &q
	}
	return cfg
}
