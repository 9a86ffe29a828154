package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-tcd/pkg/pipeline"
)

// batchEntry is the printed form of one manifest entry.
type batchEntry struct {
	Name   string           `json:"name"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every entry of a YAML manifest, one after another",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}
	cmd.Flags().StringP("manifest", "m", "", "YAML manifest with defaults and runs")
	return cmd
}

func runBatch(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	path := e.v.GetString("manifest")
	if path == "" {
		return errors.New("--manifest is required")
	}
	m, err := pipeline.LoadManifest(path)
	if err != nil {
		return err
	}

	results, batchErr := e.runner().RunBatch(cmd.Context(), m)
	if err := e.finish(); err != nil && batchErr == nil {
		batchErr = err
	}

	entries := make([]batchEntry, len(results))
	failed := 0
	for i, r := range results {
		entries[i] = batchEntry{Name: r.Name, Result: r.Result}
		if r.Err != nil {
			entries[i].Error = r.Err.Error()
			failed++
		}
	}
	if err := printJSON(cmd.OutOrStdout(), entries); err != nil {
		return err
	}
	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}
