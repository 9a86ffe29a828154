// Command tcd detects groups of accounts that interact unusually often with
// each other, from a table of account-pair interactions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dd0wney/cluso-tcd/pkg/artifact"
	"github.com/dd0wney/cluso-tcd/pkg/logging"
	"github.com/dd0wney/cluso-tcd/pkg/metrics"
	"github.com/dd0wney/cluso-tcd/pkg/pipeline"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   = "dev"
	buildDate = "unknown"
)

const envPrefix = "TCD"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "tcd",
		Short:         "Coordinated-group detection over account interaction tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("config", "", "YAML file with flag values")
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().String("metrics-textfile", "", "write Prometheus metrics to this file after the run")
	root.PersistentFlags().String("s3-region", "", "AWS region for s3:// artifact locations")

	root.AddCommand(newDetectCmd(), newBatchCmd(), newVersionCmd())
	return root
}

// newViper binds the flags of cmd to TCD_* environment variables and the
// optional --config file. Flag names are the keys in both.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// env carries what every subcommand needs to build a Runner.
type env struct {
	v       *viper.Viper
	logger  *logging.JSONLogger
	metrics *metrics.Registry
}

func newEnv(cmd *cobra.Command) (*env, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(cmd.ErrOrStderr(), logging.ParseLevel(v.GetString("log-level")))
	logging.SetDefaultLogger(logger)

	reg := metrics.DefaultRegistry()
	reg.SetBuildInfo(version)
	return &env{v: v, logger: logger, metrics: reg}, nil
}

func (e *env) runner() *pipeline.Runner {
	region := e.v.GetString("s3-region")
	sink := artifact.NewRouter(artifact.FileSink{}, func(ctx context.Context) (artifact.Sink, error) {
		return artifact.NewS3SinkFromConfig(ctx, region)
	})
	return pipeline.NewRunner(
		pipeline.WithLogger(e.logger),
		pipeline.WithMetrics(e.metrics),
		pipeline.WithSink(sink),
	)
}

// finish flushes buffered logs and, when a textfile was requested, metrics.
func (e *env) finish() error {
	// Sync fails on terminals and pipes; there is nothing left to do about it.
	_ = e.logger.Sync()

	path := e.v.GetString("metrics-textfile")
	if path == "" {
		return nil
	}
	if err := e.metrics.WriteTextfile(path); err != nil {
		return err
	}
	e.logger.Debug("metrics written", logging.Path(path))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tcd %s (built %s)\n", version, buildDate)
		},
	}
}
