// Package pipeline runs coordinated-group detection end to end: load an edge
// table, filter it by support, build the interaction graph, score it by
// eigenvector centrality, keep the central nodes and write their connected
// components.
//
// Data-dependent anomalies never fail a run. An unreadable or empty table
// produces two empty artifacts; undefined centrality produces two artifacts
// holding a one-line diagnostic. Schema and consistency errors are returned.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-tcd/pkg/algorithms"
	"github.com/dd0wney/cluso-tcd/pkg/artifact"
	"github.com/dd0wney/cluso-tcd/pkg/edgetable"
	"github.com/dd0wney/cluso-tcd/pkg/graph"
	"github.com/dd0wney/cluso-tcd/pkg/logging"
	"github.com/dd0wney/cluso-tcd/pkg/metrics"
	"github.com/dd0wney/cluso-tcd/pkg/stats"
)

// Status is the outcome of a run that did not fail.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusEmptyInput          Status = "empty_input"
	StatusCentralityUndefined Status = "centrality_undefined"
	statusFailed              Status = "failed"
)

// Result summarises one run.
type Result struct {
	RunID            string     `json:"run_id" yaml:"run_id"`
	Status           Status     `json:"status" yaml:"status"`
	RowsLoaded       int        `json:"rows_loaded" yaml:"rows_loaded"`
	RowsRetained     int        `json:"rows_retained" yaml:"rows_retained"`
	SupportThreshold float64    `json:"support_threshold" yaml:"support_threshold"`
	Nodes            int        `json:"nodes" yaml:"nodes"`
	Edges            int        `json:"edges" yaml:"edges"`
	DuplicateRows    int        `json:"duplicate_rows" yaml:"duplicate_rows"`
	CentralityCutoff float64    `json:"centrality_cutoff" yaml:"centrality_cutoff"`
	FilteredNodes    int        `json:"filtered_nodes" yaml:"filtered_nodes"`
	FilteredEdges    int        `json:"filtered_edges" yaml:"filtered_edges"`
	Groups           [][]string `json:"groups" yaml:"groups"`
	Diagnostic       string     `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

// Runner executes detection runs. A Runner holds no graph state, so one
// Runner may execute any number of runs in sequence.
type Runner struct {
	logger  logging.Logger
	metrics *metrics.Registry
	sink    artifact.Sink
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default is logging.DefaultLogger().
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the metrics registry. The default is
// metrics.DefaultRegistry().
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSink sets where artifacts are stored. The default routes s3:// to S3
// and everything else to the local filesystem.
func WithSink(s artifact.Sink) Option {
	return func(r *Runner) { r.sink = s }
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.DefaultLogger()
	}
	if r.metrics == nil {
		r.metrics = metrics.DefaultRegistry()
	}
	if r.sink == nil {
		r.sink = artifact.DefaultRouter()
	}
	return r
}

// Run executes one run with a default Runner.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	return NewRunner().Run(ctx, cfg)
}

// run carries the per-run state through the stages.
type run struct {
	*Runner
	cfg    Config
	logger logging.Logger
	writer *artifact.Writer
	loc    artifact.Locations
	res    *Result
}

// Run validates cfg and executes every stage. The returned error is always
// a *PipelineError.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageError(StageConfig, "", err)
	}
	cfg = cfg.WithDefaults()

	format, err := artifact.ParseFormat(cfg.GraphFormat)
	if err != nil {
		return nil, stageError(StageConfig, "", err)
	}
	duplicates, err := graph.ParseDuplicatePolicy(cfg.Duplicates)
	if err != nil {
		return nil, stageError(StageConfig, "", err)
	}

	id := uuid.NewString()
	logger := r.logger.With(logging.RunID(id), logging.Component("pipeline"))
	x := &run{
		Runner: r,
		cfg:    cfg,
		logger: logger,
		writer: artifact.NewWriter(r.sink, format, logger),
		loc:    artifact.Locations{Graph: cfg.OutGraph, Groups: cfg.OutGroups},
		res:    &Result{RunID: id},
	}

	logger.Info("run started",
		logging.String("input", cfg.Input.Location),
		logging.String("outgraph", cfg.OutGraph),
		logging.String("group", cfg.OutGroups),
		logging.Bool("legacy_support_filter", cfg.LegacySupportFilter))

	status, err := x.execute(ctx, duplicates)
	if err != nil {
		r.metrics.RecordRun(string(statusFailed), time.Now())
		logger.Error("run failed", logging.Error(err))
		return nil, err
	}

	x.res.Status = status
	r.metrics.RecordRun(string(status), time.Now())
	logger.Info("run finished",
		logging.String("status", string(status)),
		logging.Int("groups", len(x.res.Groups)))
	return x.res, nil
}

// stageTimer measures one stage. Exactly one of done or fail ends it.
type stageTimer struct {
	x     *run
	stage Stage
	timer *logging.TimedOperation
}

func (x *run) stage(s Stage) *stageTimer {
	return &stageTimer{
		x:     x,
		stage: s,
		timer: logging.StartTimer(x.logger, "stage finished", logging.Stage(string(s))),
	}
}

func (t *stageTimer) done(fields ...logging.Field) {
	t.x.metrics.ObserveStage(string(t.stage), t.timer.End(fields...))
}

// fail logs err at error level and wraps it as a *PipelineError.
func (t *stageTimer) fail(where string, err error) error {
	t.x.metrics.ObserveStage(string(t.stage), t.timer.EndError(err))
	return stageError(t.stage, where, err)
}

func (x *run) execute(ctx context.Context, duplicates graph.DuplicatePolicy) (Status, error) {
	input := x.cfg.Input.Location

	st := x.stage(StageLoad)
	table, err := edgetable.Load(ctx, x.cfg.Input, x.cfg.Columns, x.logger)
	if err != nil {
		return "", st.fail(input, err)
	}
	st.done(logging.Int("rows", table.Len()))

	st = x.stage(StageSupportFilter)
	filtered, err := edgetable.Filter(table, x.cfg.supportPolicy())
	if err != nil {
		return "", st.fail(input, err)
	}
	st.done()
	x.res.RowsLoaded = table.Len()
	x.res.RowsRetained = filtered.Table.Len()
	x.res.SupportThreshold = filtered.Threshold
	x.metrics.RecordLoad(table.Len(), filtered.Table.Len(), filtered.Threshold)
	x.logger.Info("support threshold",
		logging.String("policy", filtered.Policy),
		logging.Float64("threshold", filtered.Threshold),
		logging.Int("kept", filtered.Kept),
		logging.Int("dropped", filtered.Dropped))

	if filtered.Table.Empty() {
		x.res.Groups = [][]string{}
		return StatusEmptyInput, x.writeEmpty(ctx)
	}

	st = x.stage(StageBuild)
	g, built := graph.Build(filtered.Table.Rows, duplicates)
	st.done(logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()),
		logging.Int("self_loops", built.SelfLoops))
	x.res.Nodes = g.NodeCount()
	x.res.Edges = g.EdgeCount()
	x.res.DuplicateRows = built.Duplicates
	x.metrics.RecordGraph(g.NodeCount(), g.EdgeCount(), built.Duplicates)
	if built.Duplicates > 0 {
		x.logger.Warn("repeated node pairs merged into existing edges",
			logging.String("policy", duplicates.String()),
			logging.Count(built.Duplicates))
	}

	st = x.stage(StageCentrality)
	provider, err := algorithms.NewCentralityProvider(x.cfg.Provider, x.cfg.eigenvectorOptions())
	if err != nil {
		return "", st.fail("", err)
	}
	centrality, err := provider.Compute(ctx, g)
	if err != nil {
		if errors.Is(err, ErrCentralityUndefined) {
			st.done(logging.Error(err))
			x.res.Groups = [][]string{}
			return StatusCentralityUndefined, x.writeDiagnostic(ctx, err)
		}
		return "", st.fail(provider.Name(), err)
	}
	fields := []logging.Field{
		logging.String("provider", centrality.Provider),
		logging.Int("iterations", centrality.Iterations),
		logging.Float64("eigenvalue", centrality.Eigenvalue),
	}
	if top := centrality.TopN(1); len(top) > 0 {
		fields = append(fields, logging.NodeID(top[0].NodeID))
	}
	st.done(fields...)

	st = x.stage(StageCentralityFilter)
	kept, err := algorithms.FilterByCentrality(g, centrality.Scores, algorithms.PolicyFor(x.cfg.CentralityQuantile))
	if err != nil {
		return "", st.fail(centrality.Provider, err)
	}
	st.done()
	x.res.CentralityCutoff = kept.Cutoff
	x.res.FilteredNodes = kept.View.NodeCount()
	x.res.FilteredEdges = kept.View.EdgeCount()
	x.metrics.RecordCentrality(centrality.Iterations, kept.Cutoff, kept.Retained)
	x.logger.Info("centrality cutoff",
		logging.String("policy", kept.Policy),
		logging.Float64("cutoff", kept.Cutoff),
		logging.Int("retained", kept.Retained))

	st = x.stage(StageComponents)
	components := algorithms.ConnectedComponents(kept.View)
	sizes := make([]int, len(components.Groups))
	for i, grp := range components.Groups {
		sizes[i] = grp.Size
	}
	fields = []logging.Field{logging.Int("groups", len(sizes))}
	if median, err := stats.Median(sizes); err == nil {
		fields = append(fields, logging.Float64("median_group_size", median))
	}
	st.done(fields...)
	x.res.Groups = components.Members()
	x.metrics.RecordGroups(sizes)

	st = x.stage(StageWrite)
	err = x.writer.WriteResult(ctx, x.loc, artifact.Output{
		Graph:  kept.View,
		Scores: centrality.Scores,
		Groups: x.res.Groups,
	})
	if err != nil {
		return "", st.fail(x.loc.Graph, err)
	}
	st.done()
	return StatusOK, nil
}

func (x *run) writeEmpty(ctx context.Context) error {
	x.logger.Warn("no edges left after support filtering, writing empty artifacts")
	st := x.stage(StageWrite)
	if err := x.writer.WriteEmpty(ctx, x.loc); err != nil {
		return st.fail(x.loc.Graph, err)
	}
	st.done()
	return nil
}

func (x *run) writeDiagnostic(ctx context.Context, cause error) error {
	x.res.Diagnostic = cause.Error()
	x.logger.Warn("centrality undefined, writing diagnostic artifacts", logging.Error(cause))
	st := x.stage(StageWrite)
	if err := x.writer.WriteDiagnostic(ctx, x.loc, cause); err != nil {
		return st.fail(x.loc.Graph, err)
	}
	st.done()
	return nil
}
