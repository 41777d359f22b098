package app

import (
	"context"
	"fmt"
	"time"

	"jurisnet/domain/core"
	"jurisnet/domain/features"
	"jurisnet/domain/graph"
	"jurisnet/domain/precedent"
	"jurisnet/domain/run"
	"jurisnet/internal/errors"
	"jurisnet/internal/logging"
	"jurisnet/internal/metrics"
	"jurisnet/ports"

	"golang.org/x/sync/errgroup"
)

// RunOptions configures a feature run
type RunOptions struct {
	Windows  []int
	Lags     []int
	Networks []string
	// Parallel runs the decision pipeline and each judge pipeline concurrently.
	Parallel bool
	// Final also writes whole-graph snapshot variables.
	Final bool
}

// RunSummary describes a finished run
type RunSummary struct {
	RunID    core.RunID
	Settings core.Hash
	Damping  float64
	// Rows maps each written table to its row count.
	Rows     map[string]int
	Duration time.Duration
	// Manifest is set on full runs; it is also written when the writer records manifests.
	Manifest *run.Manifest
}

// Runner loads the source graphs once, runs the feature pipelines and writes every
// table at the end.
type Runner struct {
	store   ports.GraphStore
	writer  ports.FeatureWriter
	logger  *logging.Logger
	metrics *metrics.Recorder
}

// NewRunner creates a runner. A nil recorder gets a private one.
func NewRunner(store ports.GraphStore, writer ports.FeatureWriter, logger *logging.Logger, recorder *metrics.Recorder) *Runner {
	if logger == nil {
		logger = logging.Default
	}
	if recorder == nil {
		recorder = metrics.New()
	}
	return &Runner{store: store, writer: writer, logger: logger, metrics: recorder}
}

// Run assembles the decision table and one judge table per network.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{
		RunID: core.NewRunID(),
		Settings: core.ComputeSettingsHash(map[string]interface{}{
			"windows":  opts.Windows,
			"lags":     opts.Lags,
			"networks": opts.Networks,
		}),
		Rows: make(map[string]int),
	}
	logger := r.logger.With("run", summary.RunID.Short())
	logger.Info("starting feature run (windows %v, lags %v, networks %v)", opts.Windows, opts.Lags, opts.Networks)

	// 1. Load both graphs up front
	citations, votes, err := r.loadGraphs(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Damping factor from every decision on record
	summary.Damping, err = r.damping(citations)
	if err != nil {
		return nil, err
	}
	logger.Info("damping factor %.4f over %d decisions", summary.Damping, citations.NodeCount())

	// 3. One pipeline per output table
	pipelines := []*Pipeline{DecisionPipeline(citations, summary.Damping)}
	for _, network := range opts.Networks {
		p, err := JudgePipeline(network, citations, votes)
		if err != nil {
			if core.IsIntegrityError(err) {
				return nil, errors.IntegrityError(network+" pipeline cannot start", err)
			}
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
		pipelines = append(pipelines, p)
	}

	// 4. Assemble; each year loop stays sequential
	tables, err := r.assemble(ctx, logger, pipelines, opts)
	if err != nil {
		return nil, err
	}

	// 5. Write everything once at the end
	done := r.metrics.Stage("write")
	for i, p := range pipelines {
		if err := r.writer.WriteTable(ctx, p.Output(), p.Entity(), tables[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", p.Output())
		}
		summary.Rows[p.Output()] = tables[i].Len()
	}
	done()

	if opts.Final {
		if err := r.writeSnapshots(ctx, citations, votes, summary, opts.Networks); err != nil {
			return nil, err
		}
	}

	summary.Duration = time.Since(start)

	// 6. Record what was read and written
	summary.Manifest = &run.Manifest{
		RunID:       summary.RunID,
		Windows:     opts.Windows,
		Lags:        opts.Lags,
		Networks:    opts.Networks,
		Damping:     summary.Damping,
		Tables:      summary.Rows,
		Fingerprint: run.NewFingerprint(summary.Settings, run.GraphDigest(citations), run.GraphDigest(votes), run.CodeVersion),
		CreatedAt:   start.UTC(),
		Duration:    summary.Duration.Round(time.Millisecond).String(),
	}
	if mw, ok := r.writer.(ports.ManifestWriter); ok {
		if err := summary.Manifest.Validate(); err != nil {
			return nil, errors.WithCode(errors.CodeInternalError, err)
		}
		if err := mw.WriteManifest(ctx, summary.Manifest); err != nil {
			return nil, errors.Wrap(err, "failed to write run manifest")
		}
	}

	logger.Info("feature run finished in %s (fingerprint %s)", summary.Duration.Round(time.Millisecond), summary.Manifest.Fingerprint.Value.String()[:12])
	return summary, nil
}

// Snapshot writes only the whole-graph variables.
func (r *Runner) Snapshot(ctx context.Context, networks []string) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{RunID: core.NewRunID(), Rows: make(map[string]int)}

	citations, votes, err := r.loadGraphs(ctx)
	if err != nil {
		return nil, err
	}
	if summary.Damping, err = r.damping(citations); err != nil {
		return nil, err
	}
	if err := r.writeSnapshots(ctx, citations, votes, summary, networks); err != nil {
		return nil, err
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

// BuildGraphs turns the structured source tables into the two source graphs and saves
// them to the store.
func (r *Runner) BuildGraphs(ctx context.Context, builder ports.GraphBuilder, in ports.SourceTables) error {
	done := r.metrics.Stage("build")
	defer done()

	citations, votes, err := builder.Build(ctx, in)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, ports.CitationGraph, citations); err != nil {
		return errors.Wrap(err, "failed to save citation graph")
	}
	if err := r.store.Save(ctx, ports.VoteGraph, votes); err != nil {
		return errors.Wrap(err, "failed to save vote graph")
	}
	r.logger.Info("saved citation graph (%d nodes) and vote graph (%d nodes)", citations.NodeCount(), votes.NodeCount())
	return nil
}

func (r *Runner) loadGraphs(ctx context.Context) (*graph.Graph, *graph.Graph, error) {
	done := r.metrics.Stage("load")
	defer done()

	citations, err := r.store.Load(ctx, ports.CitationGraph)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load citation graph")
	}
	votes, err := r.store.Load(ctx, ports.VoteGraph)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load vote graph")
	}
	r.logger.Debug("loaded citation graph (%d nodes, %d edges) and vote graph (%d nodes, %d edges)",
		citations.NodeCount(), citations.EdgeCount(), votes.NodeCount(), votes.EdgeCount())
	return citations, votes, nil
}

func (r *Runner) damping(citations *graph.Graph) (float64, error) {
	unanimities, err := precedent.Unanimities(citations)
	if err != nil {
		return 0, errors.IntegrityError("citation graph cannot be scored", err)
	}
	d, err := precedent.DampingFactor(unanimities)
	if err != nil {
		return 0, errors.IntegrityError("no damping factor", err)
	}
	return d, nil
}

func (r *Runner) assemble(ctx context.Context, logger *logging.Logger, pipelines []*Pipeline, opts RunOptions) ([]*features.Table, error) {
	done := r.metrics.Stage("assemble")
	defer done()

	tables := make([]*features.Table, len(pipelines))
	run := func(ctx context.Context, i int) error {
		p := pipelines[i]
		name := p.Name()
		assembler := features.Assembler{
			Windows: opts.Windows,
			Lags:    opts.Lags,
			OnYear: func(year, rows int) {
				logger.Debug("%s %d: %d rows", name, year, rows)
				r.metrics.Year(name, rows)
			},
		}

		logger.Info("assembling %s", p.Output())
		table, err := p.Run(ctx, assembler)
		if err != nil {
			if core.IsIntegrityError(err) {
				return errors.IntegrityError(fmt.Sprintf("%s pipeline failed", name), err)
			}
			return errors.Wrapf(err, "%s pipeline failed", name)
		}
		logger.Info("assembled %s: %d rows", p.Output(), table.Len())
		tables[i] = table
		return nil
	}

	if !opts.Parallel {
		for i := range pipelines {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
		return tables, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range pipelines {
		g.Go(func() error { return run(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *Runner) writeSnapshots(ctx context.Context, citations, votes *graph.Graph, summary *RunSummary, networks []string) error {
	done := r.metrics.Stage("snapshot")
	defer done()

	decisions, err := features.DecisionSnapshot(citations, summary.Damping)
	if err != nil {
		return errors.IntegrityError("decision snapshot failed", err)
	}
	if err := r.writer.WriteNodeTable(ctx, "final_decision_variables", "decision", decisions); err != nil {
		return errors.Wrap(err, "failed to write final decision variables")
	}
	summary.Rows["final_decision_variables"] = decisions.Len()

	for _, network := range networks {
		judges, err := features.JudgeSnapshot(network, citations, votes)
		if err != nil {
			return errors.Wrapf(err, "%s snapshot failed", network)
		}
		name := network + "_final_judge_variables"
		if err := r.writer.WriteNodeTable(ctx, name, "judge", judges); err != nil {
			return errors.Wrapf(err, "failed to write %s", name)
		}
		summary.Rows[name] = judges.Len()
	}
	return nil
}
