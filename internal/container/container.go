package container

import (
	"context"
	"fmt"

	"jurisnet/adapters/graphml"
	"jurisnet/adapters/regression"
	"jurisnet/adapters/sqlstore"
	"jurisnet/adapters/tables"
	"jurisnet/adapters/tabular"
	"jurisnet/app"
	"jurisnet/internal/config"
	"jurisnet/internal/logging"
	"jurisnet/internal/metrics"
	"jurisnet/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *logging.Logger

	// Infrastructure
	Metrics *metrics.Recorder
	Store   ports.GraphStore
	Writer  *tabular.Writer
	Source  *tabular.Source

	closers []func() error
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Source:  tabular.NewSource(logger),
	}

	if err := c.initStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize graph store: %w", err)
	}

	writer, err := tabular.NewWriter(cfg.Paths.OutputDir, cfg.Pipeline.OutputFormat, logger)
	if err != nil {
		c.Shutdown()
		return nil, fmt.Errorf("failed to initialize table writer: %w", err)
	}
	c.Writer = writer

	logger.Debug("container initialized (%s graph store, %s output)", cfg.Store.Kind, cfg.Pipeline.OutputFormat)
	return c, nil
}

// initStore opens the configured graph store
func (c *Container) initStore(ctx context.Context) error {
	switch c.Config.Store.Kind {
	case "sql":
		store, err := sqlstore.Open(ctx, c.Config.Store.Driver, c.Config.Store.DSN, c.Logger)
		if err != nil {
			return err
		}
		c.Store = store
		c.closers = append(c.closers, store.Close)
	default:
		c.Store = graphml.NewStore(map[string]string{
			ports.CitationGraph: c.Config.Paths.CitationGraph,
			ports.VoteGraph:     c.Config.Paths.VoteGraph,
		}, c.Logger)
	}
	return nil
}

// Runner wires the feature runner to the container's store, writer and metrics.
func (c *Container) Runner() *app.Runner {
	return app.NewRunner(c.Store, c.Writer, c.Logger, c.Metrics)
}

// Builder reads the structured source tables.
func (c *Container) Builder() ports.GraphBuilder {
	return tables.NewBuilder(c.Source, c.Logger)
}

// SourceTables are the configured source table paths.
func (c *Container) SourceTables() ports.SourceTables {
	return ports.SourceTables{
		Cases:      c.Config.Paths.CasesFile,
		Citations:  c.Config.Paths.CitationsFile,
		Authorship: c.Config.Paths.AuthorshipFile,
		Judges:     c.Config.Paths.JudgesFile,
	}
}

// FitService fits models with ordinary least squares.
func (c *Container) FitService() *app.FitService {
	return app.NewFitService(c.Source, regression.NewOLS(c.Logger), c.Logger)
}

// RunOptions are the configured pipeline settings.
func (c *Container) RunOptions() app.RunOptions {
	return app.RunOptions{
		Windows:  c.Config.Pipeline.DependentWindows,
		Lags:     c.Config.Pipeline.DependentLags,
		Networks: c.Config.Pipeline.AgreementNetworks,
		Parallel: c.Config.Pipeline.Parallel,
	}
}

// Shutdown writes the metrics textfile, if configured, and releases resources.
func (c *Container) Shutdown() error {
	var first error
	if c.Config.Metrics.File != "" {
		if err := c.Metrics.WriteTextfile(c.Config.Metrics.File); err != nil {
			c.Logger.Warn("failed to write metrics to %s: %v", c.Config.Metrics.File, err)
			first = err
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
