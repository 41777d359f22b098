package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"jurisnet/adapters/regression"
	"jurisnet/adapters/sqlstore"
	"jurisnet/app"
	"jurisnet/internal/config"
	"jurisnet/internal/container"
	"jurisnet/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jurisnet",
		Short: "Network variables for decisions and judges of an international court",
		Long: `jurisnet builds the citation and vote graphs of a court from its case tables and
derives per-year network variables for every decision and judge.

Settings are read from the environment (or a .env file); see internal/config.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newBuildGraphsCmd(),
		newRunCmd(),
		newSnapshotCmd(),
		newFitCmd(),
		newMigrateCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer loads configuration, builds the container and shuts it down after fn.
func withContainer(ctx context.Context, fn func(c *container.Container) error) error {
	if err := godotenv.Load(); err != nil {
		logging.Default.Debug("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runErr := fn(c)
	if err := c.Shutdown(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func newBuildGraphsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-graphs",
		Short: "Build the citation and vote graphs from the case tables",
		Long: `Read the cases, citations, authorship and judges tables and save the citation
graph and the vote graph to the configured graph store.

Example: CASES_FILE=data/cases.csv jurisnet build-graphs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				return c.Runner().BuildGraphs(cmd.Context(), c.Builder(), c.SourceTables())
			})
		},
	}
}

func newRunCmd() *cobra.Command {
	var final bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute yearly decision and judge variables",
		Long: `Load both graphs and write the decision table plus one judge table per configured
agreement network. Dependent windows, lags and networks come from DEPENDENT_WINDOWS,
DEPENDENT_LAGS and AGREEMENT_NETWORKS.

Example: DEPENDENT_WINDOWS=1-5 jurisnet run --final`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				opts := c.RunOptions()
				opts.Final = final
				summary, err := c.Runner().Run(cmd.Context(), opts)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), c, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&final, "final", false, "Also write whole-graph snapshot variables")

	return cmd
}

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Compute variables over the whole graphs only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd.Context(), func(c *container.Container) error {
				summary, err := c.Runner().Snapshot(cmd.Context(), c.Config.Pipeline.AgreementNetworks)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), c, summary)
				return nil
			})
		},
	}
}

func newFitCmd() *cobra.Command {
	var entity string
	var network string
	var lagList string
	var output string

	cmd := &cobra.Command{
		Use:   "fit [table]",
		Short: "Fit least squares models on a written feature table",
		Long: `Regress every dependent variable in a feature table on each network variable,
with the usual controls and lagged dependents.

Example: jurisnet fit data/direct_judge_variables.csv --entity judge --network direct --lags 1,2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lags, err := config.ParseIntList(lagList)
			if err != nil {
				return fmt.Errorf("invalid --lags: %w", err)
			}

			var plan app.ModelPlan
			switch entity {
			case "decision":
				plan = app.DecisionModelPlan()
			case "judge":
				plan = app.JudgeModelPlan(network)
			default:
				return fmt.Errorf("unknown entity %q (use decision or judge)", entity)
			}

			return withContainer(cmd.Context(), func(c *container.Container) error {
				fits, err := c.FitService().Fit(cmd.Context(), args[0], plan, lags)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				return regression.WriteCoefficients(w, fits...)
			})
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "judge", "Entity of the table: decision or judge")
	cmd.Flags().StringVar(&network, "network", "direct", "Agreement network the judge table was built from")
	cmd.Flags().StringVar(&lagList, "lags", "1", "Lagged dependents to include, e.g. 1,2 or 1-3")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Coefficient CSV to write (default stdout)")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the SQL graph store schema",
		Long: `Open the SQL graph store named by STORE_DRIVER and STORE_DSN, apply pending
migrations and list the stored graphs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				logging.Default.Debug("No .env file found, using system environment variables")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))

			store, err := sqlstore.Open(cmd.Context(), cfg.Store.Driver, cfg.Store.DSN, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			graphs, err := store.Graphs(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(graphs))
			for name := range graphs {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d nodes\t%d edges\n", name, graphs[name][0], graphs[name][1])
			}
			logger.Info("graph store %s is up to date", cfg.Store.Driver)
			return nil
		},
	}
}

func printSummary(w io.Writer, c *container.Container, summary *app.RunSummary) {
	names := make([]string, 0, len(summary.Rows))
	for name := range summary.Rows {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "run %s (damping %.4f, %s)\n", summary.RunID.Short(), summary.Damping, summary.Duration.Round(time.Millisecond))
	for _, name := range names {
		fmt.Fprintf(w, "  %-48s %6d rows  %s\n", name, summary.Rows[name], c.Writer.Path(name))
	}
}
