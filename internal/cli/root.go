package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tally/internal/config"
	"tally/internal/events"
	"tally/internal/kv"
	"tally/internal/kv/memory"
	"tally/internal/kv/sqlite"
	"tally/internal/ledger"
	applog "tally/internal/log"
	"tally/internal/rules"
)

var (
	flagBackend string
	flagPlan    string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Personal expense ledger",
	Long:  "Track expenses, budgets and savings goals, earn awards, and get spending insights.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Data backend (memory|sqlite), overrides DATA_BACKEND")
	rootCmd.PersistentFlags().StringVar(&flagPlan, "plan", "", "Path to the plan file, overrides TALLY_PLAN_FILE")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress log output")
}

// app bundles everything a command needs. Built fresh per invocation
// and closed when the command returns.
type app struct {
	cfg    *config.Config
	logger *applog.Logger
	plan   config.Plan
	store  *ledger.Store
	rules  *rules.Service

	closers []func() error
}

// newApp is the shared wiring path used by every command: env, config,
// plan file, backend, ledger hydration and the rule engine.
func newApp(ctx context.Context) (*app, error) {
	LoadEnvFile()

	level := "info"
	if flagQuiet {
		level = "error"
	}
	logger := SetupLogger(level)

	cfg := config.Load()
	if flagBackend != "" {
		cfg.DataBackend = flagBackend
	}
	if flagPlan != "" {
		cfg.PlanPath = flagPlan
	}
	if !flagQuiet {
		logger = SetupLogger(cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	plan, err := config.LoadPlan(cfg.PlanPath)
	if err != nil {
		return nil, err
	}
	a.plan = plan

	backend, err := a.openBackend()
	if err != nil {
		return nil, err
	}

	opts, err := a.storeOptions()
	if err != nil {
		a.close()
		return nil, err
	}

	a.store = ledger.New(backend, opts...)
	if err := a.store.Hydrate(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("hydrate ledger: %w", err)
	}

	a.rules = rules.NewService(
		rules.NewEngine(),
		a.store,
		rules.StaticCounters(plan.Counters),
		logger.WithComponent(applog.ComponentRules).Logger,
	)

	return a, nil
}

func (a *app) openBackend() (kv.Store, error) {
	switch a.cfg.DataBackend {
	case "sqlite":
		db, err := sqlite.New(a.cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		return memory.New(), nil
	}
}

func (a *app) storeOptions() ([]ledger.Option, error) {
	var opts []ledger.Option

	if alloc, err := a.plan.StarterAllocations(); err != nil {
		return nil, fmt.Errorf("plan allocations: %w", err)
	} else if alloc != nil {
		opts = append(opts, ledger.WithStarterAllocations(alloc))
	}

	if a.cfg.AMQPURL != "" {
		client, err := events.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
		if err != nil {
			// The broker being down must not block local use.
			a.logger.Warn("Event publisher unavailable", applog.FieldError, err)
		} else {
			a.closers = append(a.closers, client.Close)
			opts = append(opts, ledger.WithPublisher(client))
		}
	}

	return opts, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", applog.FieldError, err)
		}
	}
}

// withApp wraps a command body with app setup and teardown.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, a, cmd, args)
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
