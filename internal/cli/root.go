package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/config"
	"github.com/rustyeddy/tradejournal/handlers"
	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
)

const version = "1.0.0"

// RootConfig holds the global flags.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	JSON       bool
}

// app is the state shared by every subcommand once the root has run.
type app struct {
	rc  *RootConfig
	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	a := &app{rc: &RootConfig{}, log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "tradejournal",
		Short: "Tradejournal: a local trade journal with performance stats",
		Long: `Tradejournal keeps a local SQLite journal of trades and the trading
methods behind them, and derives performance statistics from it.

Examples:
  tradejournal method add --code BO --name Breakout --default
  tradejournal trade add --symbol EURUSD --direction long --entry-price 1.085 --lots 1
  tradejournal stats overall
  tradejournal stats period week --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&a.rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&a.rc.DBPath, "db", "", "SQLite journal database (overrides config)")
	cmd.PersistentFlags().StringVar(&a.rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&a.rc.JSON, "json", false, "Print {success, data, message} JSON instead of tables")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(a.rc.ConfigPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.Store.Path = a.rc.DBPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = a.rc.LogLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		a.cfg = cfg

		log, err := logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		a.log = log
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = a.log.Sync()
	}

	// Subcommands
	cmd.AddCommand(
		newTradeCmd(a),
		newMethodCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
		newConfigCmd(a),
		newMaintenanceCmd(a),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradejournal version %s\n", version)
		},
	})

	return cmd
}

// withJournal opens the configured store, drops methods with an invalid id
// and hands fn a ready set of handlers. The store is closed when fn returns.
func (a *app) withJournal(ctx context.Context, fn func(h *handlers.Handlers) error) error {
	return a.openJournal(ctx, true, fn)
}

func (a *app) openJournal(ctx context.Context, cleanup bool, fn func(h *handlers.Handlers) error) error {
	store, err := journal.Open(a.cfg.Store.Path, a.log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	h := handlers.NewFromStore(store, a.log)
	if cleanup {
		if r := h.CleanupMethods(ctx); !r.Success {
			a.log.Warn("startup cleanup failed", zap.String("message", r.Message))
		}
	}
	return fn(h)
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
