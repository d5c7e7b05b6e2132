package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agenticerp/internal/config"
	"agenticerp/internal/logging"
	"agenticerp/internal/system"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	dbPath      string
	noNarration bool
	timeout     time.Duration

	// Logger
	logger *zap.Logger

	// appConfig is loaded once per invocation by the root pre-run hook
	appConfig *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "erp",
	Short: "Agentic ERP - keyword-routed business assistant",
	Long: `erp routes free-text business requests to the sales, finance, inventory
or analytics agent and builds analytics reports from the ERP database.

Run "erp chat" for an interactive session or "erp serve" for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		// Initialize logger
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.Initialize(logger, cfg.Logging.Categories)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "erp.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database (sqlite path or postgres URL), overrides config")
	rootCmd.PersistentFlags().BoolVar(&noNarration, "no-narration", false, "Never call the language model")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout for one-shot commands")

	rootCmd.AddCommand(routeCmd, askCmd, chatCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tablesCmd, initCmd, customersCmd, customerCmd, ordersCmd, leadsCmd)
	rootCmd.AddCommand(serveCmd, infoCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env, the config file and the --db override.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.SetDatabase(dbPath)
	}
	return cfg, nil
}

// currentConfig returns the configuration loaded by the pre-run hook, or
// loads it when a command runs without one.
func currentConfig() (*config.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}
	return loadConfig()
}

// bootSystem wires the ERP from the current configuration.
func bootSystem(ctx context.Context) (*system.System, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, err
	}

	var opts []system.Option
	if noNarration {
		opts = append(opts, system.WithLLM(nil))
	}
	sys, err := system.Boot(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to boot: %w", err)
	}
	return sys, nil
}

// commandContext derives the context of a one-shot command.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, timeout)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
