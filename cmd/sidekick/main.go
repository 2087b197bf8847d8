package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/sidekick"
	"github.com/spf13/cobra"
)

// Overridden at release time via -ldflags "-X main.buildVariant=production".
var (
	buildVariant = "dev"
	buildID      = "unknown"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	statusFlags := &ClientFlags{}
	retryFlags := &ClientFlags{}
	killRetryFlags := &ClientFlags{}
	taskFlags := &ClientFlags{}
	logsFlags := &LogsFlags{}
	logFlags := &ClientFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRunCommand(globalFlags),
		createStatusCommand(statusFlags),
		createRetryCommand(retryFlags),
		createKillRetryCommand(killRetryFlags),
		createTaskCommand(taskFlags),
		createLogsCommand(logsFlags),
		createLogCommand(logFlags),
		createVersionCommand(),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "sidekick",
		Short: "Local backend supervisor and control surface",
		Long: `Sidekick supervises a local backend process: it spawns it when
needed, polls its health endpoint until ready, and exposes a small HTTP
surface for status, retries and log access.

Examples:
  sidekick run                       # Supervise with default config
  sidekick run --config=sidekick.toml
  sidekick status                    # Ask a running instance for its state
  sidekick retry                     # Re-run the backend start flow`,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")

	return root
}

// createRunCommand creates the run subcommand
func createRunCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run [config.toml]",
		Short: "Run the supervisor and its command surface",
		Long: `Run the supervisor in the foreground: acquire the single-instance
lock, autostart the backend (production builds only), and serve the local
command surface until interrupted.

Examples:
  sidekick run
  sidekick run config.toml
  SIDEKICK_DISABLE_AUTOSTART=1 sidekick run   # Skip backend autostart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := globalFlags.ConfigPath
			if len(args) > 0 {
				configPath = args[0]
			}
			return runRunCommand(configPath)
		},
	}
}

func runRunCommand(configPath string) error {
	cfg, err := sidekick.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	sidekick.SetupConsole(os.Stderr, slog.LevelInfo)

	lock := sidekick.NewLock(cfg.LockPath())
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, sidekick.ErrAlreadyRunning) {
			return fmt.Errorf("another sidekick instance is already running (lock %s)", cfg.LockPath())
		}
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer lock.Release()

	if err := sidekick.RegisterMetricsDefault(); err != nil {
		slog.Warn("failed to register metrics", "error", err)
	}

	sup := sidekick.New(cfg.Backend)
	sup.SetFlowLog(cfg.AutostartLogPath())
	deps := sidekick.NewRouterDeps(sup, cfg)

	exe, _ := os.Executable()
	deps.AppLog.Appendf("BUILD_ID=%s", buildID)
	deps.AppLog.Appendf("APP_START exe=%s pid=%d", exe, os.Getpid())

	if cfg.Store.DSN != "" {
		st, err := sup.SetHistory(cfg.Store.DSN)
		if err != nil {
			slog.Warn("failed to open history store", "dsn", cfg.Store.DSN, "error", err)
		} else {
			deps.History = st
			defer func() { _ = st.Close() }()
		}
	}

	if sidekick.AutostartEnabled(buildVariant) {
		sup.Autostart()
	} else {
		deps.AppLog.Appendf("AUTOSTART_DISABLED variant=%s", buildVariant)
		slog.Info("backend autostart disabled", "variant", buildVariant)
	}

	server, err := sidekick.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, deps)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	slog.Info("sidekick listening", "addr", cfg.Server.Listen, "base_path", cfg.Server.BasePath)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	deps.AppLog.Append("APP_STOP")
	return server.Close()
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sidekick %s (%s)\n", buildID, buildVariant)
		},
	}
}
