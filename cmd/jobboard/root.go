package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/jobboard"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	readOnly   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "A kanban board for job applications, synchronized with your jobs server",
	Long: `jobboard shows your job applications as a five column pipeline
(Saved, Applied, Interviewing, Offer, Rejected) and keeps it in sync with
the server. Moves are applied immediately and undone if the server refuses them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .jobboard.yaml upwards, then the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Refuse every change to the board")
}

// signalContext ends on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveConfig returns the config file to use, or "" to rely on the
// environment alone.
func resolveConfig() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := jobboard.FindConfig(cwd)
	if errors.Is(err, jobboard.ErrConfigNotFound) {
		return "", nil
	}
	return path, err
}

// openService loads the configuration and wires a service from it.
func openService(extra ...jobboard.Option) (*jobboard.Service, *jobboard.Config) {
	path, err := resolveConfig()
	if err != nil {
		fatal("Failed to locate config", err)
	}

	opts := []jobboard.Option{
		jobboard.WithLogger(slog.Default()),
		jobboard.WithUnauthenticatedHandler(loginHint),
	}
	if readOnly {
		opts = append(opts, jobboard.WithReadOnly(true))
	}
	svc, cfg, err := jobboard.Open(path, append(opts, extra...)...)
	if err != nil {
		if cfg != nil && cfg.Validate() != nil {
			fmt.Fprintln(os.Stderr, "Tip: run 'jobboard init --api-url <url>' or set JOBBOARD_API_URL.")
		}
		fatal("Error initializing jobboard", err)
	}
	return svc, cfg
}

// startService opens the service and loads the board.
func startService(ctx context.Context, extra ...jobboard.Option) (*jobboard.Service, *jobboard.Config) {
	svc, cfg := openService(extra...)
	if _, err := svc.Start(ctx); err != nil {
		fatal("Error loading board", err)
	}
	return svc, cfg
}

func loginHint() {
	fmt.Fprintln(os.Stderr, "Your session is no longer valid. Sign in again in the browser and update")
	fmt.Fprintln(os.Stderr, "session.cookie_value (or JOBBOARD_SESSION) with the new session cookie.")
}
