package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"chosenoffset.com/timecube/internal/simulation"
	"chosenoffset.com/timecube/internal/timetravel"
)

// --- Global Command Variables ---
var (
	configPath  string
	logLevel    string // overrides log.level from the config
	metricsAddr string // serve /metrics here when set
	scenarioDir string

	config   *simulation.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *timetravel.Metrics

	rootCmd = &cobra.Command{
		Use:   "timecube",
		Short: "A platformer where recorded cubes send a ghost of you back in time",
		Long: `timecube plays the time cube platformer or runs scripted scenarios
against the same time travel engine without a window.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "timecube.json",
		"Path to the JSON config file; missing files fall back to defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides the config)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.PersistentFlags().StringVar(&scenarioDir, "dir", "scenarios",
		"Directory holding scenario files")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "Write the full trace as JSON")
	simulateCmd.Flags().IntVar(&simulateEvery, "every", 1, "Print every Nth step in the table")
	rootCmd.AddCommand(scenariosCmd)
	scenariosCmd.Flags().BoolVar(&scenariosJSON, "json", false, "Output as JSON")
}

// setup loads the config and builds the logger and metrics every command
// shares.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	config, err = simulation.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		config.Log.Level = logLevel
		if err := config.Validate(); err != nil {
			return err
		}
	}

	logger = newLogger(os.Stderr, config.LogLevel())
	slog.SetDefault(logger)

	registry = prometheus.NewRegistry()
	metrics = timetravel.NewMetrics(registry)
	if metricsAddr != "" {
		go serveMetrics(cmd.Context(), metricsAddr)
	}
	return nil
}

// newLogger writes text to terminals and JSON everywhere else.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// serveMetrics exposes the registry until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", fmt.Errorf("listen %s: %w", addr, err))
	}
}
