package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/gaugeboard"
	"github.com/jpalmerr/gaugeboard/config"
	"github.com/spf13/cobra"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// serveCmd starts the GaugeBoard server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the live-value server",
	Long: `Start the GaugeBoard server.

The server will:
  - Load configuration from the specified YAML file
  - Start the simulator (in simulated mode)
  - Serve the values and dashboard UI on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  gaugeboard serve -c config.yaml
  gaugeboard serve --config /etc/gaugeboard/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"mode", cfg.Mode,
		"extra_sources", len(cfg.Sources),
	)

	board, err := gaugeboard.New(optionsFromConfig(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	logger.Info("starting server",
		"port", board.Port(),
		"sample_interval", board.SampleInterval().String(),
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return board.Start(ctx)
}

// optionsFromConfig translates the YAML config into SDK options.
func optionsFromConfig(cfg *config.Config, logger *slog.Logger) []gaugeboard.Option {
	opts := []gaugeboard.Option{
		gaugeboard.WithMode(gaugeboard.Mode(cfg.Mode)),
		gaugeboard.WithPort(cfg.Port),
		gaugeboard.WithSampleInterval(cfg.SampleInterval.Duration()),
		gaugeboard.WithLogger(logger),
	}

	if cfg.Title != "" {
		opts = append(opts, gaugeboard.WithTitle(cfg.Title))
	}

	if cfg.Simulator.Low != nil || cfg.Simulator.High != nil {
		low, high := 0.0, 180.0
		if cfg.Simulator.Low != nil {
			low = *cfg.Simulator.Low
		}
		if cfg.Simulator.High != nil {
			high = *cfg.Simulator.High
		}
		opts = append(opts, gaugeboard.WithSimulatorBounds(low, high))
	}
	if cfg.Simulator.Speed != nil {
		opts = append(opts, gaugeboard.WithSimulatorSpeed(*cfg.Simulator.Speed))
	}

	if cfg.Mode == string(gaugeboard.ModeStatic) {
		opts = append(opts, gaugeboard.WithStaticValue(cfg.Static.Value))
	}

	for _, src := range cfg.Sources {
		opts = append(opts, gaugeboard.WithSource(src.Name, gaugeboard.Static(src.Value)))
	}

	return opts
}
