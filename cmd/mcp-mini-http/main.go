// Command mcp-mini-http starts the tool HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcp-mini/internal/config"
	"mcp-mini/internal/manifest"
	"mcp-mini/internal/server"
	"mcp-mini/internal/telemetry"
	"mcp-mini/internal/weather"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mcp-mini-http",
		Short:        "Serve the ping, get_datetime and get_weather tools over HTTP",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runServe,
	}
	cmd.Flags().String("config", "", "Path to YAML config (default: ./"+config.DefaultFile+" if present)")
	cmd.Flags().String("manifest", "", "Path to the tool manifest (overrides MANIFEST_PATH)")
	cmd.Flags().IntP("port", "p", 0, "Listen port (overrides PORT)")
	cmd.Flags().String("host", "0.0.0.0", "Listen host")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	// The manifest is loaded before anything listens so a bad file stops startup.
	store, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		logger.Error("loading manifest", "path", cfg.ManifestPath, "error", err)
		return err
	}
	logger.Info("manifest loaded", "path", store.Path(), "tools", store.ToolNames())

	observer, shutdownTelemetry, err := telemetry.Setup(cmd.Context(), cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	srv := server.New(server.Config{
		Manifest: store,
		Weather:  weather.New(cfg.WeatherBaseURL, &http.Client{Timeout: cfg.WeatherTimeout}),
		Observer: observer,
		Logger:   logger,
	})
	warnManifestDrift(logger, store.ToolNames(), srv.Tools())

	host, _ := cmd.Flags().GetString("host")
	addr := net.JoinHostPort(host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting tool HTTP server", "addr", addr, "version", version)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	}
}

// loadConfig resolves config and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("manifest") {
		cfg.ManifestPath, _ = cmd.Flags().GetString("manifest")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	return cfg, cfg.Validate()
}

// warnManifestDrift logs tools the manifest advertises but the server does
// not implement, and the reverse.
func warnManifestDrift(logger *slog.Logger, advertised, served []string) {
	for _, name := range advertised {
		if !slices.Contains(served, name) {
			logger.Warn("manifest lists a tool the server does not implement", "tool", name)
		}
	}
	for _, name := range served {
		if !slices.Contains(advertised, name) {
			logger.Debug("tool missing from manifest", "tool", name)
		}
	}
}
