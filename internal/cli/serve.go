package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Belphemur/CaptionExport/internal/batch"
	"github.com/Belphemur/CaptionExport/internal/client"
	"github.com/Belphemur/CaptionExport/internal/config"
	grpcserver "github.com/Belphemur/CaptionExport/internal/grpc"
	"github.com/Belphemur/CaptionExport/internal/metrics"
	"github.com/Belphemur/CaptionExport/internal/reporting"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the caption API over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServer(cmd.Context(), a.cfg)
		},
	}
}

// RunServer serves the caption gRPC API, and Prometheus metrics when enabled,
// until ctx is canceled.
func RunServer(ctx context.Context, cfg *config.Config) error {
	logger := config.GetLogger()

	logger.Info().
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Str("youtube_api_base_url", cfg.YouTubeAPIBaseURL).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Str("cache_type", cfg.Cache.Type).
		Msg("Application started with configuration")

	c, err := client.NewClient(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	var observers []batch.Observer
	reporter, err := reporting.NewSentryObserverFromConfig(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentry reporting disabled")
	} else if reporter != nil {
		defer reporter.Close()
		observers = append(observers, reporter)
	}

	a := &app{cfg: cfg}
	srv := grpcserver.NewServer(c, a.exporter(c), grpcserver.Options{
		Policy:        batch.PolicyFromConfig(cfg),
		Filenames:     a.filenamePolicy(),
		BundleFormats: cfg.Batch.BundleFormats,
		Observers:     observers,
	})
	grpcServer := grpcserver.NewGRPCServer(srv)

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	logger.Info().Str("address", address).Msg("Starting gRPC server")

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down gRPC server")
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}

	logger.Info().Msg("Server stopped gracefully")
	return nil
}
