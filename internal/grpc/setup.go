package grpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/Belphemur/CaptionExport/internal/config"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

var (
	serverMetrics     *grpcprom.ServerMetrics
	serverMetricsOnce sync.Once
)

// sharedServerMetrics registers the handling-time metrics once per process.
func sharedServerMetrics() *grpcprom.ServerMetrics {
	serverMetricsOnce.Do(func() {
		serverMetrics = grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
		prometheus.MustRegister(serverMetrics)
	})
	return serverMetrics
}

// zerologAdapter routes interceptor logs through the application logger.
func zerologAdapter(l zerolog.Logger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		var ev *zerolog.Event
		switch lvl {
		case logging.LevelDebug:
			ev = l.Debug()
		case logging.LevelWarn:
			ev = l.Warn()
		case logging.LevelError:
			ev = l.Error()
		default:
			ev = l.Info()
		}
		ev.Fields(fields).Msg(msg)
	})
}

// recoverPanic turns a handler panic into an Internal status instead of
// killing the server.
func recoverPanic(_ context.Context, p any) error {
	logger := config.GetLogger()
	logger.Error().Str("panic", fmt.Sprint(p)).Msg("Recovered from panic in gRPC handler")
	return status.Errorf(codes.Internal, "internal error")
}

// NewGRPCServer builds the gRPC server for the caption service. Every call is
// measured, logged when it finishes and shielded from panics. Health and
// reflection services are registered next to it.
func NewGRPCServer(srv CaptionServiceServer) *grpc.Server {
	m := sharedServerMetrics()
	logOpts := []logging.Option{logging.WithLogOnEvents(logging.FinishCall)}
	logger := zerologAdapter(config.GetLogger())
	recoverOpt := recovery.WithRecoveryHandlerContext(recoverPanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			m.UnaryServerInterceptor(),
			logging.UnaryServerInterceptor(logger, logOpts...),
			recovery.UnaryServerInterceptor(recoverOpt),
		),
		grpc.ChainStreamInterceptor(
			m.StreamServerInterceptor(),
			logging.StreamServerInterceptor(logger, logOpts...),
			recovery.StreamServerInterceptor(recoverOpt),
		),
	)

	RegisterCaptionServiceServer(s, srv)

	hs := health.NewServer()
	for _, name := range []string{"", ServiceName} {
		hs.SetServingStatus(name, grpc_health_v1.HealthCheckResponse_SERVING)
	}
	grpc_health_v1.RegisterHealthServer(s, hs)

	reflection.Register(s)
	m.InitializeMetrics(s)

	return s
}
