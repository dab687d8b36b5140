package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server wraps the gRPC server with the prediction service handlers.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	address    string
}

// NewServer creates a gRPC server. The prediction service reports
// NOT_SERVING on the health endpoint until SetServing(true) is called.
// opts are appended to the server options, e.g. grpc.Creds.
func NewServer(handler *PredictionHandler, address string, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	grpcServer := grpc.NewServer(append([]grpc.ServerOption{
		grpc.UnaryInterceptor(loggingInterceptor(logger)),
	}, opts...)...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(PredictionServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	RegisterPredictionServiceServer(grpcServer, handler)

	// Only enable reflection when GRPC_REFLECTION=true.
	if os.Getenv("GRPC_REFLECTION") == "true" {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
		address:    address,
	}
}

// SetServing updates the prediction service health status.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(PredictionServiceName, st)
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.DebugContext(ctx, "grpc call",
			slog.String("method", info.FullMethod),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil),
		)
		return resp, err
	}
}
