// Package grpc serves the standard gRPC health protocol for the dashboard so
// orchestrators can check readiness without going through the HTTP API.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/lamchahon-maker/web-dashboard/internal/logging"
)

// ServiceName is the health service name reported alongside the overall ("") status
const ServiceName = "dashboard.v1.Dashboard"

// HealthServer reports SERVING once the dataset holds at least one record
type HealthServer struct {
	address    string
	logger     *logging.Logger
	health     *health.Server
	mu         sync.Mutex
	grpcServer *grpc.Server
}

// NewHealthServer creates a health server bound to address. Both statuses
// start as NOT_SERVING until Update reports a non-empty dataset.
func NewHealthServer(address string, logger *logging.Logger) *HealthServer {
	s := &HealthServer{
		address: address,
		logger:  logger,
		health:  health.NewServer(),
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Update sets the serving status from the current dataset size
func (s *HealthServer) Update(total int) {
	if total > 0 {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (s *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Start listens on the configured address and serves until ctx is cancelled
func (s *HealthServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled
func (s *HealthServer) Serve(ctx context.Context, listener net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	// Reflection lets grpcurl discover the health service
	reflection.Register(srv)

	s.mu.Lock()
	s.grpcServer = srv
	s.mu.Unlock()

	s.logger.Info("gRPC health server starting", "address", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop marks every service NOT_SERVING and stops the server gracefully
func (s *HealthServer) Stop() {
	s.mu.Lock()
	srv := s.grpcServer
	s.grpcServer = nil
	s.mu.Unlock()

	if srv == nil {
		return
	}
	s.logger.Info("Stopping gRPC health server")
	s.health.Shutdown()
	srv.GracefulStop()
}
