package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name registered next to the overall ("") status.
const ServiceName = "promoaffiliate.v1.Affiliate"

type ReadinessProbe interface {
	Ready(ctx context.Context) error
}

// HealthReporter keeps the gRPC health status in step with store readiness.
type HealthReporter struct {
	logger   *slog.Logger
	server   *health.Server
	probe    ReadinessProbe
	interval time.Duration
	timeout  time.Duration
	last     healthpb.HealthCheckResponse_ServingStatus
}

func NewHealthReporter(logger *slog.Logger, probe ReadinessProbe, interval time.Duration) *HealthReporter {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthReporter{
		logger:   logger.With("module", "grpc", "layer", "health"),
		server:   health.NewServer(),
		probe:    probe,
		interval: interval,
		timeout:  2 * time.Second,
		last:     healthpb.HealthCheckResponse_UNKNOWN,
	}
}

func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.server
}

// Run probes once immediately and then on every tick until ctx ends. On exit
// every status flips to NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context) error {
	h.Probe(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *HealthReporter) Probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.probe.Ready(probeCtx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if h.last != status {
			h.logger.WarnContext(ctx, "readiness probe failed",
				"operation", "grpc_health_probe",
				"outcome", "failure",
				"error", err.Error(),
			)
		}
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	h.last = status
}
