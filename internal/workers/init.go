package workers

import (
	"context"

	"skytracker/backend/internal/metrics"
	"skytracker/backend/internal/services"
)

// InitWorkers starts the background refresh loops. The returned cancel stops
// them all.
func InitWorkers(svc *services.FlightsService, reg *metrics.MetricsRegistry) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	go PositionRefreshWorker(ctx, svc, reg)
	go FlightRefreshWorker(ctx, svc, reg)

	return cancel
}
