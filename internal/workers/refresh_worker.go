package workers

import (
	"context"
	"time"

	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/metrics"
	"skytracker/backend/internal/services"
)

// PositionRefreshWorker drives the position cache on a fixed cadence so
// websocket and HTTP readers mostly hit warm data
func PositionRefreshWorker(ctx context.Context, svc *services.FlightsService, reg *metrics.MetricsRegistry) {
	ticker := time.NewTicker(svc.TTL())
	defer ticker.Stop()

	logging.Info("Position refresh worker started", "interval", svc.TTL().String())

	for {
		select {
		case <-ctx.Done():
			logging.Info("Position refresh worker stopped")
			return
		case <-ticker.C:
			start := time.Now()
			outcome := svc.RefreshPositions(ctx)
			reg.RefreshDuration.WithLabelValues("positions").Observe(time.Since(start).Seconds())
			reg.UpstreamRequestsTotal.WithLabelValues("positions", outcome).Inc()

			flights, positions := svc.Counts()
			reg.CachedFlights.Set(float64(flights))
			reg.CachedPositions.Set(float64(positions))
		}
	}
}

// FlightRefreshWorker keeps the flight feed warm on the same cadence. The
// refresh shares the accessor path's single-flight guard, so worker ticks and
// on-demand callers never duplicate an upstream call.
func FlightRefreshWorker(ctx context.Context, svc *services.FlightsService, reg *metrics.MetricsRegistry) {
	ticker := time.NewTicker(svc.TTL())
	defer ticker.Stop()

	logging.Info("Flight refresh worker started", "interval", svc.TTL().String())

	for {
		select {
		case <-ctx.Done():
			logging.Info("Flight refresh worker stopped")
			return
		case <-ticker.C:
			start := time.Now()
			outcome := svc.RefreshFlights(ctx)
			reg.RefreshDuration.WithLabelValues("flights").Observe(time.Since(start).Seconds())
			reg.UpstreamRequestsTotal.WithLabelValues("flights", outcome).Inc()
		}
	}
}
