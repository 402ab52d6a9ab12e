package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/metrics"
	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers send the SPA origin; the CORS policy already gates the REST
	// surface, so the socket mirrors it
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// PositionsSocketHandler handles GET /ws/positions. Each client gets the
// current position snapshot on connect and a fresh one every refresh interval
// until it disconnects.
func PositionsSocketHandler(fltSvc *services.FlightsService, reg *metrics.MetricsRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Debug("Websocket upgrade failed", "error", err.Error())
			return
		}

		reg.WebsocketClients.Inc()
		defer reg.WebsocketClients.Dec()
		defer conn.Close()

		// Drain client frames so pings and close messages are processed
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(fltSvc.TTL())
		defer ticker.Stop()

		if err := writePositions(conn, fltSvc, r); err != nil {
			return
		}

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := writePositions(conn, fltSvc, r); err != nil {
					return
				}
			}
		}
	}
}

func writePositions(conn *websocket.Conn, fltSvc *services.FlightsService, r *http.Request) error {
	positions := fltSvc.GetPositions(r.Context())
	if positions == nil {
		positions = []dtos.Position{}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(dtos.PositionsResponse{Positions: positions})
}
