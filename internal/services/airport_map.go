package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skytracker/backend/internal/constants"
	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/providers"
)

const airportMapStoreKey = "recent_flights_airport_map"

// airportMapPair serializes as a two-element array [icao24, route], matching
// the on-disk snapshot shape {entries: [[icao24, {departure, arrival}], ...]}
type airportMapPair struct {
	ICAO24 string
	Route  dtos.AirportRoute
}

func (p airportMapPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.ICAO24, p.Route})
}

func (p *airportMapPair) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.ICAO24); err != nil {
		return err
	}
	if raw[1] == nil {
		return fmt.Errorf("airport map pair missing route")
	}
	return json.Unmarshal(raw[1], &p.Route)
}

type airportMapSnapshot struct {
	Entries   []airportMapPair `json:"entries"`
	Timestamp int64            `json:"timestamp"`
}

// syncAirportMap refreshes the icao24 -> route lookup table from OpenSky's
// flights-in-window endpoint on its own cadence, independent of the position
// TTL. Rate limiting is a warning, not a failure: the previous map (or the
// on-disk snapshot) keeps serving.
func (svc *FlightsService) syncAirportMap(ctx context.Context) {
	svc.mu.RLock()
	fresh := time.Since(svc.lastAirportMapSync) < constants.AirportMapRefreshEvery && len(svc.airportMap) > 0
	svc.mu.RUnlock()
	if fresh {
		return
	}

	now := time.Now().Unix()
	rows, _, err := svc.openSky.FetchFlightsInWindow(ctx, now-int64(constants.AirportScheduleWindow.Seconds()), now)
	if err != nil {
		if providers.IsRateLimited(err) {
			logging.Warn("Airport map refresh rate-limited, serving previous data")
		} else {
			logging.Error("Airport map refresh failed", "error", err.Error())
		}
		svc.loadAirportMapFromStore()
		return
	}

	routes := make(map[string]dtos.AirportRoute, len(rows))
	for _, row := range rows {
		route := dtos.AirportRoute{}
		if row.EstDepartureAirport != nil {
			route.Departure = *row.EstDepartureAirport
		}
		if row.EstArrivalAirport != nil {
			route.Arrival = *row.EstArrivalAirport
		}
		if route.Departure == "" && route.Arrival == "" {
			continue
		}
		routes[row.ICAO24] = route
	}

	svc.mu.Lock()
	svc.airportMap = routes
	svc.lastAirportMapSync = time.Now()
	svc.mu.Unlock()

	snapshot := airportMapSnapshot{Timestamp: now, Entries: make([]airportMapPair, 0, len(routes))}
	for icao24, route := range routes {
		snapshot.Entries = append(snapshot.Entries, airportMapPair{ICAO24: icao24, Route: route})
	}
	if err := svc.store.Write(airportMapStoreKey, snapshot); err != nil {
		logging.Warn("Airport map snapshot write failed", "error", err.Error())
	}
}

// loadAirportMapFromStore falls back to the persisted snapshot when the live
// fetch is unavailable. Only replaces an empty in-memory map.
func (svc *FlightsService) loadAirportMapFromStore() {
	svc.mu.RLock()
	populated := len(svc.airportMap) > 0
	svc.mu.RUnlock()
	if populated {
		return
	}

	var snapshot airportMapSnapshot
	if !svc.store.Read(airportMapStoreKey, &snapshot) {
		return
	}

	routes := make(map[string]dtos.AirportRoute, len(snapshot.Entries))
	for _, pair := range snapshot.Entries {
		routes[pair.ICAO24] = pair.Route
	}

	svc.mu.Lock()
	if len(svc.airportMap) == 0 {
		svc.airportMap = routes
	}
	svc.mu.Unlock()

	logging.Info("Airport map restored from disk snapshot",
		"entries", len(routes),
		"snapshot_age_s", time.Now().Unix()-snapshot.Timestamp,
	)
}
