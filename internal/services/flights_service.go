package services

import (
	"context"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"skytracker/backend/internal/common"
	"skytracker/backend/internal/constants"
	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/providers"
)

// OpenSkyAPI is the slice of the OpenSky provider the ingestion core consumes
type OpenSkyAPI interface {
	FetchStates(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error)
	FetchTrack(ctx context.Context, icao24 string, timeSeconds int64) (*dtos.OpenSkyTrackResponse, int, error)
	FetchArrivals(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error)
	FetchDepartures(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error)
	FetchFlightsInWindow(ctx context.Context, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error)
	FetchMetadataByICAO(ctx context.Context, icao24 string) (*dtos.OpenSkyAircraftMetadata, int, error)
	FetchMetadataByRegistration(ctx context.Context, registration string) (*dtos.OpenSkyAircraftMetadata, int, error)
}

// FlightFeedAPI is the AviationStack surface the core consumes
type FlightFeedAPI interface {
	FetchActiveFlights(ctx context.Context) []dtos.AviationStackFlight
	Enabled() bool
}

// AircraftPhotoAPI is the PlaneSpotters surface the core consumes
type AircraftPhotoAPI interface {
	PhotoByHex(ctx context.Context, icao24 string) (string, bool)
	PhotoByRegistration(ctx context.Context, registration string) (string, bool)
}

var airportCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,4}$`)

// Refresh outcomes, used as the outcome label on upstream request metrics
const (
	RefreshOutcomeSuccess     = "success"
	RefreshOutcomeEmpty       = "empty"
	RefreshOutcomeRateLimited = "rate_limited"
	RefreshOutcomeError       = "error"
)

// FlightsService owns the in-memory flight and position caches, decides when
// to refresh them, deduplicates concurrent refreshes, and enriches records
// with airport and photo metadata. Public accessors never return an error:
// every failure mode degrades to stale data or an empty result.
type FlightsService struct {
	openSky  OpenSkyAPI
	feed     FlightFeedAPI
	photos   AircraftPhotoAPI
	schedule common.CacheInterface
	store    *common.CacheStore

	ttl   time.Duration
	group singleflight.Group

	// regPhotos memoizes registration -> photo URL ("" records a known miss)
	regPhotos *cache.Cache

	mu                  sync.RWMutex
	flights             []dtos.Flight
	positions           []dtos.Position
	lastFlightsUpdate   time.Time
	lastPositionsUpdate time.Time
	airportMap          map[string]dtos.AirportRoute
	lastAirportMapSync  time.Time
}

// NewFlightsService wires the ingestion core. The refresh TTL defaults to 5
// seconds and can be overridden via FLIGHTS_REFRESH_TTL (seconds).
func NewFlightsService(
	openSky OpenSkyAPI,
	feed FlightFeedAPI,
	photos AircraftPhotoAPI,
	schedule common.CacheInterface,
	store *common.CacheStore,
) *FlightsService {
	ttl := constants.DefaultFlightsTTL
	if raw := os.Getenv("FLIGHTS_REFRESH_TTL"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	return &FlightsService{
		openSky:    openSky,
		feed:       feed,
		photos:     photos,
		schedule:   schedule,
		store:      store,
		ttl:        ttl,
		regPhotos:  cache.New(cache.NoExpiration, 0),
		airportMap: map[string]dtos.AirportRoute{},
	}
}

// TTL returns the configured refresh interval
func (svc *FlightsService) TTL() time.Duration {
	return svc.ttl
}

// Counts returns the cached flight and position counts
func (svc *FlightsService) Counts() (flights, positions int) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return len(svc.flights), len(svc.positions)
}

// ============================================================================
// Flights
// ============================================================================

// GetFlights returns the flight cache, refreshing synchronously when the TTL
// has expired. The first caller after expiry pays the refresh cost.
func (svc *FlightsService) GetFlights(ctx context.Context) []dtos.Flight {
	svc.mu.RLock()
	current := svc.flights
	expired := time.Since(svc.lastFlightsUpdate) > svc.ttl
	svc.mu.RUnlock()

	if !expired {
		return current
	}

	svc.RefreshFlights(ctx)

	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.flights
}

// RefreshFlights fetches, normalizes, and enriches the flight feed. Concurrent
// callers share a single in-flight refresh. An empty upstream response leaves
// the existing cache untouched. Returns the refresh outcome.
func (svc *FlightsService) RefreshFlights(ctx context.Context) string {
	outcome, _, _ := svc.group.Do("flights", func() (interface{}, error) {
		raw := svc.feed.FetchActiveFlights(ctx)
		flights := NormalizeFlights(raw)
		if len(flights) == 0 {
			logging.Debug("Flight refresh returned no records, keeping previous cache")
			return RefreshOutcomeEmpty, nil
		}

		svc.carryForwardEnrichment(flights)
		svc.enrichFlightPhotos(ctx, flights)

		svc.mu.Lock()
		svc.flights = flights
		svc.lastFlightsUpdate = time.Now()
		svc.mu.Unlock()

		logging.Info("Flight cache refreshed", "flights", len(flights))
		return RefreshOutcomeSuccess, nil
	})
	return outcome.(string)
}

// carryForwardEnrichment copies previously resolved photo URLs and transponder
// addresses onto the replacement records so enrichment stays incremental
// across wholesale cache swaps
func (svc *FlightsService) carryForwardEnrichment(flights []dtos.Flight) {
	svc.mu.RLock()
	previous := make(map[string]dtos.Flight, len(svc.flights))
	for _, f := range svc.flights {
		if f.FlightKey != "" {
			previous[f.FlightKey] = f
		}
	}
	svc.mu.RUnlock()

	for i := range flights {
		old, ok := previous[flights[i].FlightKey]
		if !ok {
			continue
		}
		if flights[i].ImageURL == "" {
			flights[i].ImageURL = old.ImageURL
		}
		if flights[i].ICAO24 == "" {
			flights[i].ICAO24 = old.ICAO24
		}
	}
}

// ============================================================================
// Positions
// ============================================================================

// GetPositions returns the position cache. A cold cache blocks on a refresh;
// a stale one triggers a refresh in the background and returns immediately,
// trading freshness for latency once any data exists.
func (svc *FlightsService) GetPositions(ctx context.Context) []dtos.Position {
	svc.mu.RLock()
	current := svc.positions
	empty := len(current) == 0
	expired := time.Since(svc.lastPositionsUpdate) > svc.ttl
	svc.mu.RUnlock()

	if empty {
		svc.RefreshPositions(ctx)
		svc.mu.RLock()
		defer svc.mu.RUnlock()
		return svc.positions
	}

	if expired {
		// Detached context: the refresh must outlive the request that
		// triggered it, and upstream calls carry their own timeouts
		go svc.RefreshPositions(context.Background())
	}

	return current
}

// RefreshPositions fetches and normalizes state vectors, then enriches them
// with airport routes and flight matches. Concurrent callers and the
// background worker all share the same single-flight guard, so a cold-cache
// stampede results in exactly one upstream request. Returns the refresh
// outcome.
func (svc *FlightsService) RefreshPositions(ctx context.Context) string {
	outcome, _, _ := svc.group.Do("positions", func() (interface{}, error) {
		svc.syncAirportMap(ctx)

		raw, status, err := svc.openSky.FetchStates(ctx)
		if err != nil {
			if providers.IsRateLimited(err) {
				logging.Warn("Position refresh rate-limited, serving previous cache", "status", status)
				return RefreshOutcomeRateLimited, nil
			}
			logging.Error("Position refresh failed, serving previous cache", "status", status, "error", err.Error())
			return RefreshOutcomeError, nil
		}

		positions := NormalizePositions(raw)
		if len(positions) == 0 {
			logging.Debug("Position refresh returned no records, keeping previous cache")
			return RefreshOutcomeEmpty, nil
		}

		svc.enrichPositions(positions)

		svc.mu.Lock()
		svc.positions = positions
		svc.lastPositionsUpdate = time.Now()
		svc.mu.Unlock()

		logging.Debug("Position cache refreshed", "positions", len(positions))
		return RefreshOutcomeSuccess, nil
	})
	return outcome.(string)
}

// ============================================================================
// Airport schedules
// ============================================================================

// GetFlightsForAirport returns cached arrivals and departures for a 3-4
// character airport code over a trailing two-hour window. Malformed codes are
// rejected before any network call; upstream failures serve the last cached
// value for that airport, or empty lists.
func (svc *FlightsService) GetFlightsForAirport(ctx context.Context, code string) dtos.AirportFlightsResponse {
	response := dtos.AirportFlightsResponse{
		Arrivals:   []dtos.AirportFlightEntry{},
		Departures: []dtos.AirportFlightEntry{},
	}

	if !airportCodePattern.MatchString(code) {
		logging.Debug("Rejected malformed airport code", "code", code)
		return response
	}
	code = strings.ToUpper(code)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		response.Arrivals = svc.airportSchedule(ctx, code, "arrival")
	}()
	go func() {
		defer wg.Done()
		response.Departures = svc.airportSchedule(ctx, code, "departure")
	}()
	wg.Wait()

	return response
}

// airportSchedule serves one (code, direction) pair from cache, refreshing it
// on miss and retaining a long-lived fallback copy for upstream outages
func (svc *FlightsService) airportSchedule(ctx context.Context, code, direction string) []dtos.AirportFlightEntry {
	key := constants.CacheKeyAirportFlights + code + "_" + direction

	if hit, found := svc.schedule.Get(key); found {
		var entries []dtos.AirportFlightEntry
		if err := common.RemarshalCacheValue(hit, &entries); err == nil {
			return entries
		}
	}

	end := time.Now().Unix()
	begin := end - int64(constants.AirportScheduleWindow.Seconds())

	var rows []dtos.OpenSkyAirportFlight
	var err error
	if direction == "arrival" {
		rows, _, err = svc.openSky.FetchArrivals(ctx, code, begin, end)
	} else {
		rows, _, err = svc.openSky.FetchDepartures(ctx, code, begin, end)
	}

	if err != nil {
		if providers.IsRateLimited(err) {
			logging.Warn("Airport schedule rate-limited", "airport", code, "direction", direction)
		} else {
			logging.Error("Airport schedule fetch failed", "airport", code, "direction", direction, "error", err.Error())
		}
		if stale, found := svc.schedule.Get(key + "_last"); found {
			var entries []dtos.AirportFlightEntry
			if err := common.RemarshalCacheValue(stale, &entries); err == nil {
				return entries
			}
		}
		return []dtos.AirportFlightEntry{}
	}

	entries := make([]dtos.AirportFlightEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, MapAirportFlight(row, direction))
	}

	svc.schedule.Set(key, entries, constants.DefaultAirportFlightTTL)
	svc.schedule.Set(key+"_last", entries, 24*time.Hour)
	return entries
}

// ============================================================================
// Tracks and photos
// ============================================================================

// GetTrackForAircraft returns the historical trajectory for an aircraft
// around the given unix time, defaulting to now. Path rows with fewer than
// three numeric elements are dropped. Empty on any failure.
func (svc *FlightsService) GetTrackForAircraft(ctx context.Context, icao24 string, timeSeconds int64) []dtos.TrackPoint {
	track := []dtos.TrackPoint{}
	if icao24 == "" {
		return track
	}
	if timeSeconds == 0 {
		timeSeconds = time.Now().Unix()
	}

	raw, _, err := svc.openSky.FetchTrack(ctx, icao24, timeSeconds)
	if err != nil {
		logging.Debug("Track fetch failed", "icao24", icao24, "error", err.Error())
		return track
	}

	for _, point := range raw.Path {
		if len(point) < 3 {
			continue
		}
		lat, latOK := point[1].(float64)
		lon, lonOK := point[2].(float64)
		if !latOK || !lonOK {
			continue
		}

		tp := dtos.TrackPoint{Latitude: lat, Longitude: lon}
		if len(point) > 3 {
			if alt, ok := point[3].(float64); ok {
				tp.AltitudeMeters = &alt
			}
		}
		track = append(track, tp)
	}
	return track
}

// GetAircraftPhoto resolves a photo URL for a transponder address, trying
// OpenSky metadata before PlaneSpotters. Returns ("", false) on miss.
func (svc *FlightsService) GetAircraftPhoto(ctx context.Context, icao24 string) (string, bool) {
	if icao24 == "" {
		return "", false
	}

	if meta, _, err := svc.openSky.FetchMetadataByICAO(ctx, icao24); err == nil && meta.ImageURL != "" {
		return meta.ImageURL, true
	}

	return svc.photos.PhotoByHex(ctx, icao24)
}
