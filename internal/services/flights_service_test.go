package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skytracker/backend/internal/common"
	"skytracker/backend/internal/constants"
	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/providers"
)

// Mock OpenSky provider with per-call counters
type mockOpenSky struct {
	statesCalls   int32
	arrivalsCalls int32
	windowCalls   int32
	metadataCalls int32

	fetchStatesFunc   func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error)
	fetchArrivalsFunc func(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error)
	fetchTrackFunc    func(ctx context.Context, icao24 string, timeSeconds int64) (*dtos.OpenSkyTrackResponse, int, error)
	metadataByICAO    func(ctx context.Context, icao24 string) (*dtos.OpenSkyAircraftMetadata, int, error)
	metadataByReg     func(ctx context.Context, registration string) (*dtos.OpenSkyAircraftMetadata, int, error)
}

func (m *mockOpenSky) FetchStates(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
	atomic.AddInt32(&m.statesCalls, 1)
	if m.fetchStatesFunc != nil {
		return m.fetchStatesFunc(ctx)
	}
	return &dtos.OpenSkyStatesResponse{}, 200, nil
}

func (m *mockOpenSky) FetchTrack(ctx context.Context, icao24 string, timeSeconds int64) (*dtos.OpenSkyTrackResponse, int, error) {
	if m.fetchTrackFunc != nil {
		return m.fetchTrackFunc(ctx, icao24, timeSeconds)
	}
	return &dtos.OpenSkyTrackResponse{}, 200, nil
}

func (m *mockOpenSky) FetchArrivals(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	atomic.AddInt32(&m.arrivalsCalls, 1)
	if m.fetchArrivalsFunc != nil {
		return m.fetchArrivalsFunc(ctx, airport, begin, end)
	}
	return nil, 200, nil
}

func (m *mockOpenSky) FetchDepartures(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	atomic.AddInt32(&m.arrivalsCalls, 1)
	return nil, 200, nil
}

func (m *mockOpenSky) FetchFlightsInWindow(ctx context.Context, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	atomic.AddInt32(&m.windowCalls, 1)
	return nil, 200, nil
}

func (m *mockOpenSky) FetchMetadataByICAO(ctx context.Context, icao24 string) (*dtos.OpenSkyAircraftMetadata, int, error) {
	atomic.AddInt32(&m.metadataCalls, 1)
	if m.metadataByICAO != nil {
		return m.metadataByICAO(ctx, icao24)
	}
	return nil, 404, errors.New("not found")
}

func (m *mockOpenSky) FetchMetadataByRegistration(ctx context.Context, registration string) (*dtos.OpenSkyAircraftMetadata, int, error) {
	atomic.AddInt32(&m.metadataCalls, 1)
	if m.metadataByReg != nil {
		return m.metadataByReg(ctx, registration)
	}
	return nil, 404, errors.New("not found")
}

type mockFeed struct {
	calls     int32
	fetchFunc func(ctx context.Context) []dtos.AviationStackFlight
}

func (m *mockFeed) FetchActiveFlights(ctx context.Context) []dtos.AviationStackFlight {
	atomic.AddInt32(&m.calls, 1)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx)
	}
	return nil
}

func (m *mockFeed) Enabled() bool { return true }

type mockPhotos struct {
	hexCalls int32
	regCalls int32
	byHex    func(ctx context.Context, icao24 string) (string, bool)
	byReg    func(ctx context.Context, registration string) (string, bool)
}

func (m *mockPhotos) PhotoByHex(ctx context.Context, icao24 string) (string, bool) {
	atomic.AddInt32(&m.hexCalls, 1)
	if m.byHex != nil {
		return m.byHex(ctx, icao24)
	}
	return "", false
}

func (m *mockPhotos) PhotoByRegistration(ctx context.Context, registration string) (string, bool) {
	atomic.AddInt32(&m.regCalls, 1)
	if m.byReg != nil {
		return m.byReg(ctx, registration)
	}
	return "", false
}

func newTestService(t *testing.T, openSky *mockOpenSky, feed *mockFeed, photos *mockPhotos) *FlightsService {
	t.Helper()
	schedule := common.NewCacheService(time.Minute, 10*time.Minute)
	store := common.NewCacheStore(t.TempDir())
	return NewFlightsService(openSky, feed, photos, schedule, store)
}

func stateVector(icao24, callsign string, lon, lat float64) []interface{} {
	return []interface{}{icao24, callsign, "Testland", nil, float64(1700000000), lon, lat, float64(9000), false, float64(200), float64(180)}
}

func TestGetPositions_ColdCacheStampedeFetchesOnce(t *testing.T) {
	release := make(chan struct{})
	openSky := &mockOpenSky{
		fetchStatesFunc: func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
			<-release
			return &dtos.OpenSkyStatesResponse{
				States: [][]interface{}{stateVector("abc123", "AFR66", 2.55, 49.01)},
			}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	var wg sync.WaitGroup
	results := make([][]dtos.Position, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = svc.GetPositions(context.Background())
		}(i)
	}

	// Give all callers time to pile onto the single flight before releasing it
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls := atomic.LoadInt32(&openSky.statesCalls); calls != 1 {
		t.Errorf("Expected exactly 1 upstream fetch for a cold-cache stampede, got %d", calls)
	}
	for i, positions := range results {
		if len(positions) != 1 {
			t.Errorf("Caller %d expected 1 position, got %d", i, len(positions))
		}
	}
}

func TestGetPositions_ServesCacheWithinTTL(t *testing.T) {
	openSky := &mockOpenSky{
		fetchStatesFunc: func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
			return &dtos.OpenSkyStatesResponse{
				States: [][]interface{}{stateVector("abc123", "AFR66", 2.55, 49.01)},
			}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	first := svc.GetPositions(context.Background())
	second := svc.GetPositions(context.Background())

	if calls := atomic.LoadInt32(&openSky.statesCalls); calls != 1 {
		t.Errorf("Expected 1 fetch for back-to-back reads within the TTL, got %d", calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("Expected both reads to see the cached position")
	}
}

func TestRefreshPositions_EmptyResponseKeepsPreviousCache(t *testing.T) {
	var serveEmpty atomic.Bool
	openSky := &mockOpenSky{
		fetchStatesFunc: func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
			if serveEmpty.Load() {
				return &dtos.OpenSkyStatesResponse{}, 200, nil
			}
			return &dtos.OpenSkyStatesResponse{
				States: [][]interface{}{stateVector("abc123", "AFR66", 2.55, 49.01)},
			}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	svc.RefreshPositions(context.Background())
	serveEmpty.Store(true)
	svc.RefreshPositions(context.Background())

	_, positions := svc.Counts()
	if positions != 1 {
		t.Errorf("Expected previous cache to survive an empty refresh, got %d positions", positions)
	}
}

func TestRefreshPositions_RateLimitKeepsPreviousCache(t *testing.T) {
	var rateLimited atomic.Bool
	openSky := &mockOpenSky{
		fetchStatesFunc: func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
			if rateLimited.Load() {
				return nil, 429, &providers.ProviderError{Code: constants.ErrCodeRateLimited, Message: "rate limited"}
			}
			return &dtos.OpenSkyStatesResponse{
				States: [][]interface{}{stateVector("abc123", "AFR66", 2.55, 49.01)},
			}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	svc.RefreshPositions(context.Background())
	rateLimited.Store(true)
	svc.RefreshPositions(context.Background())

	_, positions := svc.Counts()
	if positions != 1 {
		t.Errorf("Expected previous cache to survive a rate-limited refresh, got %d positions", positions)
	}
}

func TestRefreshPositions_NetworkFailureKeepsPreviousCache(t *testing.T) {
	var failing atomic.Bool
	openSky := &mockOpenSky{
		fetchStatesFunc: func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
			if failing.Load() {
				return nil, 0, &providers.ProviderError{
					Code:    constants.ErrCodeNetworkError,
					Message: "token fetch failed",
					Err:     errors.New("connection refused"),
				}
			}
			return &dtos.OpenSkyStatesResponse{
				States: [][]interface{}{stateVector("abc123", "AFR66", 2.55, 49.01)},
			}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	svc.RefreshPositions(context.Background())
	failing.Store(true)
	svc.RefreshPositions(context.Background())

	positions := svc.GetPositions(context.Background())
	if len(positions) != 1 {
		t.Errorf("Expected the previous cache served through an auth outage, got %d positions", len(positions))
	}
}

func TestRefreshPositions_ReportsOutcome(t *testing.T) {
	var mode atomic.Value
	mode.Store("success")
	openSky := &mockOpenSky{
		fetchStatesFunc: func(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
			switch mode.Load().(string) {
			case "empty":
				return &dtos.OpenSkyStatesResponse{}, 200, nil
			case "rate_limited":
				return nil, 429, &providers.ProviderError{Code: constants.ErrCodeRateLimited, Message: "rate limited"}
			case "error":
				return nil, 0, &providers.ProviderError{Code: constants.ErrCodeNetworkError, Message: "down", Err: errors.New("connection refused")}
			default:
				return &dtos.OpenSkyStatesResponse{
					States: [][]interface{}{stateVector("abc123", "AFR66", 2.55, 49.01)},
				}, 200, nil
			}
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	for _, expected := range []string{
		RefreshOutcomeSuccess,
		RefreshOutcomeEmpty,
		RefreshOutcomeRateLimited,
		RefreshOutcomeError,
	} {
		mode.Store(expected)
		if outcome := svc.RefreshPositions(context.Background()); outcome != expected {
			t.Errorf("Expected outcome %q, got %q", expected, outcome)
		}
	}
}

func TestRefreshFlights_ReportsOutcome(t *testing.T) {
	var serveRecords atomic.Bool
	feed := &mockFeed{
		fetchFunc: func(ctx context.Context) []dtos.AviationStackFlight {
			if !serveRecords.Load() {
				return nil
			}
			return []dtos.AviationStackFlight{
				{
					FlightDate: "2026-08-30",
					Flight:     dtos.AviationStackFlightID{IATA: "AF66"},
					Live:       &dtos.AviationStackLive{Latitude: floatPtr(49.0), Longitude: floatPtr(2.5)},
				},
			}
		},
	}
	svc := newTestService(t, &mockOpenSky{}, feed, &mockPhotos{})

	if outcome := svc.RefreshFlights(context.Background()); outcome != RefreshOutcomeEmpty {
		t.Errorf("Expected outcome %q for an empty feed, got %q", RefreshOutcomeEmpty, outcome)
	}

	serveRecords.Store(true)
	if outcome := svc.RefreshFlights(context.Background()); outcome != RefreshOutcomeSuccess {
		t.Errorf("Expected outcome %q once the feed serves records, got %q", RefreshOutcomeSuccess, outcome)
	}
}

func TestGetFlights_RefreshesOnlyAfterTTL(t *testing.T) {
	feed := &mockFeed{
		fetchFunc: func(ctx context.Context) []dtos.AviationStackFlight {
			return []dtos.AviationStackFlight{
				{
					FlightDate: "2026-08-30",
					Flight:     dtos.AviationStackFlightID{IATA: "AF66"},
					Live:       &dtos.AviationStackLive{Latitude: floatPtr(49.0), Longitude: floatPtr(2.5)},
				},
			}
		},
	}
	svc := newTestService(t, &mockOpenSky{}, feed, &mockPhotos{})

	svc.GetFlights(context.Background())
	svc.GetFlights(context.Background())
	if calls := atomic.LoadInt32(&feed.calls); calls != 1 {
		t.Errorf("Expected 1 feed fetch within the TTL, got %d", calls)
	}

	// Force expiry and read again
	svc.mu.Lock()
	svc.lastFlightsUpdate = time.Now().Add(-2 * svc.ttl)
	svc.mu.Unlock()

	svc.GetFlights(context.Background())
	if calls := atomic.LoadInt32(&feed.calls); calls != 2 {
		t.Errorf("Expected a second feed fetch after the TTL expired, got %d", calls)
	}
}

func TestEnrichFlightPhotos_SkipsFlightsWithPhotos(t *testing.T) {
	openSky := &mockOpenSky{}
	photos := &mockPhotos{}
	svc := newTestService(t, openSky, &mockFeed{}, photos)

	flights := []dtos.Flight{
		{ID: "AF66-2026-08-30-0", FlightKey: "AF66", ICAO24: "abc123", ImageURL: "https://img.example/1.jpg"},
		{ID: "BA117-2026-08-30-1", FlightKey: "BA117", AircraftRegistration: "G-STBA", ImageURL: "https://img.example/2.jpg"},
	}

	svc.enrichFlightPhotos(context.Background(), flights)

	if calls := atomic.LoadInt32(&openSky.metadataCalls); calls != 0 {
		t.Errorf("Expected no metadata lookups for already-enriched flights, got %d", calls)
	}
	if calls := atomic.LoadInt32(&photos.hexCalls) + atomic.LoadInt32(&photos.regCalls); calls != 0 {
		t.Errorf("Expected no photo lookups for already-enriched flights, got %d", calls)
	}
}

func TestPhotoByRegistration_MemoizesMisses(t *testing.T) {
	openSky := &mockOpenSky{}
	photos := &mockPhotos{}
	svc := newTestService(t, openSky, &mockFeed{}, photos)

	flight := &dtos.Flight{AircraftRegistration: "N12345"}
	svc.photoByRegistration(context.Background(), flight)
	svc.photoByRegistration(context.Background(), flight)

	if calls := atomic.LoadInt32(&photos.regCalls); calls != 1 {
		t.Errorf("Expected the registration miss to be memoized, got %d lookups", calls)
	}
}

func TestPhotoByRegistration_LearnsICAO24(t *testing.T) {
	openSky := &mockOpenSky{
		metadataByReg: func(ctx context.Context, registration string) (*dtos.OpenSkyAircraftMetadata, int, error) {
			return &dtos.OpenSkyAircraftMetadata{ICAO24: "ABC123", Registration: registration}, 200, nil
		},
	}
	photos := &mockPhotos{
		byReg: func(ctx context.Context, registration string) (string, bool) {
			return "https://img.example/3.jpg", true
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, photos)

	flight := &dtos.Flight{AircraftRegistration: "F-GSPS"}
	url := svc.photoByRegistration(context.Background(), flight)

	if url != "https://img.example/3.jpg" {
		t.Errorf("Expected the registration photo, got %q", url)
	}
	if flight.ICAO24 != "abc123" {
		t.Errorf("Expected the learned icao24 to be saved lowercased, got %q", flight.ICAO24)
	}
}

func TestGetFlightsForAirport_RejectsMalformedCode(t *testing.T) {
	openSky := &mockOpenSky{}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	for _, code := range []string{"", "C!", "AB", "TOOLONG", "CD G"} {
		resp := svc.GetFlightsForAirport(context.Background(), code)
		if len(resp.Arrivals) != 0 || len(resp.Departures) != 0 {
			t.Errorf("Expected empty schedule for malformed code %q", code)
		}
	}

	if calls := atomic.LoadInt32(&openSky.arrivalsCalls); calls != 0 {
		t.Errorf("Expected no network calls for malformed codes, got %d", calls)
	}
}

func TestGetFlightsForAirport_UppercasesCode(t *testing.T) {
	var gotAirport string
	openSky := &mockOpenSky{
		fetchArrivalsFunc: func(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
			gotAirport = airport
			return nil, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	svc.GetFlightsForAirport(context.Background(), "cdg")
	if gotAirport != "CDG" {
		t.Errorf("Expected the airport code uppercased to CDG, got %q", gotAirport)
	}
}

func TestAirportSchedule_ServesStaleCopyOnFailure(t *testing.T) {
	openSky := &mockOpenSky{
		fetchArrivalsFunc: func(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
			return nil, 500, &providers.ProviderError{Code: constants.ErrCodeNetworkError, Message: "down"}
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	stale := []dtos.AirportFlightEntry{{ID: "3c6444-1700030000-arrival", ICAO24: "3c6444"}}
	svc.schedule.Set(constants.CacheKeyAirportFlights+"CDG_arrival_last", stale, 24*time.Hour)

	entries := svc.airportSchedule(context.Background(), "CDG", "arrival")
	if len(entries) != 1 || entries[0].ICAO24 != "3c6444" {
		t.Errorf("Expected the stale copy on upstream failure, got %+v", entries)
	}
}

func TestGetTrackForAircraft_ParsesPathRows(t *testing.T) {
	var gotTime int64
	openSky := &mockOpenSky{
		fetchTrackFunc: func(ctx context.Context, icao24 string, timeSeconds int64) (*dtos.OpenSkyTrackResponse, int, error) {
			gotTime = timeSeconds
			return &dtos.OpenSkyTrackResponse{
				ICAO24: icao24,
				Path: [][]interface{}{
					{float64(1700000000), 49.01, 2.55, float64(10000)},
					{float64(1700000010), 49.02},
					{float64(1700000020), 49.03, 2.57},
					{float64(1700000030), "bad", 2.58},
				},
			}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	track := svc.GetTrackForAircraft(context.Background(), "abc123", 0)

	if gotTime == 0 {
		t.Error("Expected a zero time argument to default to now")
	}
	if len(track) != 2 {
		t.Fatalf("Expected 2 usable track points, got %d", len(track))
	}
	if track[0].AltitudeMeters == nil || *track[0].AltitudeMeters != 10000 {
		t.Errorf("Expected altitude on the first point, got %v", track[0].AltitudeMeters)
	}
	if track[1].AltitudeMeters != nil {
		t.Errorf("Expected no altitude on the three-element point")
	}
}

func TestCarryForwardEnrichment(t *testing.T) {
	svc := newTestService(t, &mockOpenSky{}, &mockFeed{}, &mockPhotos{})

	svc.mu.Lock()
	svc.flights = []dtos.Flight{
		{ID: "AF66-2026-08-29-0", FlightKey: "AF66", ICAO24: "abc123", ImageURL: "https://img.example/1.jpg"},
	}
	svc.mu.Unlock()

	replacement := []dtos.Flight{
		{ID: "AF66-2026-08-30-0", FlightKey: "AF66"},
		{ID: "BA117-2026-08-30-1", FlightKey: "BA117"},
	}
	svc.carryForwardEnrichment(replacement)

	if replacement[0].ImageURL != "https://img.example/1.jpg" || replacement[0].ICAO24 != "abc123" {
		t.Errorf("Expected enrichment carried forward by flight key, got %+v", replacement[0])
	}
	if replacement[1].ImageURL != "" {
		t.Errorf("Expected no carry-over for an unseen flight key")
	}
}

func TestEnrichPositions_MatchesFlightByCallsign(t *testing.T) {
	svc := newTestService(t, &mockOpenSky{}, &mockFeed{}, &mockPhotos{})

	svc.mu.Lock()
	svc.flights = []dtos.Flight{
		{FlightKey: "AF66", DepartureAirport: "Charles de Gaulle", ArrivalAirport: "JFK", Airline: "Air France", Status: "active"},
	}
	svc.airportMap = map[string]dtos.AirportRoute{
		"ddd444": {Departure: "EDDF", Arrival: "EGLL"},
	}
	svc.mu.Unlock()

	positions := []dtos.Position{
		{ICAO24: "abc123", Callsign: "AF 66"},
		{ICAO24: "ddd444", Callsign: "UNKNOWN1"},
		{ICAO24: "eee555", Callsign: ""},
	}
	svc.enrichPositions(positions)

	if positions[0].Airline != "Air France" || positions[0].DepartureAirport != "Charles de Gaulle" {
		t.Errorf("Expected callsign match to enrich position, got %+v", positions[0])
	}
	if positions[1].DepartureAirport != "EDDF" || positions[1].ArrivalAirport != "EGLL" {
		t.Errorf("Expected airport map to enrich position, got %+v", positions[1])
	}
	if positions[2].Airline != "" || positions[2].DepartureAirport != "" {
		t.Errorf("Expected unmatched position to pass through unchanged, got %+v", positions[2])
	}
}

func TestNewFlightsService_TTLFromEnvironment(t *testing.T) {
	t.Setenv("FLIGHTS_REFRESH_TTL", "30")
	svc := newTestService(t, &mockOpenSky{}, &mockFeed{}, &mockPhotos{})
	if svc.TTL() != 30*time.Second {
		t.Errorf("Expected a 30s TTL from the environment, got %s", svc.TTL())
	}

	t.Setenv("FLIGHTS_REFRESH_TTL", "not-a-number")
	svc = newTestService(t, &mockOpenSky{}, &mockFeed{}, &mockPhotos{})
	if svc.TTL() != constants.DefaultFlightsTTL {
		t.Errorf("Expected the default TTL for a malformed value, got %s", svc.TTL())
	}
}

func TestGetTrackForAircraft_EmptyAddressSkipsUpstream(t *testing.T) {
	called := false
	openSky := &mockOpenSky{
		fetchTrackFunc: func(ctx context.Context, icao24 string, timeSeconds int64) (*dtos.OpenSkyTrackResponse, int, error) {
			called = true
			return &dtos.OpenSkyTrackResponse{}, 200, nil
		},
	}
	svc := newTestService(t, openSky, &mockFeed{}, &mockPhotos{})

	track := svc.GetTrackForAircraft(context.Background(), "", 1700000000)
	if called {
		t.Error("Expected no upstream call for an empty transponder address")
	}
	if len(track) != 0 {
		t.Errorf("Expected an empty track, got %d points", len(track))
	}
}
