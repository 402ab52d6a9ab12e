package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"skytracker/backend/internal/constants"
)

func newTestProvider(apiURL, tokenURL string) *OpenSkyProvider {
	p := NewOpenSkyProvider()
	p.BaseURL = apiURL
	p.TokenURL = tokenURL
	return p
}

func TestFetchStates_Anonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/states/all" {
			t.Errorf("Expected /states/all, got %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Expected no Authorization header for anonymous access, got %q", auth)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"time": 1700000000,
			"states": [][]interface{}{
				{"abc123", "AFR66  ", "France", nil, 1700000000, 2.55, 49.01, 10000.0, false, 230.0, 90.0},
			},
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL, "")
	p.clientID, p.clientSecret, p.username, p.password = "", "", "", ""

	resp, status, err := p.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if len(resp.States) != 1 {
		t.Errorf("Expected 1 state vector, got %d", len(resp.States))
	}
}

func TestToken_FetchedOnceAndCached(t *testing.T) {
	var tokenCalls int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Failed to parse token form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("Expected grant_type client_credentials, got %s", r.Form.Get("grant_type"))
		}
		if r.Form.Get("client_id") != "test-client" {
			t.Errorf("Expected client_id test-client, got %s", r.Form.Get("client_id"))
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"expires_in":   1800,
		})
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-123" {
			t.Errorf("Expected bearer token on API request, got %q", auth)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"time": 1, "states": [][]interface{}{}})
	}))
	defer apiServer.Close()

	p := newTestProvider(apiServer.URL, tokenServer.URL)
	p.clientID, p.clientSecret = "test-client", "test-secret"
	p.username, p.password = "", ""

	for i := 0; i < 3; i++ {
		if _, _, err := p.FetchStates(context.Background()); err != nil {
			t.Fatalf("Unexpected error on request %d: %v", i, err)
		}
	}

	if calls := atomic.LoadInt32(&tokenCalls); calls != 1 {
		t.Errorf("Expected the token to be fetched once and cached, got %d fetches", calls)
	}
}

func TestAuthorize_BasicAuthFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "sky" || pass != "tracker" {
			t.Errorf("Expected basic auth sky/tracker, got %s/%s (%v)", user, pass, ok)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"time": 1, "states": [][]interface{}{}})
	}))
	defer server.Close()

	p := newTestProvider(server.URL, "")
	p.clientID, p.clientSecret = "", ""
	p.username, p.password = "sky", "tracker"

	if _, _, err := p.FetchStates(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestDoGET_MapsRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := newTestProvider(server.URL, "")
	p.clientID, p.clientSecret, p.username, p.password = "", "", "", ""

	_, status, err := p.FetchStates(context.Background())
	if status != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", status)
	}
	if !IsRateLimited(err) {
		t.Errorf("Expected a rate-limited provider error, got %v", err)
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected a *ProviderError, got %T", err)
	}
	if provErr.Code != constants.ErrCodeRateLimited {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeRateLimited, provErr.Code)
	}
}

func TestDoGET_MapsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := newTestProvider(server.URL, "")
	p.clientID, p.clientSecret, p.username, p.password = "", "", "", ""

	_, _, err := p.FetchStates(context.Background())
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected a *ProviderError, got %T", err)
	}
	if provErr.Code != constants.ErrCodeAuthenticationFailed {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeAuthenticationFailed, provErr.Code)
	}
}

func TestFetchTrack_NormalizesAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("icao24"); got != "abc123" {
			t.Errorf("Expected lowercased icao24 abc123, got %q", got)
		}
		if got := r.URL.Query().Get("time"); got != "1700000000" {
			t.Errorf("Expected time 1700000000, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"icao24": "abc123", "path": [][]interface{}{}})
	}))
	defer server.Close()

	p := newTestProvider(server.URL, "")
	p.clientID, p.clientSecret, p.username, p.password = "", "", "", ""

	if _, _, err := p.FetchTrack(context.Background(), "ABC123", 1700000000); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, _, err := p.FetchTrack(context.Background(), "", 0); err == nil {
		t.Error("Expected an error for an empty icao24")
	}
}

func TestFetchArrivals_BuildsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flights/arrival" {
			t.Errorf("Expected /flights/arrival, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("airport"); got != "LFPG" {
			t.Errorf("Expected uppercased airport LFPG, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"icao24": "abc123", "firstSeen": 1700000000, "lastSeen": 1700030000},
		})
	}))
	defer server.Close()

	p := newTestProvider(server.URL, "")
	p.clientID, p.clientSecret, p.username, p.password = "", "", "", ""

	rows, _, err := p.FetchArrivals(context.Background(), "lfpg", 1700000000, 1700030000)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ICAO24 != "abc123" {
		t.Errorf("Unexpected rows: %+v", rows)
	}
}
