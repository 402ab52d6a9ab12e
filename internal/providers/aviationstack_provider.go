package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"time"

	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/models/dtos"
)

const defaultAviationStackURL = "http://api.aviationstack.com/v1"

// AviationStackProvider wraps the AviationStack flights endpoint. Every call
// degrades to an empty list on failure so the ingestion loop can fall back to
// its previous cache without special-casing errors.
type AviationStackProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAviationStackProvider creates a new provider, reading config from environment variables
func NewAviationStackProvider() *AviationStackProvider {
	baseURL := os.Getenv("AVIATIONSTACK_URL")
	if baseURL == "" {
		baseURL = defaultAviationStackURL
	}

	return &AviationStackProvider{
		BaseURL: baseURL,
		APIKey:  os.Getenv("AVIATIONSTACK_KEY"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetProviderType returns the provider type identifier
func (p *AviationStackProvider) GetProviderType() string {
	return "aviationstack"
}

// Enabled reports whether an API key is configured. Without one, flight
// ingestion is disabled entirely while position ingestion keeps running.
func (p *AviationStackProvider) Enabled() bool {
	return p.APIKey != ""
}

// FetchActiveFlights returns up to 100 currently active flights. Never
// returns an error: transport, auth, and decode failures all yield an empty
// slice, logged for operators.
func (p *AviationStackProvider) FetchActiveFlights(ctx context.Context) []dtos.AviationStackFlight {
	if !p.Enabled() {
		return nil
	}

	params := url.Values{
		"access_key":    {p.APIKey},
		"limit":         {"100"},
		"flight_status": {"active"},
	}

	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		logging.Error("AviationStack request build failed", "error", err.Error())
		return nil
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		logging.Error("AviationStack fetch failed", "error", err.Error())
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.Warn("AviationStack returned non-200", "status", resp.StatusCode)
		return nil
	}

	var result dtos.AviationStackResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logging.Error("AviationStack decode failed", "error", err.Error())
		return nil
	}

	return result.Data
}
