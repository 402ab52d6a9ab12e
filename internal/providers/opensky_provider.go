package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"skytracker/backend/internal/constants"
	"skytracker/backend/internal/models/dtos"
)

const (
	defaultOpenSkyURL  = "https://opensky-network.org/api"
	openSkyTokenURL    = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"
	tokenSafetyMargin  = 60 * time.Second
	openSkyHTTPTimeout = 10 * time.Second
)

// OpenSkyProvider wraps the OpenSky Network REST API. Authentication degrades
// gracefully: OAuth2 client credentials when configured, HTTP Basic when only
// a username/password pair is set, anonymous otherwise.
type OpenSkyProvider struct {
	BaseURL  string
	Client   *http.Client
	TokenURL string

	clientID     string
	clientSecret string
	username     string
	password     string

	tokenCache *cache.Cache
}

// NewOpenSkyProvider creates a new provider, reading config from environment variables
func NewOpenSkyProvider() *OpenSkyProvider {
	baseURL := os.Getenv("OPENSKY_URL")
	if baseURL == "" {
		baseURL = defaultOpenSkyURL
	}

	return &OpenSkyProvider{
		BaseURL:      baseURL,
		TokenURL:     openSkyTokenURL,
		Client:       &http.Client{Timeout: openSkyHTTPTimeout},
		clientID:     os.Getenv("OPENSKY_CLIENT_ID"),
		clientSecret: os.Getenv("OPENSKY_CLIENT_SECRET"),
		username:     os.Getenv("OPENSKY_USERNAME"),
		password:     os.Getenv("OPENSKY_PASSWORD"),
		tokenCache:   cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// GetProviderType returns the provider type identifier
func (p *OpenSkyProvider) GetProviderType() string {
	return "opensky_network"
}

// ============================================================================
// Token Management
// ============================================================================

// token returns a cached OAuth2 access token, fetching a new one when the
// cached copy is missing or expired. Only called when client credentials are set.
func (p *OpenSkyProvider) token(ctx context.Context) (string, error) {
	if tok, found := p.tokenCache.Get(constants.CacheKeyOpenSkyToken); found {
		return tok.(string), nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create token request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", buildHTTPError(resp.StatusCode, "/token", string(bodyBytes))
	}

	var tokResp dtos.OpenSkyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokResp); err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode token response",
			Err:     err,
		}
	}

	ttl := time.Duration(tokResp.ExpiresIn)*time.Second - tokenSafetyMargin
	if ttl > 0 {
		p.tokenCache.Set(constants.CacheKeyOpenSkyToken, tokResp.AccessToken, ttl)
	}
	return tokResp.AccessToken, nil
}

// authorize attaches the strongest available credentials to the request
func (p *OpenSkyProvider) authorize(ctx context.Context, req *http.Request) error {
	switch {
	case p.clientID != "" && p.clientSecret != "":
		tok, err := p.token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	case p.username != "" && p.password != "":
		req.SetBasicAuth(p.username, p.password)
	}
	return nil
}

// doGET performs an authenticated GET and decodes the JSON body into result
func (p *OpenSkyProvider) doGET(ctx context.Context, endpoint string, result interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+endpoint, nil)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Accept", "application/json")

	if err := p.authorize(ctx, req); err != nil {
		return 0, err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, buildHTTPError(resp.StatusCode, endpoint, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode response",
			Err:     err,
		}
	}

	return resp.StatusCode, nil
}

// ============================================================================
// API Methods
// ============================================================================

// FetchStates retrieves the current state vectors for all tracked aircraft
func (p *OpenSkyProvider) FetchStates(ctx context.Context) (*dtos.OpenSkyStatesResponse, int, error) {
	var result dtos.OpenSkyStatesResponse
	status, err := p.doGET(ctx, "/states/all", &result)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

// FetchTrack retrieves the trajectory for one aircraft around the given unix time
func (p *OpenSkyProvider) FetchTrack(ctx context.Context, icao24 string, timeSeconds int64) (*dtos.OpenSkyTrackResponse, int, error) {
	if icao24 == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "icao24 cannot be empty",
		}
	}

	endpoint := fmt.Sprintf("/tracks/all?icao24=%s&time=%d", strings.ToLower(icao24), timeSeconds)

	var result dtos.OpenSkyTrackResponse
	status, err := p.doGET(ctx, endpoint, &result)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

// FetchArrivals retrieves flights that arrived at an airport within [begin, end]
func (p *OpenSkyProvider) FetchArrivals(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	return p.fetchAirportFlights(ctx, "arrival", airport, begin, end)
}

// FetchDepartures retrieves flights that departed from an airport within [begin, end]
func (p *OpenSkyProvider) FetchDepartures(ctx context.Context, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	return p.fetchAirportFlights(ctx, "departure", airport, begin, end)
}

func (p *OpenSkyProvider) fetchAirportFlights(ctx context.Context, direction, airport string, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	if airport == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "airport code cannot be empty",
		}
	}

	endpoint := fmt.Sprintf("/flights/%s?airport=%s&begin=%d&end=%d",
		direction, strings.ToUpper(airport), begin, end)

	var result []dtos.OpenSkyAirportFlight
	status, err := p.doGET(ctx, endpoint, &result)
	if err != nil {
		return nil, status, err
	}
	return result, status, nil
}

// FetchFlightsInWindow retrieves all flights seen network-wide within [begin, end].
// Feeds the recent-flights airport map.
func (p *OpenSkyProvider) FetchFlightsInWindow(ctx context.Context, begin, end int64) ([]dtos.OpenSkyAirportFlight, int, error) {
	endpoint := fmt.Sprintf("/flights/all?begin=%d&end=%d", begin, end)

	var result []dtos.OpenSkyAirportFlight
	status, err := p.doGET(ctx, endpoint, &result)
	if err != nil {
		return nil, status, err
	}
	return result, status, nil
}

// FetchMetadataByICAO retrieves aircraft metadata by transponder address
func (p *OpenSkyProvider) FetchMetadataByICAO(ctx context.Context, icao24 string) (*dtos.OpenSkyAircraftMetadata, int, error) {
	if icao24 == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "icao24 cannot be empty",
		}
	}

	var result dtos.OpenSkyAircraftMetadata
	status, err := p.doGET(ctx, "/metadata/aircraft/icao/"+strings.ToLower(icao24), &result)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}

// FetchMetadataByRegistration retrieves aircraft metadata by tail number
func (p *OpenSkyProvider) FetchMetadataByRegistration(ctx context.Context, registration string) (*dtos.OpenSkyAircraftMetadata, int, error) {
	if registration == "" {
		return nil, 0, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "registration cannot be empty",
		}
	}

	var result dtos.OpenSkyAircraftMetadata
	status, err := p.doGET(ctx, "/metadata/aircraft/registration/"+strings.ToUpper(registration), &result)
	if err != nil {
		return nil, status, err
	}
	return &result, status, nil
}
