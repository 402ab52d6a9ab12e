package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/models/dtos"
)

const defaultPlaneSpottersURL = "https://api.planespotters.net/pub"

// PlaneSpottersProvider looks up aircraft photos by ICAO hex or registration.
// Lookups never fail loudly: a miss or upstream error returns ("", false).
type PlaneSpottersProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewPlaneSpottersProvider creates a new provider
func NewPlaneSpottersProvider() *PlaneSpottersProvider {
	baseURL := os.Getenv("PLANESPOTTERS_URL")
	if baseURL == "" {
		baseURL = defaultPlaneSpottersURL
	}

	return &PlaneSpottersProvider{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 8 * time.Second},
	}
}

// GetProviderType returns the provider type identifier
func (p *PlaneSpottersProvider) GetProviderType() string {
	return "planespotters"
}

// PhotoByHex looks up a photo by 24-bit transponder address
func (p *PlaneSpottersProvider) PhotoByHex(ctx context.Context, icao24 string) (string, bool) {
	if icao24 == "" {
		return "", false
	}
	return p.fetchPhoto(ctx, "/photos/hex/"+strings.ToLower(icao24))
}

// PhotoByRegistration looks up a photo by tail number
func (p *PlaneSpottersProvider) PhotoByRegistration(ctx context.Context, registration string) (string, bool) {
	if registration == "" {
		return "", false
	}
	return p.fetchPhoto(ctx, "/photos/reg/"+strings.ToUpper(registration))
}

func (p *PlaneSpottersProvider) fetchPhoto(ctx context.Context, endpoint string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.BaseURL+endpoint, nil)
	if err != nil {
		return "", false
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		logging.Debug("PlaneSpotters fetch failed", "endpoint", endpoint, "error", err.Error())
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var result dtos.PlaneSpottersResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false
	}

	if len(result.Photos) == 0 {
		return "", false
	}

	photo := result.Photos[0]
	src := ""
	if photo.ThumbnailLarge != nil && photo.ThumbnailLarge.Src != "" {
		src = photo.ThumbnailLarge.Src
	} else if photo.Thumbnail != nil && photo.Thumbnail.Src != "" {
		src = photo.Thumbnail.Src
	}
	if src == "" {
		return "", false
	}

	// Mixed-content guard for the SPA
	if strings.HasPrefix(src, "http://") {
		src = "https://" + strings.TrimPrefix(src, "http://")
	}

	return src, true
}
