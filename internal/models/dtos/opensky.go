package dtos

// OpenSkyStatesResponse mirrors the JSON shape of /states/all. Each state is a
// fixed-order array; see services.NormalizePositions for the index mapping.
type OpenSkyStatesResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

// OpenSkyTrackResponse mirrors /tracks/all. Path entries are arrays of the
// form [time, latitude, longitude, baro_altitude, true_track, on_ground].
type OpenSkyTrackResponse struct {
	ICAO24    string          `json:"icao24"`
	StartTime float64         `json:"startTime"`
	EndTime   float64         `json:"endTime"`
	Path      [][]interface{} `json:"path"`
}

// OpenSkyAirportFlight is one row from /flights/arrival or /flights/departure
type OpenSkyAirportFlight struct {
	ICAO24              string  `json:"icao24"`
	FirstSeen           int64   `json:"firstSeen"`
	LastSeen            int64   `json:"lastSeen"`
	Callsign            *string `json:"callsign"`
	EstDepartureAirport *string `json:"estDepartureAirport"`
	EstArrivalAirport   *string `json:"estArrivalAirport"`
}

// OpenSkyAircraftMetadata is the subset of /metadata/aircraft fields the
// enrichment chain cares about
type OpenSkyAircraftMetadata struct {
	ICAO24       string `json:"icao24"`
	Registration string `json:"registration"`
	Model        string `json:"model"`
	Operator     string `json:"operator"`
	ImageURL     string `json:"image"`
}

// OpenSkyTokenResponse mirrors the OAuth2 token endpoint payload
type OpenSkyTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
