package dtos

// Position is one aircraft's live telemetry snapshot, built from an OpenSky
// state vector. Latitude/longitude are guaranteed present and in range; the
// normalizer drops anything else before it reaches a cache.
type Position struct {
	ID            string   `json:"id"`
	ICAO24        string   `json:"icao24"`
	Callsign      string   `json:"callsign"`
	OriginCountry string   `json:"originCountry"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Altitude      *float64 `json:"altitude"`
	OnGround      bool     `json:"onGround"`
	Velocity      *float64 `json:"velocity"`
	Heading       *float64 `json:"heading"`
	TimePosition  *int64   `json:"timePosition"`
	LastContact   int64    `json:"lastContact"`
	Category      int      `json:"category"`

	// Filled in by enrichment, empty until a match is found
	DepartureAirport string `json:"departureAirport,omitempty"`
	ArrivalAirport   string `json:"arrivalAirport,omitempty"`
	Airline          string `json:"airline,omitempty"`
	Status           string `json:"status,omitempty"`
}

// Flight is one commercial flight instance from AviationStack. A flight
// without live coordinates never enters the active set.
type Flight struct {
	ID                   string `json:"id"`
	FlightNumber         string `json:"flightNumber"`
	FlightKey            string `json:"flightKey"`
	ICAO24               string `json:"icao24,omitempty"`
	AircraftRegistration string `json:"aircraftRegistration,omitempty"`
	Airline              string `json:"airline,omitempty"`
	Status               string `json:"status,omitempty"`

	DepartureAirport string `json:"departureAirport"`
	DepartureIATA    string `json:"departureIata,omitempty"`
	DepartureICAO    string `json:"departureIcao,omitempty"`
	ArrivalAirport   string `json:"arrivalAirport"`
	ArrivalIATA      string `json:"arrivalIata,omitempty"`
	ArrivalICAO      string `json:"arrivalIcao,omitempty"`
	DepartureTime    string `json:"departureTime,omitempty"`
	ArrivalTime      string `json:"arrivalTime,omitempty"`

	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	Speed     *float64 `json:"speed"`

	ImageURL string `json:"imageUrl,omitempty"`
}

// TrackPoint is one point of a historical trajectory
type TrackPoint struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AltitudeMeters *float64 `json:"altitudeMeters"`
}

// AirportFlightEntry is a scheduled arrival or departure record
type AirportFlightEntry struct {
	ID               string `json:"id"`
	ICAO24           string `json:"icao24"`
	Callsign         string `json:"callsign"`
	DepartureAirport string `json:"departureAirport"`
	ArrivalAirport   string `json:"arrivalAirport"`
	DepartureTime    int64  `json:"departureTime"`
	ArrivalTime      int64  `json:"arrivalTime"`
}

// AirportRoute pairs the known departure and arrival airports for an aircraft,
// keyed by icao24 in the recent-flights airport map
type AirportRoute struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}
