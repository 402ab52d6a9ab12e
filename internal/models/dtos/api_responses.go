package dtos

import "time"

// Primary feed responses always come back as HTTP 200; failures are carried in
// the body so the SPA can render partial state instead of an error page.

type FlightsResponse struct {
	Flights        []Flight `json:"flights"`
	Error          string   `json:"error,omitempty"`
	UpstreamStatus int      `json:"upstreamStatus,omitempty"`
}

type PositionsResponse struct {
	Positions      []Position `json:"positions"`
	Error          string     `json:"error,omitempty"`
	UpstreamStatus int        `json:"upstreamStatus,omitempty"`
}

type AirportFlightsResponse struct {
	Arrivals   []AirportFlightEntry `json:"arrivals"`
	Departures []AirportFlightEntry `json:"departures"`
}

type AircraftTrackResponse struct {
	Track []TrackPoint `json:"track"`
}

type AircraftPhotoResponse struct {
	Photo *string `json:"photo"`
}

// APIResponse is the generic envelope used by the auth and favorites routes
type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}
