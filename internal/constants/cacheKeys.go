package constants

import "time"

type APIStatus string

const (
	APIStatusSuccess APIStatus = "success"
	APIStatusError   APIStatus = "error"
)

// Cache key prefixes shared between the in-memory and Redis cache services
const (
	CacheKeyAirportFlights = "AIRPORT_FLIGHTS_"
	CacheKeyRegistration   = "REG_PHOTO_"
	CacheKeyOpenSkyToken   = "OPENSKY_TOKEN"
)

// Refresh cadences for the ingestion service
const (
	DefaultFlightsTTL       = 5 * time.Second
	DefaultAirportFlightTTL = 2 * time.Minute
	AirportMapRefreshEvery  = 60 * time.Second

	// Arrivals/departures are fetched over a trailing window this wide
	AirportScheduleWindow = 2 * time.Hour
)
