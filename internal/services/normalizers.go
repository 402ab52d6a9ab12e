package services

import (
	"fmt"
	"strings"

	"skytracker/backend/internal/models/dtos"
)

// OpenSky state vectors are fixed-order arrays. Index-to-field mapping,
// validated once per parse:
//
//	0  icao24            6  latitude
//	1  callsign          7  baro altitude (m)
//	2  origin country    8  on ground
//	3  time position     9  velocity (m/s)
//	4  last contact     10  true track (deg)
//	5  longitude        17  category
const (
	svICAO24 = iota
	svCallsign
	svOriginCountry
	svTimePosition
	svLastContact
	svLongitude
	svLatitude
	svBaroAltitude
	svOnGround
	svVelocity
	svHeading

	svCategory = 17
)

func svString(state []interface{}, idx int) string {
	if idx >= len(state) {
		return ""
	}
	if s, ok := state[idx].(string); ok {
		return s
	}
	return ""
}

func svFloat(state []interface{}, idx int) *float64 {
	if idx >= len(state) {
		return nil
	}
	if f, ok := state[idx].(float64); ok {
		return &f
	}
	return nil
}

func svBool(state []interface{}, idx int) bool {
	if idx >= len(state) {
		return false
	}
	if b, ok := state[idx].(bool); ok {
		return b
	}
	return false
}

// NormalizePositions maps raw OpenSky state vectors to Position records.
// Entries without a usable latitude/longitude, or with coordinates outside
// [-90,90]/[-180,180], are dropped and never reach a cache.
func NormalizePositions(raw *dtos.OpenSkyStatesResponse) []dtos.Position {
	if raw == nil || len(raw.States) == 0 {
		return nil
	}

	positions := make([]dtos.Position, 0, len(raw.States))
	for _, state := range raw.States {
		lat := svFloat(state, svLatitude)
		lon := svFloat(state, svLongitude)
		if lat == nil || lon == nil {
			continue
		}
		if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
			continue
		}

		icao24 := svString(state, svICAO24)
		pos := dtos.Position{
			ID:            icao24,
			ICAO24:        icao24,
			Callsign:      strings.TrimSpace(svString(state, svCallsign)),
			OriginCountry: svString(state, svOriginCountry),
			Latitude:      *lat,
			Longitude:     *lon,
			Altitude:      svFloat(state, svBaroAltitude),
			OnGround:      svBool(state, svOnGround),
			Velocity:      svFloat(state, svVelocity),
			Heading:       svFloat(state, svHeading),
		}

		if t := svFloat(state, svTimePosition); t != nil {
			ts := int64(*t)
			pos.TimePosition = &ts
		}
		if t := svFloat(state, svLastContact); t != nil {
			pos.LastContact = int64(*t)
		}
		if c := svFloat(state, svCategory); c != nil {
			pos.Category = int(*c)
		}

		positions = append(positions, pos)
	}
	return positions
}

// FlightKey normalizes a flight code or callsign for matching: whitespace
// stripped, uppercased. "afr 66" and "AFR66  " both key to "AFR66".
func FlightKey(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// pickTime selects a display time by priority: actual > estimated > scheduled
func pickTime(ep dtos.AviationStackEndpoint) string {
	switch {
	case ep.Actual != "":
		return ep.Actual
	case ep.Estimated != "":
		return ep.Estimated
	default:
		return ep.Scheduled
	}
}

// NormalizeFlights maps raw AviationStack flight objects to Flight records.
// Flights without live coordinates are excluded from the active set.
func NormalizeFlights(raw []dtos.AviationStackFlight) []dtos.Flight {
	if len(raw) == 0 {
		return nil
	}

	flights := make([]dtos.Flight, 0, len(raw))
	for index, item := range raw {
		if item.Live == nil || item.Live.Latitude == nil || item.Live.Longitude == nil {
			continue
		}

		callsign := strings.TrimSpace(item.Flight.IATA)
		if callsign == "" {
			callsign = strings.TrimSpace(item.Flight.ICAO)
		}

		idBase := callsign
		if idBase == "" {
			idBase = "flight"
		}

		flight := dtos.Flight{
			ID:               fmt.Sprintf("%s-%s-%d", idBase, item.FlightDate, index),
			FlightNumber:     callsign,
			FlightKey:        FlightKey(callsign),
			Airline:          item.Airline.Name,
			Status:           item.FlightStatus,
			DepartureAirport: item.Departure.Airport,
			DepartureIATA:    item.Departure.IATA,
			DepartureICAO:    item.Departure.ICAO,
			ArrivalAirport:   item.Arrival.Airport,
			ArrivalIATA:      item.Arrival.IATA,
			ArrivalICAO:      item.Arrival.ICAO,
			DepartureTime:    pickTime(item.Departure),
			ArrivalTime:      pickTime(item.Arrival),
			Latitude:         *item.Live.Latitude,
			Longitude:        *item.Live.Longitude,
			Altitude:         item.Live.Altitude,
			Speed:            item.Live.SpeedHorizontal,
		}

		if item.Aircraft != nil {
			flight.ICAO24 = strings.ToLower(item.Aircraft.ICAO24)
			flight.AircraftRegistration = item.Aircraft.Registration
		}

		flights = append(flights, flight)
	}
	return flights
}

// MapAirportFlight maps an OpenSky arrival/departure row to a schedule entry.
// The id embeds the seen timestamp and direction so entries stay
// distinguishable across overlapping query windows.
func MapAirportFlight(entry dtos.OpenSkyAirportFlight, direction string) dtos.AirportFlightEntry {
	seen := entry.FirstSeen
	if direction == "arrival" {
		seen = entry.LastSeen
	}

	callsign := ""
	if entry.Callsign != nil {
		callsign = strings.TrimSpace(*entry.Callsign)
	}

	departure := ""
	if entry.EstDepartureAirport != nil {
		departure = *entry.EstDepartureAirport
	}
	arrival := ""
	if entry.EstArrivalAirport != nil {
		arrival = *entry.EstArrivalAirport
	}

	return dtos.AirportFlightEntry{
		ID:               fmt.Sprintf("%s-%d-%s", entry.ICAO24, seen, direction),
		ICAO24:           entry.ICAO24,
		Callsign:         callsign,
		DepartureAirport: departure,
		ArrivalAirport:   arrival,
		DepartureTime:    entry.FirstSeen,
		ArrivalTime:      entry.LastSeen,
	}
}
