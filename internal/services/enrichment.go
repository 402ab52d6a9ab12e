package services

import (
	"context"
	"strings"

	"skytracker/backend/internal/constants"
	"skytracker/backend/internal/logging"
	"skytracker/backend/internal/models/dtos"
)

// enrichPositions fills airport and airline fields onto freshly normalized
// positions, first from the recent-flights airport map, then by matching the
// normalized callsign against the flight cache. Unmatched positions pass
// through unchanged.
func (svc *FlightsService) enrichPositions(positions []dtos.Position) {
	svc.mu.RLock()
	routes := svc.airportMap
	flightsByKey := make(map[string]dtos.Flight, len(svc.flights))
	for _, f := range svc.flights {
		if f.FlightKey != "" {
			flightsByKey[f.FlightKey] = f
		}
	}
	svc.mu.RUnlock()

	for i := range positions {
		pos := &positions[i]

		if route, ok := routes[pos.ICAO24]; ok {
			if pos.DepartureAirport == "" {
				pos.DepartureAirport = route.Departure
			}
			if pos.ArrivalAirport == "" {
				pos.ArrivalAirport = route.Arrival
			}
		}

		key := FlightKey(pos.Callsign)
		if key == "" {
			continue
		}
		flight, ok := flightsByKey[key]
		if !ok {
			continue
		}

		if flight.DepartureAirport != "" {
			pos.DepartureAirport = flight.DepartureAirport
		}
		if flight.ArrivalAirport != "" {
			pos.ArrivalAirport = flight.ArrivalAirport
		}
		pos.Airline = flight.Airline
		pos.Status = flight.Status
	}
}

// enrichFlightPhotos resolves a photo URL per flight, in priority order:
// known or discoverable icao24, OpenSky metadata by icao24, PlaneSpotters by
// hex, then the registration path (OpenSky metadata by registration, learning
// the icao24 as a side effect, then PlaneSpotters by registration). The first
// hit short-circuits; flights already carrying a photo are skipped entirely.
// One flight's failures never abort the batch.
func (svc *FlightsService) enrichFlightPhotos(ctx context.Context, flights []dtos.Flight) {
	svc.mu.RLock()
	icaoByCallsign := make(map[string]string, len(svc.positions))
	for _, pos := range svc.positions {
		if key := FlightKey(pos.Callsign); key != "" {
			icaoByCallsign[key] = pos.ICAO24
		}
	}
	svc.mu.RUnlock()

	for i := range flights {
		flight := &flights[i]
		if flight.ImageURL != "" {
			continue
		}

		if flight.ICAO24 == "" {
			if icao24, ok := icaoByCallsign[flight.FlightKey]; ok {
				flight.ICAO24 = icao24
			}
		}

		if flight.ICAO24 != "" {
			if url := svc.photoByICAO(ctx, flight.ICAO24); url != "" {
				flight.ImageURL = url
				continue
			}
		}

		if flight.AircraftRegistration != "" {
			flight.ImageURL = svc.photoByRegistration(ctx, flight)
		}
	}
}

// photoByICAO tries OpenSky metadata, then PlaneSpotters, for one hex address
func (svc *FlightsService) photoByICAO(ctx context.Context, icao24 string) string {
	if meta, _, err := svc.openSky.FetchMetadataByICAO(ctx, icao24); err == nil && meta.ImageURL != "" {
		return meta.ImageURL
	}
	if url, ok := svc.photos.PhotoByHex(ctx, icao24); ok {
		return url
	}
	return ""
}

// photoByRegistration resolves a photo through the tail-number path, memoizing
// the outcome per registration so repeat lookups for a known airframe cost
// nothing. A learned icao24 is saved onto the flight but does not restart the
// icao24 chain.
func (svc *FlightsService) photoByRegistration(ctx context.Context, flight *dtos.Flight) string {
	reg := strings.ToUpper(flight.AircraftRegistration)
	cacheKey := constants.CacheKeyRegistration + reg

	if hit, found := svc.regPhotos.Get(cacheKey); found {
		return hit.(string)
	}

	url := ""
	if meta, _, err := svc.openSky.FetchMetadataByRegistration(ctx, reg); err == nil {
		if flight.ICAO24 == "" && meta.ICAO24 != "" {
			flight.ICAO24 = strings.ToLower(meta.ICAO24)
		}
		url = meta.ImageURL
	}

	if url == "" {
		if found, ok := svc.photos.PhotoByRegistration(ctx, reg); ok {
			url = found
		}
	}

	if url == "" {
		logging.Debug("No photo found for registration", "registration", reg)
	}

	// Cache misses too, so unphotographed airframes are not re-queried
	svc.regPhotos.SetDefault(cacheKey, url)
	return url
}
