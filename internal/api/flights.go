package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"skytracker/backend/internal/models/dtos"
	"skytracker/backend/internal/services"
)

// GetFlightsHandler handles GET /api/flights
func GetFlightsHandler(fltSvc *services.FlightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flights := fltSvc.GetFlights(r.Context())
		if flights == nil {
			flights = []dtos.Flight{}
		}

		respondJSON(w, dtos.FlightsResponse{Flights: flights})
	}
}

// GetPositionsHandler handles GET /api/positions
func GetPositionsHandler(fltSvc *services.FlightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions := fltSvc.GetPositions(r.Context())
		if positions == nil {
			positions = []dtos.Position{}
		}

		respondJSON(w, dtos.PositionsResponse{Positions: positions})
	}
}

// AirportFlightsHandler handles GET /api/flights/airport/{code}
func AirportFlightsHandler(fltSvc *services.FlightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		respondJSON(w, fltSvc.GetFlightsForAirport(r.Context(), code))
	}
}

// AircraftTrackHandler handles GET /api/tracks/{icao24}?time=
func AircraftTrackHandler(fltSvc *services.FlightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		icao24 := strings.ToLower(chi.URLParam(r, "icao24"))

		var timeSeconds int64
		if qs := r.URL.Query().Get("time"); qs != "" {
			if parsed, err := strconv.ParseInt(qs, 10, 64); err == nil {
				timeSeconds = parsed
			}
		}

		track := fltSvc.GetTrackForAircraft(r.Context(), icao24, timeSeconds)
		respondJSON(w, dtos.AircraftTrackResponse{Track: track})
	}
}

// AircraftPhotoHandler handles GET /api/aircraft/photo/{icao24}. A miss still
// answers 200 with a null photo so the SPA can cache the negative.
func AircraftPhotoHandler(fltSvc *services.FlightsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		icao24 := strings.ToLower(chi.URLParam(r, "icao24"))

		photo, found := fltSvc.GetAircraftPhoto(r.Context(), icao24)
		resp := dtos.AircraftPhotoResponse{}
		if found {
			resp.Photo = &photo
		}
		respondJSON(w, resp)
	}
}
