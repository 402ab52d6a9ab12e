package services

import (
	"testing"

	"skytracker/backend/internal/models/dtos"
)

func floatPtr(f float64) *float64 { return &f }

func TestNormalizePositions_MapsStateVector(t *testing.T) {
	raw := &dtos.OpenSkyStatesResponse{
		Time: 1700000000,
		States: [][]interface{}{
			{"abc123", "AFR66  ", "France", float64(1699999990), float64(1700000000), 2.55, 49.01, float64(10000), false, float64(230), float64(90), nil, nil, nil, nil, nil, nil, float64(3)},
		},
	}

	positions := NormalizePositions(raw)
	if len(positions) != 1 {
		t.Fatalf("Expected 1 position, got %d", len(positions))
	}

	pos := positions[0]
	if pos.ICAO24 != "abc123" {
		t.Errorf("Expected icao24 abc123, got %s", pos.ICAO24)
	}
	if pos.Callsign != "AFR66" {
		t.Errorf("Expected trimmed callsign AFR66, got %q", pos.Callsign)
	}
	if pos.Latitude != 49.01 || pos.Longitude != 2.55 {
		t.Errorf("Expected lat/lon 49.01/2.55, got %v/%v", pos.Latitude, pos.Longitude)
	}
	if pos.Altitude == nil || *pos.Altitude != 10000 {
		t.Errorf("Expected altitude 10000, got %v", pos.Altitude)
	}
	if pos.OnGround {
		t.Error("Expected onGround false")
	}
	if pos.Velocity == nil || *pos.Velocity != 230 {
		t.Errorf("Expected velocity 230, got %v", pos.Velocity)
	}
	if pos.Category != 3 {
		t.Errorf("Expected category 3, got %d", pos.Category)
	}
	if pos.LastContact != 1700000000 {
		t.Errorf("Expected lastContact 1700000000, got %d", pos.LastContact)
	}
}

func TestNormalizePositions_DropsUnusableCoordinates(t *testing.T) {
	raw := &dtos.OpenSkyStatesResponse{
		States: [][]interface{}{
			// missing latitude
			{"aaa111", "ONE", "US", nil, float64(1), 2.0, nil, nil, false, nil, nil},
			// latitude out of range
			{"bbb222", "TWO", "US", nil, float64(1), 2.0, 95.0, nil, false, nil, nil},
			// longitude out of range
			{"ccc333", "THREE", "US", nil, float64(1), -181.0, 45.0, nil, false, nil, nil},
			// valid
			{"ddd444", "FOUR", "US", nil, float64(1), -73.7, 40.6, nil, false, nil, nil},
		},
	}

	positions := NormalizePositions(raw)
	if len(positions) != 1 {
		t.Fatalf("Expected only the valid position, got %d", len(positions))
	}
	if positions[0].ICAO24 != "ddd444" {
		t.Errorf("Expected ddd444 to survive, got %s", positions[0].ICAO24)
	}
}

func TestNormalizePositions_NilResponse(t *testing.T) {
	if got := NormalizePositions(nil); got != nil {
		t.Errorf("Expected nil for nil response, got %v", got)
	}
}

func TestFlightKey(t *testing.T) {
	cases := map[string]string{
		"AFR66  ":  "AFR66",
		"afr 66":   "AFR66",
		" ba 117 ": "BA117",
		"":         "",
	}
	for input, want := range cases {
		if got := FlightKey(input); got != want {
			t.Errorf("FlightKey(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeFlights_DropsFlightsWithoutLiveCoordinates(t *testing.T) {
	raw := []dtos.AviationStackFlight{
		{
			FlightDate: "2026-08-30",
			Flight:     dtos.AviationStackFlightID{IATA: "AF66"},
		},
		{
			FlightDate: "2026-08-30",
			Flight:     dtos.AviationStackFlightID{IATA: "BA117"},
			Live:       &dtos.AviationStackLive{Latitude: floatPtr(51.5), Longitude: floatPtr(-0.1)},
		},
	}

	flights := NormalizeFlights(raw)
	if len(flights) != 1 {
		t.Fatalf("Expected 1 flight with live coordinates, got %d", len(flights))
	}
	if flights[0].FlightNumber != "BA117" {
		t.Errorf("Expected BA117, got %s", flights[0].FlightNumber)
	}
}

func TestNormalizeFlights_FieldsAndID(t *testing.T) {
	raw := []dtos.AviationStackFlight{
		{
			FlightDate:   "2026-08-30",
			FlightStatus: "active",
			Departure:    dtos.AviationStackEndpoint{Airport: "Charles de Gaulle", IATA: "CDG", ICAO: "LFPG", Scheduled: "2026-08-30T10:00:00+00:00", Actual: "2026-08-30T10:12:00+00:00"},
			Arrival:      dtos.AviationStackEndpoint{Airport: "JFK", IATA: "JFK", ICAO: "KJFK", Scheduled: "2026-08-30T13:00:00+00:00", Estimated: "2026-08-30T13:05:00+00:00"},
			Airline:      dtos.AviationStackAirline{Name: "Air France"},
			Flight:       dtos.AviationStackFlightID{IATA: "AF66", ICAO: "AFR66"},
			Aircraft:     &dtos.AviationStackAircraft{Registration: "F-GSPS", ICAO24: "ABC123"},
			Live:         &dtos.AviationStackLive{Latitude: floatPtr(49.0), Longitude: floatPtr(2.5), Altitude: floatPtr(11000), SpeedHorizontal: floatPtr(870)},
		},
	}

	flights := NormalizeFlights(raw)
	if len(flights) != 1 {
		t.Fatalf("Expected 1 flight, got %d", len(flights))
	}

	f := flights[0]
	if f.ID != "AF66-2026-08-30-0" {
		t.Errorf("Expected id AF66-2026-08-30-0, got %s", f.ID)
	}
	if f.FlightKey != "AF66" {
		t.Errorf("Expected flight key AF66, got %s", f.FlightKey)
	}
	if f.ICAO24 != "abc123" {
		t.Errorf("Expected lowercased icao24 abc123, got %s", f.ICAO24)
	}
	if f.DepartureTime != "2026-08-30T10:12:00+00:00" {
		t.Errorf("Expected actual departure time to win, got %s", f.DepartureTime)
	}
	if f.ArrivalTime != "2026-08-30T13:05:00+00:00" {
		t.Errorf("Expected estimated arrival time to win over scheduled, got %s", f.ArrivalTime)
	}
	if f.Airline != "Air France" || f.DepartureIATA != "CDG" || f.ArrivalICAO != "KJFK" {
		t.Errorf("Unexpected route fields: %+v", f)
	}
}

func TestMapAirportFlight_DirectionPicksSeenTime(t *testing.T) {
	callsign := "DLH400 "
	dep := "EDDF"
	arr := "KJFK"
	entry := dtos.OpenSkyAirportFlight{
		ICAO24:              "3c6444",
		FirstSeen:           1700000000,
		LastSeen:            1700030000,
		Callsign:            &callsign,
		EstDepartureAirport: &dep,
		EstArrivalAirport:   &arr,
	}

	arrival := MapAirportFlight(entry, "arrival")
	if arrival.ID != "3c6444-1700030000-arrival" {
		t.Errorf("Expected arrival id keyed on lastSeen, got %s", arrival.ID)
	}
	if arrival.Callsign != "DLH400" {
		t.Errorf("Expected trimmed callsign, got %q", arrival.Callsign)
	}

	departure := MapAirportFlight(entry, "departure")
	if departure.ID != "3c6444-1700000000-departure" {
		t.Errorf("Expected departure id keyed on firstSeen, got %s", departure.ID)
	}
	if departure.DepartureAirport != "EDDF" || departure.ArrivalAirport != "KJFK" {
		t.Errorf("Unexpected airports: %+v", departure)
	}
}
