package dtos

// AviationStackResponse is the envelope returned by /v1/flights
type AviationStackResponse struct {
	Data []AviationStackFlight `json:"data"`
}

// AviationStackFlight is one nested flight object from AviationStack
type AviationStackFlight struct {
	FlightDate   string                 `json:"flight_date"`
	FlightStatus string                 `json:"flight_status"`
	Departure    AviationStackEndpoint  `json:"departure"`
	Arrival      AviationStackEndpoint  `json:"arrival"`
	Airline      AviationStackAirline   `json:"airline"`
	Flight       AviationStackFlightID  `json:"flight"`
	Aircraft     *AviationStackAircraft `json:"aircraft"`
	Live         *AviationStackLive     `json:"live"`
}

type AviationStackEndpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	ICAO      string `json:"icao"`
	Scheduled string `json:"scheduled"`
	Estimated string `json:"estimated"`
	Actual    string `json:"actual"`
	Timezone  string `json:"timezone"`
}

type AviationStackAirline struct {
	Name string `json:"name"`
	IATA string `json:"iata"`
	ICAO string `json:"icao"`
}

type AviationStackFlightID struct {
	Number string `json:"number"`
	IATA   string `json:"iata"`
	ICAO   string `json:"icao"`
}

type AviationStackAircraft struct {
	Registration string `json:"registration"`
	IATA         string `json:"iata"`
	ICAO         string `json:"icao"`
	ICAO24       string `json:"icao24"`
}

type AviationStackLive struct {
	Updated         string   `json:"updated"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Altitude        *float64 `json:"altitude"`
	Direction       *float64 `json:"direction"`
	SpeedHorizontal *float64 `json:"speed_horizontal"`
	SpeedVertical   *float64 `json:"speed_vertical"`
	IsGround        bool     `json:"is_ground"`
}
