package types

import (
	"time"
)

// UnknownICAO is the sentinel used when the upstream feed carries no flight
// or airline identifier. Flights referencing it do not require an airline row.
const UnknownICAO = "UNKNOWN"

// Airline represents a known airline, keyed by its ICAO code
type Airline struct {
	ICAO string `json:"icao"`
	Name string `json:"name"`
}

// FlightState represents the latest known state of one flight
type FlightState struct {
	FlightICAO  string    `json:"flight_icao"`
	AirlineICAO string    `json:"airline_icao"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Speed       float64   `json:"speed"`
	LastUpdate  time.Time `json:"last_update"`
}
