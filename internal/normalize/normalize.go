// Package normalize maps raw feed state vectors into canonical flight-state
// records. All functions are pure; malformed entries are dropped, not errored.
package normalize

import (
	"strings"

	"github.com/skyglass/flightmap/internal/opensky"
	"github.com/skyglass/flightmap/internal/types"
)

// State maps one raw state vector to a canonical flight state. The second
// return is false when the vector is inadmissible: both longitude and
// latitude must be present. Every other field has a default.
func State(sv opensky.StateVector) (types.FlightState, bool) {
	if sv.Longitude == nil || sv.Latitude == nil {
		return types.FlightState{}, false
	}

	flight := sv.FlightICAO
	if flight == "" {
		flight = types.UnknownICAO
	}

	airline := strings.TrimSpace(sv.AirlineICAO)
	if airline == "" {
		airline = types.UnknownICAO
	}

	var speed float64
	if sv.Velocity != nil {
		speed = *sv.Velocity
	}

	return types.FlightState{
		FlightICAO:  flight,
		AirlineICAO: airline,
		Latitude:    *sv.Latitude,
		Longitude:   *sv.Longitude,
		Speed:       speed,
	}, true
}

// Snapshot maps all admissible vectors of a snapshot, one record per
// admitted entry, preserving feed order. Duplicate flight ICAOs are kept;
// writing them in order makes the later entry win.
func Snapshot(snapshot *opensky.Snapshot) []types.FlightState {
	if snapshot == nil {
		return nil
	}

	states := make([]types.FlightState, 0, len(snapshot.States))
	for _, sv := range snapshot.States {
		if state, ok := State(sv); ok {
			states = append(states, state)
		}
	}
	return states
}
