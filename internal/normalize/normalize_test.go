package normalize

import (
	"testing"

	"github.com/skyglass/flightmap/internal/opensky"
	"github.com/skyglass/flightmap/internal/types"
)

func f64(v float64) *float64 {
	return &v
}

func TestState(t *testing.T) {
	tests := []struct {
		name      string
		sv        opensky.StateVector
		wantOK    bool
		wantState types.FlightState
	}{
		{
			name: "complete vector",
			sv: opensky.StateVector{
				FlightICAO:  "3c6444",
				AirlineICAO: "BAW",
				Longitude:   f64(-0.4543),
				Latitude:    f64(51.4700),
				Velocity:    f64(210.5),
			},
			wantOK: true,
			wantState: types.FlightState{
				FlightICAO:  "3c6444",
				AirlineICAO: "BAW",
				Latitude:    51.4700,
				Longitude:   -0.4543,
				Speed:       210.5,
			},
		},
		{
			name: "missing longitude is dropped",
			sv: opensky.StateVector{
				FlightICAO:  "3c6444",
				AirlineICAO: "BAW",
				Latitude:    f64(51.4700),
				Velocity:    f64(210.5),
			},
			wantOK: false,
		},
		{
			name: "missing latitude is dropped",
			sv: opensky.StateVector{
				FlightICAO:  "3c6444",
				AirlineICAO: "BAW",
				Longitude:   f64(-0.4543),
				Velocity:    f64(210.5),
			},
			wantOK: false,
		},
		{
			name:   "missing both coordinates is dropped",
			sv:     opensky.StateVector{FlightICAO: "3c6444", AirlineICAO: "BAW"},
			wantOK: false,
		},
		{
			name: "airline id is trimmed",
			sv: opensky.StateVector{
				FlightICAO:  "3c6444",
				AirlineICAO: " BAW ",
				Longitude:   f64(1.0),
				Latitude:    f64(2.0),
			},
			wantOK: true,
			wantState: types.FlightState{
				FlightICAO:  "3c6444",
				AirlineICAO: "BAW",
				Latitude:    2.0,
				Longitude:   1.0,
			},
		},
		{
			name: "whitespace-only airline becomes UNKNOWN",
			sv: opensky.StateVector{
				FlightICAO:  "3c6444",
				AirlineICAO: "   ",
				Longitude:   f64(1.0),
				Latitude:    f64(2.0),
			},
			wantOK: true,
			wantState: types.FlightState{
				FlightICAO:  "3c6444",
				AirlineICAO: types.UnknownICAO,
				Latitude:    2.0,
				Longitude:   1.0,
			},
		},
		{
			name: "missing flight id and velocity get defaults",
			sv: opensky.StateVector{
				AirlineICAO: " DLH ",
				Longitude:   f64(13.2),
				Latitude:    f64(52.5),
				Velocity:    f64(450),
			},
			wantOK: true,
			wantState: types.FlightState{
				FlightICAO:  types.UnknownICAO,
				AirlineICAO: "DLH",
				Latitude:    52.5,
				Longitude:   13.2,
				Speed:       450,
			},
		},
		{
			name: "missing velocity defaults to zero",
			sv: opensky.StateVector{
				FlightICAO:  "3c6444",
				AirlineICAO: "DLH",
				Longitude:   f64(13.2),
				Latitude:    f64(52.5),
			},
			wantOK: true,
			wantState: types.FlightState{
				FlightICAO:  "3c6444",
				AirlineICAO: "DLH",
				Latitude:    52.5,
				Longitude:   13.2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, ok := State(tt.sv)
			if ok != tt.wantOK {
				t.Fatalf("State() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if state != tt.wantState {
				t.Errorf("State() = %+v, want %+v", state, tt.wantState)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	snapshot := &opensky.Snapshot{
		Time: 1700000000,
		States: []opensky.StateVector{
			{FlightICAO: "aaa111", AirlineICAO: "BAW", Longitude: f64(1), Latitude: f64(2), Velocity: f64(100)},
			{FlightICAO: "bbb222", AirlineICAO: "DLH"}, // no coordinates, dropped
			{FlightICAO: "ccc333", AirlineICAO: "AFR", Longitude: f64(3), Latitude: f64(4)},
		},
	}

	states := Snapshot(snapshot)
	if len(states) != 2 {
		t.Fatalf("Snapshot() returned %d states, want 2", len(states))
	}
	if states[0].FlightICAO != "aaa111" || states[1].FlightICAO != "ccc333" {
		t.Errorf("Snapshot() did not preserve feed order: %+v", states)
	}
}

func TestSnapshot_KeepsDuplicateFlights(t *testing.T) {
	// Duplicate entries stay in feed order so the later write wins downstream
	snapshot := &opensky.Snapshot{
		States: []opensky.StateVector{
			{FlightICAO: "aaa111", AirlineICAO: "BAW", Longitude: f64(1), Latitude: f64(2)},
			{FlightICAO: "aaa111", AirlineICAO: "BAW", Longitude: f64(5), Latitude: f64(6)},
		},
	}

	states := Snapshot(snapshot)
	if len(states) != 2 {
		t.Fatalf("Snapshot() returned %d states, want 2", len(states))
	}
	if states[1].Longitude != 5 || states[1].Latitude != 6 {
		t.Errorf("later duplicate = %+v, want longitude 5 latitude 6", states[1])
	}
}

func TestSnapshot_Nil(t *testing.T) {
	if states := Snapshot(nil); states != nil {
		t.Errorf("Snapshot(nil) = %v, want nil", states)
	}
}
