package nats

import (
	"testing"
)

func TestNew_UnreachableServer(t *testing.T) {
	client, err := New("nats://127.0.0.1:1")
	if err == nil {
		client.Close()
		t.Fatal("New() expected connection error but got none")
	}
}

func TestSubjects(t *testing.T) {
	if SubjectFlightStates != "flights.states" {
		t.Errorf("SubjectFlightStates = %q, want flights.states", SubjectFlightStates)
	}
}
