package redis

import (
	"context"
	"testing"
	"time"

	rediscontainer "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/skyglass/flightmap/internal/types"
)

func setupRedis(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	container, err := rediscontainer.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client, err := New(endpoint)
	if err != nil {
		t.Fatalf("Failed to create Redis client: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("Failed to close Redis client: %v", err)
		}
	})

	return client
}

func TestIntegration_FlightStateRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	client := setupRedis(t)
	ctx := context.Background()

	state := &types.FlightState{
		FlightICAO:  "3c6444",
		AirlineICAO: "DLH",
		Latitude:    52.5,
		Longitude:   13.2,
		Speed:       450,
		LastUpdate:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := client.StoreFlightState(ctx, state); err != nil {
		t.Fatalf("StoreFlightState() failed: %v", err)
	}

	got, err := client.GetFlightState(ctx, "3c6444")
	if err != nil {
		t.Fatalf("GetFlightState() failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetFlightState() returned nil for stored flight")
	}
	if got.FlightICAO != state.FlightICAO || got.Latitude != state.Latitude {
		t.Errorf("GetFlightState() = %+v, want %+v", got, state)
	}

	if missing, err := client.GetFlightState(ctx, "zzz999"); err != nil || missing != nil {
		t.Errorf("GetFlightState(missing) = %+v, %v; want nil, nil", missing, err)
	}

	if err := client.DeleteFlightState(ctx, "3c6444"); err != nil {
		t.Fatalf("DeleteFlightState() failed: %v", err)
	}
	if gone, err := client.GetFlightState(ctx, "3c6444"); err != nil || gone != nil {
		t.Errorf("flight state survived delete: %+v, %v", gone, err)
	}
}
