package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawState builds a positional OpenSky state array of the upstream arity.
// Pass nil for absent fields. Indices consumed by the pipeline: 0=flight id,
// 1=airline id, 5=longitude, 6=latitude, 9=velocity.
func RawState(flight, airline, longitude, latitude, velocity interface{}) []interface{} {
	state := make([]interface{}, 17)
	state[0] = flight
	state[1] = airline
	state[5] = longitude
	state[6] = latitude
	state[9] = velocity
	return state
}

// SnapshotJSON encodes raw states as an OpenSky states/all response body
func SnapshotJSON(states ...[]interface{}) []byte {
	body := map[string]interface{}{
		"time":   time.Now().Unix(),
		"states": states,
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal snapshot: %v", err))
	}
	return data
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
