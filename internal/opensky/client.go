package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FetchError wraps a failure to retrieve or decode a snapshot. The feed
// client never retries; recovery is the scheduler's concern.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("opensky %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Snapshot is one fetched batch of raw aircraft states
type Snapshot struct {
	Time   int64         `json:"time"`
	States []StateVector `json:"states"`
}

// StateVector is one aircraft state from the feed. The upstream encodes
// states as positional arrays; only the indices this system consumes are
// decoded: [0] flight id, [1] airline id, [5] longitude, [6] latitude,
// [9] velocity. Nullable numeric fields stay nil when absent.
type StateVector struct {
	FlightICAO  string
	AirlineICAO string
	Longitude   *float64
	Latitude    *float64
	Velocity    *float64
}

// UnmarshalJSON decodes a positional state array. Missing, null, or
// mistyped fields are treated as absent rather than failing the snapshot.
func (sv *StateVector) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("state vector is not an array: %w", err)
	}

	decodeField(fields, 0, &sv.FlightICAO)
	decodeField(fields, 1, &sv.AirlineICAO)
	decodeField(fields, 5, &sv.Longitude)
	decodeField(fields, 6, &sv.Latitude)
	decodeField(fields, 9, &sv.Velocity)
	return nil
}

func decodeField(fields []json.RawMessage, index int, target interface{}) {
	if index >= len(fields) {
		return
	}
	raw := fields[index]
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	// A mistyped field is left at its zero value
	_ = json.Unmarshal(raw, target)
}

// Client fetches aircraft-state snapshots from the OpenSky feed
type Client struct {
	url    string
	client *http.Client
}

// New creates a new feed client. The timeout bounds every fetch so a slow
// upstream cannot stall the ingestion scheduler.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchSnapshot performs one GET against the feed and decodes the response
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Op: "request", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "get", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Op: "get", Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, &FetchError{Op: "decode", Err: err}
	}

	return &snapshot, nil
}
