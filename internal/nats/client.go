package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/skyglass/flightmap/internal/types"
)

const (
	// SubjectFlightStates carries every refreshed flight state
	SubjectFlightStates = "flights.states"

	streamName = "FLIGHT_STATES"
)

// Client represents a NATS client
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// Create stream if it doesn't exist. One hour of retained states is
	// plenty for a feed refreshed every 15 seconds.
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{SubjectFlightStates},
		Storage:  nats.FileStorage,
		MaxAge:   time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishFlightState publishes a refreshed flight state
func (c *Client) PublishFlightState(state *types.FlightState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal flight state: %w", err)
	}

	if _, err := c.js.Publish(SubjectFlightStates, data); err != nil {
		return fmt.Errorf("failed to publish flight state: %w", err)
	}
	return nil
}

// SubscribeFlightStates subscribes to refreshed flight states
func (c *Client) SubscribeFlightStates(handler func(*types.FlightState)) error {
	_, err := c.js.Subscribe(SubjectFlightStates, func(msg *nats.Msg) {
		var state types.FlightState
		if err := json.Unmarshal(msg.Data, &state); err != nil {
			fmt.Printf("Error unmarshaling flight state: %v\n", err)
			return
		}
		handler(&state)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
