package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skyglass/flightmap/internal/types"
)

// stateTTL bounds how long a cached flight state outlives its last refresh
const stateTTL = time.Hour

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client caches the latest known state per flight
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

func stateKey(flightICAO string) string {
	return fmt.Sprintf("flight:%s", flightICAO)
}

// StoreFlightState caches the latest state of a flight
func (c *Client) StoreFlightState(ctx context.Context, state *types.FlightState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal flight state: %w", err)
	}
	return c.client.Set(ctx, stateKey(state.FlightICAO), data, stateTTL).Err()
}

// GetFlightState retrieves the cached state of a flight. A cache miss
// returns (nil, nil).
func (c *Client) GetFlightState(ctx context.Context, flightICAO string) (*types.FlightState, error) {
	data, err := c.client.Get(ctx, stateKey(flightICAO)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight state: %w", err)
	}

	var state types.FlightState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flight state: %w", err)
	}
	return &state, nil
}

// DeleteFlightState removes a cached flight state
func (c *Client) DeleteFlightState(ctx context.Context, flightICAO string) error {
	return c.client.Del(ctx, stateKey(flightICAO)).Err()
}
