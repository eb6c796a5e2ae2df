package db

import (
	"database/sql"
	"errors"
	"time"

	// Postgres driver
	_ "github.com/lib/pq"

	"github.com/skyglass/flightmap/internal/types"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Client owns all reads and writes against the flight store
type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// EnsureAirline inserts the airline if it is not known yet. The display name
// is the ICAO code itself and is never rewritten once the row exists, so the
// call is idempotent.
func (c *Client) EnsureAirline(icao string) error {
	query := `
		INSERT INTO airlines (icao, name)
		VALUES ($1, $1)
		ON CONFLICT (icao) DO NOTHING
	`
	_, err := c.db.Exec(query, icao)
	return err
}

// UpsertFlightState inserts the flight or refreshes its position in place.
// The airline reference is fixed at first insert; later upserts only move
// the aircraft and advance last_update.
func (c *Client) UpsertFlightState(state *types.FlightState) error {
	query := `
		INSERT INTO live_flights (flight_icao, airline_icao, latitude, longitude, speed, last_update)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (flight_icao)
		DO UPDATE SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			speed = EXCLUDED.speed, last_update = NOW()
	`
	_, err := c.db.Exec(query,
		state.FlightICAO, state.AirlineICAO, state.Latitude, state.Longitude, state.Speed,
	)
	return err
}

// ListAirlines retrieves all known airlines
func (c *Client) ListAirlines() ([]*types.Airline, error) {
	rows, err := c.db.Query(`SELECT icao, name FROM airlines`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var airlines []*types.Airline
	for rows.Next() {
		var a types.Airline
		if err := rows.Scan(&a.ICAO, &a.Name); err != nil {
			return nil, err
		}
		airlines = append(airlines, &a)
	}
	return airlines, rows.Err()
}

// ListFlights retrieves all live flights, restricted to one airline when the
// filter is non-empty
func (c *Client) ListFlights(airline string) ([]*types.FlightState, error) {
	query := `
		SELECT flight_icao, airline_icao, latitude, longitude, speed, last_update
		FROM live_flights
	`
	var args []interface{}
	if airline != "" {
		query += ` WHERE airline_icao = $1`
		args = append(args, airline)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []*types.FlightState
	for rows.Next() {
		var f types.FlightState
		if err := rows.Scan(
			&f.FlightICAO, &f.AirlineICAO, &f.Latitude, &f.Longitude, &f.Speed, &f.LastUpdate,
		); err != nil {
			return nil, err
		}
		flights = append(flights, &f)
	}
	return flights, rows.Err()
}

// GetFlightState retrieves a single flight by its ICAO identifier
func (c *Client) GetFlightState(flightICAO string) (*types.FlightState, error) {
	query := `
		SELECT flight_icao, airline_icao, latitude, longitude, speed, last_update
		FROM live_flights
		WHERE flight_icao = $1
	`
	var f types.FlightState
	err := c.db.QueryRow(query, flightICAO).Scan(
		&f.FlightICAO, &f.AirlineICAO, &f.Latitude, &f.Longitude, &f.Speed, &f.LastUpdate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// IngestionStats is one persisted snapshot of the ingestion counters
type IngestionStats struct {
	Time             time.Time
	Cycles           uint64
	FailedFetches    uint64
	FetchedStates    uint64
	AdmittedStates   uint64
	StoredFlights    uint64
	WriteFailures    uint64
	LastCycleTime    time.Time
	ProcessingTimeMs int64
}

// StoreIngestionStats persists one snapshot of ingestion statistics
func (c *Client) StoreIngestionStats(stats *IngestionStats) error {
	query := `
		INSERT INTO ingestion_stats (
			time, cycles, failed_fetches, fetched_states, admitted_states,
			stored_flights, write_failures, last_cycle_time, processing_time_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	// database/sql has no uint64 support, so counters travel as int64
	_, err := c.db.Exec(query,
		stats.Time, int64(stats.Cycles), int64(stats.FailedFetches), int64(stats.FetchedStates),
		int64(stats.AdmittedStates), int64(stats.StoredFlights), int64(stats.WriteFailures),
		stats.LastCycleTime, stats.ProcessingTimeMs,
	)
	return err
}
