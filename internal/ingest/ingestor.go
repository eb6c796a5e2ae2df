// Package ingest drives the periodic fetch→normalize→persist pipeline.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skyglass/flightmap/internal/normalize"
	"github.com/skyglass/flightmap/internal/opensky"
	"github.com/skyglass/flightmap/internal/stats"
	"github.com/skyglass/flightmap/internal/types"
)

// Feed fetches raw snapshots from the upstream provider
type Feed interface {
	FetchSnapshot(ctx context.Context) (*opensky.Snapshot, error)
}

// Store is the write side of the persistence gateway
type Store interface {
	EnsureAirline(icao string) error
	UpsertFlightState(state *types.FlightState) error
}

// Cache keeps the latest state per flight for fast lookups
type Cache interface {
	StoreFlightState(ctx context.Context, state *types.FlightState) error
}

// Publisher broadcasts refreshed flight states to downstream consumers
type Publisher interface {
	PublishFlightState(state *types.FlightState) error
}

// CycleResult reports the outcome of one ingestion cycle
type CycleResult struct {
	ID       string
	Fetched  int
	Admitted int
	Stored   int
	Errs     []error
}

// Ingestor runs the ingestion pipeline on a fixed cadence. Cache and
// publisher may be nil; persistence to the store is the only required write.
type Ingestor struct {
	feed      Feed
	store     Store
	cache     Cache
	publisher Publisher
	interval  time.Duration
	stats     *stats.Stats

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a new ingestor
func New(feed Feed, store Store, cache Cache, publisher Publisher, interval time.Duration, st *stats.Stats) *Ingestor {
	return &Ingestor{
		feed:      feed,
		store:     store,
		cache:     cache,
		publisher: publisher,
		interval:  interval,
		stats:     st,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the periodic ingestion loop
func (i *Ingestor) Start() {
	i.wg.Add(1)
	go i.run()
}

// Stop terminates the loop and waits for a running cycle to finish
func (i *Ingestor) Stop() {
	close(i.stopChan)
	i.wg.Wait()
}

func (i *Ingestor) run() {
	defer i.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-i.stopChan
		cancel()
	}()

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-i.stopChan:
			return
		case <-ticker.C:
			// The cycle runs synchronously, so ticks that fire while
			// a cycle is still in flight are dropped by the ticker
			// and cycles never overlap.
			i.report(i.RunCycle(ctx))
		}
	}
}

// RunCycle performs one fetch→normalize→persist pass. A fetch failure
// abandons the cycle; a failed write for one record is collected and the
// remaining records are still attempted.
func (i *Ingestor) RunCycle(ctx context.Context) CycleResult {
	result := CycleResult{ID: uuid.New().String()}
	started := time.Now()

	i.stats.IncrementCycles()

	snapshot, err := i.feed.FetchSnapshot(ctx)
	if err != nil {
		i.stats.IncrementFailedFetches()
		result.Errs = append(result.Errs, err)
		return result
	}
	result.Fetched = len(snapshot.States)
	i.stats.AddFetchedStates(uint64(result.Fetched))

	states := normalize.Snapshot(snapshot)
	result.Admitted = len(states)
	i.stats.AddAdmittedStates(uint64(result.Admitted))

	// Records are written in feed order, so the last entry for a flight
	// within one snapshot determines the persisted row.
	for idx := range states {
		state := &states[idx]
		state.LastUpdate = time.Now().UTC()

		if err := i.persist(ctx, state); err != nil {
			i.stats.IncrementWriteFailures()
			result.Errs = append(result.Errs, fmt.Errorf("flight %s: %w", state.FlightICAO, err))
			continue
		}
		result.Stored++
	}

	i.stats.AddStoredFlights(uint64(result.Stored))
	i.stats.SetLastCycleTime(time.Now().UTC())
	i.stats.AddProcessingTime(time.Since(started))
	return result
}

func (i *Ingestor) persist(ctx context.Context, state *types.FlightState) error {
	// The airline row must exist before the flight row references it
	if state.AirlineICAO != types.UnknownICAO {
		if err := i.store.EnsureAirline(state.AirlineICAO); err != nil {
			return fmt.Errorf("ensure airline %s: %w", state.AirlineICAO, err)
		}
	}

	if err := i.store.UpsertFlightState(state); err != nil {
		return fmt.Errorf("upsert flight: %w", err)
	}

	// Cache and bus are best effort; the store is the source of truth
	if i.cache != nil {
		if err := i.cache.StoreFlightState(ctx, state); err != nil {
			log.Printf("Warning: Failed to cache flight state: %v", err)
		}
	}
	if i.publisher != nil {
		if err := i.publisher.PublishFlightState(state); err != nil {
			log.Printf("Warning: Failed to publish flight state: %v", err)
		}
	}
	return nil
}

func (i *Ingestor) report(result CycleResult) {
	for _, err := range result.Errs {
		log.Printf("Ingestion cycle %s: %v", result.ID, err)
	}
	log.Printf("Ingestion cycle %s: fetched=%d admitted=%d stored=%d failed=%d",
		result.ID, result.Fetched, result.Admitted, result.Stored, len(result.Errs))
}
