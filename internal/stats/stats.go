package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skyglass/flightmap/internal/db"
)

// Prometheus mirrors of the ingestion counters. Registered once on the
// default registry and served by the API's /metrics endpoint.
var (
	promCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightmap_ingest_cycles_total",
		Help: "Total ingestion cycles started",
	})
	promFailedFetches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightmap_ingest_fetch_failures_total",
		Help: "Total cycles abandoned because the feed fetch failed",
	})
	promFetchedStates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightmap_ingest_states_fetched_total",
		Help: "Total raw state vectors received from the feed",
	})
	promAdmittedStates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightmap_ingest_states_admitted_total",
		Help: "Total state vectors that passed normalization",
	})
	promStoredFlights = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightmap_ingest_flights_stored_total",
		Help: "Total flight states upserted into the store",
	})
	promWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightmap_ingest_write_failures_total",
		Help: "Total per-record persistence failures",
	})
	promLastCycle = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightmap_ingest_last_cycle_timestamp_seconds",
		Help: "Unix time of the most recently completed ingestion cycle",
	})
)

func init() {
	prometheus.MustRegister(
		promCycles, promFailedFetches, promFetchedStates,
		promAdmittedStates, promStoredFlights, promWriteFailures, promLastCycle,
	)
}

// Stats tracks ingestion statistics
type Stats struct {
	cycles         uint64
	failedFetches  uint64
	fetchedStates  uint64
	admittedStates uint64
	storedFlights  uint64
	writeFailures  uint64

	lastCycleTime  time.Time
	processingTime time.Duration

	// Database client for persistence
	db *db.Client

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	return &Stats{}
}

// SetDB sets the database client for persistence
func (s *Stats) SetDB(client *db.Client) {
	s.mu.Lock()
	s.db = client
	s.mu.Unlock()
}

// IncrementCycles records the start of one ingestion cycle
func (s *Stats) IncrementCycles() {
	atomic.AddUint64(&s.cycles, 1)
	promCycles.Inc()
}

// IncrementFailedFetches records a cycle abandoned on fetch failure
func (s *Stats) IncrementFailedFetches() {
	atomic.AddUint64(&s.failedFetches, 1)
	promFailedFetches.Inc()
}

// AddFetchedStates records raw states received from the feed
func (s *Stats) AddFetchedStates(n uint64) {
	atomic.AddUint64(&s.fetchedStates, n)
	promFetchedStates.Add(float64(n))
}

// AddAdmittedStates records states that passed normalization
func (s *Stats) AddAdmittedStates(n uint64) {
	atomic.AddUint64(&s.admittedStates, n)
	promAdmittedStates.Add(float64(n))
}

// AddStoredFlights records successfully upserted flight states
func (s *Stats) AddStoredFlights(n uint64) {
	atomic.AddUint64(&s.storedFlights, n)
	promStoredFlights.Add(float64(n))
}

// IncrementWriteFailures records one failed per-record write
func (s *Stats) IncrementWriteFailures() {
	atomic.AddUint64(&s.writeFailures, 1)
	promWriteFailures.Inc()
}

// SetLastCycleTime records when the most recent cycle completed
func (s *Stats) SetLastCycleTime(t time.Time) {
	s.mu.Lock()
	s.lastCycleTime = t
	s.mu.Unlock()
	promLastCycle.Set(float64(t.Unix()))
}

// AddProcessingTime accumulates time spent inside cycles
func (s *Stats) AddProcessingTime(d time.Duration) {
	s.mu.Lock()
	s.processingTime += d
	s.mu.Unlock()
}

// Snapshot returns the current counters as a persistable row
func (s *Stats) Snapshot() *db.IngestionStats {
	s.mu.RLock()
	lastCycle := s.lastCycleTime
	processing := s.processingTime
	s.mu.RUnlock()

	return &db.IngestionStats{
		Time:             time.Now().UTC(),
		Cycles:           atomic.LoadUint64(&s.cycles),
		FailedFetches:    atomic.LoadUint64(&s.failedFetches),
		FetchedStates:    atomic.LoadUint64(&s.fetchedStates),
		AdmittedStates:   atomic.LoadUint64(&s.admittedStates),
		StoredFlights:    atomic.LoadUint64(&s.storedFlights),
		WriteFailures:    atomic.LoadUint64(&s.writeFailures),
		LastCycleTime:    lastCycle,
		ProcessingTimeMs: processing.Milliseconds(),
	}
}

// Persist stores the current statistics in the database
func (s *Stats) Persist() error {
	s.mu.RLock()
	client := s.db
	s.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("database client not set")
	}
	return client.StoreIngestionStats(s.Snapshot())
}

// StartPersistence periodically persists statistics until ctx is done
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Persist(); err != nil {
				log.Printf("Warning: Failed to persist statistics: %v", err)
			}
		}
	}
}

// String renders the counters for the periodic statistics log line
func (s *Stats) String() string {
	snap := s.Snapshot()
	return fmt.Sprintf(
		"Cycles: %d (failed fetches: %d)\n"+
			"States: %d fetched, %d admitted, %d stored\n"+
			"Write failures: %d\n"+
			"Last cycle: %s\n"+
			"Processing time: %s",
		snap.Cycles, snap.FailedFetches,
		snap.FetchedStates, snap.AdmittedStates, snap.StoredFlights,
		snap.WriteFailures,
		snap.LastCycleTime.Format(time.RFC3339),
		time.Duration(snap.ProcessingTimeMs)*time.Millisecond,
	)
}
