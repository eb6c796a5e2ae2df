// Package api exposes the query service over HTTP for the map client.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyglass/flightmap/internal/db"
	"github.com/skyglass/flightmap/internal/types"
)

// Store is the read side of the persistence gateway
type Store interface {
	ListAirlines() ([]*types.Airline, error)
	ListFlights(airline string) ([]*types.FlightState, error)
	GetFlightState(flightICAO string) (*types.FlightState, error)
}

// Cache serves single-flight lookups without touching the database. A miss
// or a cache failure falls through to the store.
type Cache interface {
	GetFlightState(ctx context.Context, flightICAO string) (*types.FlightState, error)
}

// Server answers airline and flight queries against persisted state
type Server struct {
	store Store
	cache Cache // may be nil
	addr  string
}

// New creates a new query server. cache may be nil.
func New(store Store, cache Cache, port string) *Server {
	return &Server{
		store: store,
		cache: cache,
		addr:  ":" + port,
	}
}

// Router returns the configured chi router
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for the browser map client
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/airlines", s.handleListAirlines)
	r.Get("/flights", s.handleListFlights)
	r.Get("/flights/{icao}", s.handleGetFlight)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Run starts the HTTP server and blocks until ctx is done or serving fails
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()
	log.Printf("Query API listening on %s", s.addr)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleListAirlines(w http.ResponseWriter, r *http.Request) {
	airlines, err := s.store.ListAirlines()
	if err != nil {
		log.Printf("Failed to list airlines: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching airlines")
		return
	}
	if airlines == nil {
		airlines = []*types.Airline{}
	}
	writeJSON(w, http.StatusOK, airlines)
}

func (s *Server) handleListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := s.store.ListFlights(r.URL.Query().Get("airline"))
	if err != nil {
		log.Printf("Failed to list flights: %v", err)
		writeError(w, http.StatusInternalServerError, "Error fetching flights")
		return
	}
	if flights == nil {
		flights = []*types.FlightState{}
	}
	writeJSON(w, http.StatusOK, flights)
}

func (s *Server) handleGetFlight(w http.ResponseWriter, r *http.Request) {
	icao := chi.URLParam(r, "icao")

	if s.cache != nil {
		state, err := s.cache.GetFlightState(r.Context(), icao)
		if err != nil {
			log.Printf("Warning: Flight cache lookup failed: %v", err)
		} else if state != nil {
			writeJSON(w, http.StatusOK, state)
			return
		}
	}

	state, err := s.store.GetFlightState(icao)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "flight not found")
		return
	}
	if err != nil {
		log.Printf("Failed to get flight %s: %v", icao, err)
		writeError(w, http.StatusInternalServerError, "Error fetching flight")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
