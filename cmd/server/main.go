package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skyglass/flightmap/internal/api"
	"github.com/skyglass/flightmap/internal/config"
	"github.com/skyglass/flightmap/internal/db"
	"github.com/skyglass/flightmap/internal/ingest"
	"github.com/skyglass/flightmap/internal/nats"
	"github.com/skyglass/flightmap/internal/opensky"
	"github.com/skyglass/flightmap/internal/redis"
	"github.com/skyglass/flightmap/internal/stats"
)

// createClients creates the database client plus the optional cache and bus
// clients. Redis and NATS are only dialed when configured.
func createClients(cfg *config.Config) (*db.Client, *redis.Client, *nats.Client, error) {
	dbClient, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create database client: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redis.New(cfg.RedisAddr)
		if err != nil {
			closeClients(dbClient, nil, nil)
			return nil, nil, nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
	}

	var natsClient *nats.Client
	if cfg.NATSURL != "" {
		natsClient, err = nats.New(cfg.NATSURL)
		if err != nil {
			closeClients(dbClient, redisClient, nil)
			return nil, nil, nil, fmt.Errorf("failed to create NATS client: %w", err)
		}
	}

	return dbClient, redisClient, natsClient, nil
}

func closeClients(dbClient *db.Client, redisClient *redis.Client, natsClient *nats.Client) {
	if natsClient != nil {
		natsClient.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
		}
	}
	if dbClient != nil {
		if err := dbClient.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing dbClient: %v\n", err)
		}
	}
}

// buildIngestor wires the pipeline; the nil checks keep a typed nil out of
// the optional interfaces.
func buildIngestor(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, natsClient *nats.Client, st *stats.Stats) *ingest.Ingestor {
	feed := opensky.New(cfg.FeedURL, cfg.FetchTimeout)

	var cache ingest.Cache
	if redisClient != nil {
		cache = redisClient
	}
	var publisher ingest.Publisher
	if natsClient != nil {
		publisher = natsClient
	}

	return ingest.New(feed, dbClient, cache, publisher, cfg.FetchInterval, st)
}

// logStats periodically logs ingestion statistics
func logStats(ctx context.Context, st *stats.Stats) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("Statistics:\n%s", st)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	dbClient, redisClient, natsClient, err := createClients(cfg)
	if err != nil {
		log.Printf("Failed to create clients: %v", err)
		os.Exit(1)
	}

	st := stats.New()
	st.SetDB(dbClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ingestor := buildIngestor(cfg, dbClient, redisClient, natsClient, st)
	ingestor.Start()
	log.Printf("Ingestion started: feed=%s interval=%s", cfg.FeedURL, cfg.FetchInterval)

	go logStats(ctx, st)
	go st.StartPersistence(ctx, 5*time.Minute)

	var apiCache api.Cache
	if redisClient != nil {
		apiCache = redisClient
	}
	server := api.New(dbClient, apiCache, cfg.Port)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received %s, shutting down...", sig)
	case err := <-serveErr:
		log.Printf("HTTP server failed: %v", err)
	}

	cancel()
	ingestor.Stop()
	closeClients(dbClient, redisClient, natsClient)
}
