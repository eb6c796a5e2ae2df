package migrations

// InitialSchema creates the airline and live-flight tables.
//
// live_flights.airline_icao intentionally carries no foreign key: it may hold
// the UNKNOWN sentinel, for which no airlines row exists. The ingestor still
// writes the airline row before the flight row for real airline codes.
var InitialSchema = &Migration{
	Name: "001_initial_schema",
	UpSQL: `
		CREATE TABLE IF NOT EXISTS airlines (
			icao TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS live_flights (
			flight_icao TEXT PRIMARY KEY,
			airline_icao TEXT NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			speed DOUBLE PRECISION NOT NULL DEFAULT 0,
			last_update TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_live_flights_airline_icao ON live_flights (airline_icao);
		CREATE INDEX IF NOT EXISTS idx_live_flights_last_update ON live_flights (last_update);

		CREATE TABLE IF NOT EXISTS ingestion_stats (
			time TIMESTAMPTZ NOT NULL,
			cycles BIGINT NOT NULL,
			failed_fetches BIGINT NOT NULL,
			fetched_states BIGINT NOT NULL,
			admitted_states BIGINT NOT NULL,
			stored_flights BIGINT NOT NULL,
			write_failures BIGINT NOT NULL,
			last_cycle_time TIMESTAMPTZ,
			processing_time_ms BIGINT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_ingestion_stats_time ON ingestion_stats (time DESC);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS ingestion_stats;
		DROP TABLE IF EXISTS live_flights;
		DROP TABLE IF EXISTS airlines;
	`,
}
