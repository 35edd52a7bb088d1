package runrepo

// postgresSchema creates the runs table used by both the footprint and leaderboard adapters.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS footprint_runs (
	id            TEXT PRIMARY KEY,
	user_id       BIGINT,
	display_name  TEXT NOT NULL,
	inputs        JSONB NOT NULL,
	total_kg      DOUBLE PRECISION NOT NULL,
	energy_kg     DOUBLE PRECISION NOT NULL,
	travel_kg     DOUBLE PRECISION NOT NULL,
	food_kg       DOUBLE PRECISION NOT NULL,
	goods_kg      DOUBLE PRECISION NOT NULL,
	score         INTEGER NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS footprint_runs_rank_idx ON footprint_runs (score DESC, created_at ASC);
CREATE INDEX IF NOT EXISTS footprint_runs_user_idx ON footprint_runs (user_id) WHERE user_id IS NOT NULL;
`

// sqliteSchema mirrors postgresSchema. Timestamps are stored as unix nanoseconds so ordering stays numeric.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS footprint_runs (
	id            TEXT PRIMARY KEY,
	user_id       INTEGER,
	display_name  TEXT NOT NULL,
	inputs        TEXT NOT NULL,
	total_kg      REAL NOT NULL,
	energy_kg     REAL NOT NULL,
	travel_kg     REAL NOT NULL,
	food_kg       REAL NOT NULL,
	goods_kg      REAL NOT NULL,
	score         INTEGER NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS footprint_runs_rank_idx ON footprint_runs (score DESC, created_at ASC);
CREATE INDEX IF NOT EXISTS footprint_runs_user_idx ON footprint_runs (user_id);
`
