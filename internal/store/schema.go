package store

// schemaVersionV1 is the current schema.
const schemaVersionV1 = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	plan_id      TEXT NOT NULL,
	matrix_hash  TEXT NOT NULL,
	config_json  TEXT NOT NULL,
	macro_score  REAL NOT NULL,
	blocked      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS plan_tasks (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	task_id      TEXT NOT NULL,
	item_id      TEXT NOT NULL,
	policy_area  INTEGER NOT NULL,
	dimension    INTEGER NOT NULL,
	chunk_key    TEXT NOT NULL,
	PRIMARY KEY (run_id, task_id)
);

CREATE TABLE IF NOT EXISTS results (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	layer        TEXT NOT NULL,
	key          TEXT NOT NULL,
	policy_area  INTEGER NOT NULL,
	dimension    INTEGER NOT NULL,
	cluster      INTEGER NOT NULL,
	score        REAL NOT NULL,
	confidence   REAL NOT NULL,
	quality      TEXT NOT NULL,
	blocked      INTEGER NOT NULL DEFAULT 0,
	diagnostics  TEXT NOT NULL,
	PRIMARY KEY (run_id, layer, key)
);

CREATE INDEX IF NOT EXISTS idx_results_run_layer ON results(run_id, layer);
`
