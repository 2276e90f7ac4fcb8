package sqlite

// schema is executed statement-by-statement on a fresh database. It is
// idempotent (IF NOT EXISTS everywhere) so Open can run it unconditionally
// on every startup, the way the teacher's ephemeral.Store.initSchema does.
const schema = `
CREATE TABLE IF NOT EXISTS claims (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	slug       TEXT NOT NULL UNIQUE,
	statement  TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	prove_cmd  TEXT NOT NULL DEFAULT '',
	scope      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS dependencies (
	blocker_id INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	blocked_id INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	PRIMARY KEY (blocker_id, blocked_id),
	CHECK (blocker_id <> blocked_id)
);

CREATE INDEX IF NOT EXISTS idx_dependencies_blocked ON dependencies(blocked_id);

CREATE TABLE IF NOT EXISTS proofs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	claim_id    INTEGER NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	recorded_at TEXT NOT NULL,
	cmd         TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER NOT NULL,
	commit_id   TEXT NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	stdout_tail TEXT NOT NULL DEFAULT '',
	stderr_tail TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	timed_out   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_proofs_claim_recorded ON proofs(claim_id, recorded_at, id);

CREATE TABLE IF NOT EXISTS roadmap_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const activeClaimKey = "active_claim_id"

const schemaVersion = "1"
