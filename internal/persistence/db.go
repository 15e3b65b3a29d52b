// Package persistence records run history to SQLite: the daily census,
// notable events and run metadata. It never restores simulation state.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-epidemic/internal/engine"
)

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sqlx.DB
}

// Run describes one recorded simulation run.
type Run struct {
	ID        string `db:"id"`
	StartedAt string `db:"started_at"`
	Seed      int64  `db:"seed"`
	Config    string `db:"config_json"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS census (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		population INTEGER NOT NULL,
		infected INTEGER NOT NULL,
		ill INTEGER NOT NULL,
		convalescing INTEGER NOT NULL,
		healthy INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		infections INTEGER NOT NULL,
		avg_immunity REAL NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run and returns its ID.
func (db *DB) StartRun(cfg engine.Config, seed int64) (uuid.UUID, error) {
	id := uuid.New()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode config: %w", err)
	}

	_, err = db.conn.Exec(
		"INSERT INTO runs (id, started_at, seed, config_json) VALUES (?, ?, ?, ?)",
		id.String(), time.Now().UTC().Format(time.RFC3339), seed, string(cfgJSON),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Runs lists recorded runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs, "SELECT id, started_at, seed, config_json FROM runs ORDER BY started_at DESC, id")
	return runs, err
}

// SaveCensus writes daily census rows for a run.
func (db *DB) SaveCensus(runID uuid.UUID, rows []engine.Census) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO census
		(run_id, tick, population, infected, ill, convalescing, healthy,
		 births, deaths, infections, avg_immunity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range rows {
		_, err := stmt.Exec(
			runID.String(), c.Tick, c.Population, c.Infected, c.Ill, c.Convalescing,
			c.Healthy, c.Births, c.Deaths, c.Infections, c.AvgImmunity,
		)
		if err != nil {
			return fmt.Errorf("insert census %d: %w", c.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to a run.
func (db *DB) SaveEvents(runID uuid.UUID, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			runID.String(), e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair for a run.
func (db *DB) SaveMeta(runID uuid.UUID, key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		runID.String(), key, value,
	)
	return err
}

// GetMeta retrieves a run metadata value.
func (db *DB) GetMeta(runID uuid.UUID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", runID.String(), key)
	return value, err
}

// CensusHistory returns the last limit census rows of a run, oldest first.
func (db *DB) CensusHistory(runID uuid.UUID, limit int) ([]engine.Census, error) {
	var rows []engine.Census
	err := db.conn.Select(&rows, `
		SELECT tick, population, infected, ill, convalescing, healthy,
		       births, deaths, infections, avg_immunity
		FROM (SELECT * FROM census WHERE run_id = ? ORDER BY tick DESC LIMIT ?)
		ORDER BY tick ASC`,
		runID.String(), limit,
	)
	return rows, err
}

// RecentEvents returns the most recent N events of a run.
func (db *DB) RecentEvents(runID uuid.UUID, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID.String(), limit,
	)
	return events, err
}

// Recorder buffers a run's daily census and events and writes them in
// batches.
type Recorder struct {
	db     *DB
	RunID  uuid.UUID
	census []engine.Census
	events []engine.Event
}

// NewRecorder registers a new run and returns its recorder.
func NewRecorder(db *DB, cfg engine.Config, seed int64) (*Recorder, error) {
	id, err := db.StartRun(cfg, seed)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db, RunID: id}, nil
}

// Observe buffers the census and new events of the most recent day.
func (r *Recorder) Observe(sim *engine.Simulation) {
	r.census = append(r.census, sim.Stats())
	r.events = append(r.events, sim.TakeEvents()...)
}

// Flush writes everything buffered since the previous flush.
func (r *Recorder) Flush(sim *engine.Simulation) error {
	if err := r.db.SaveCensus(r.RunID, r.census); err != nil {
		return fmt.Errorf("save census: %w", err)
	}
	if err := r.db.SaveEvents(r.RunID, r.events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := r.db.SaveMeta(r.RunID, "last_tick", fmt.Sprintf("%d", sim.Day())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Debug("run history flushed", "run", r.RunID, "census", len(r.census), "events", len(r.events))
	r.census = r.census[:0]
	r.events = r.events[:0]
	return nil
}
