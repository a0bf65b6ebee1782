/*
Package sqlite provides a SQLite-backed implementation of engine.Repository.

PURPOSE:
  Persists every aggregate as a JSON document in a table keyed by the
  entity id, so upsert is a single INSERT ... ON CONFLICT instead of a
  full-table scan. The document shapes are exactly the engine structs;
  nothing engine-internal needs to survive beyond their JSON form.

KEY TABLES:
  soldiers:           one row per soldier, payload includes bank history
  rosters:            one row per roster, payload includes sections/shifts
  app_settings:       single row (id = 1)
  extra_duty_history: APPEND-ONLY audit trail of confirmations

APPEND-ONLY ENFORCEMENT:
  extra_duty_history has no update or delete path in this package.
  Corrections are not a thing: entries are immutable snapshots.

CHANGE NOTIFICATION:
  Every successful mutation broadcasts on the embedded Notifier, the
  same subscribe/notify contract the in-memory store offers.

WAL MODE:
  The database opens with WAL so readers don't block behind the writer.

USAGE:
  store, err := sqlite.New("./data/roster.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: Repository contract
  - engine/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dsaude/roster-engine/engine"
)

// Store implements engine.Repository on SQLite.
type Store struct {
	engine.Notifier

	db *sql.DB
}

// New opens (or creates) the database at path. Use ":memory:" for an
// in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS soldiers (
		id         TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rosters (
		id         TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Single configuration row
	CREATE TABLE IF NOT EXISTS app_settings (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		data       TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Append-only audit trail
	CREATE TABLE IF NOT EXISTS extra_duty_history (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		data       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created_at
		ON extra_duty_history(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SOLDIERS
// =============================================================================

func (s *Store) Soldiers(ctx context.Context) ([]engine.Soldier, error) {
	return listDocs[engine.Soldier](ctx, s.db, "soldiers")
}

func (s *Store) SaveSoldier(ctx context.Context, soldier engine.Soldier) error {
	if err := upsertDoc(ctx, s.db, "soldiers", string(soldier.ID), soldier); err != nil {
		return err
	}
	s.Notify()
	return nil
}

func (s *Store) DeleteSoldier(ctx context.Context, id engine.SoldierID) error {
	deleted, err := deleteDoc(ctx, s.db, "soldiers", string(id))
	if err != nil {
		return err
	}
	if !deleted {
		return &engine.NotFoundError{Kind: "soldier", ID: string(id)}
	}
	s.Notify()
	return nil
}

// =============================================================================
// ROSTERS
// =============================================================================

func (s *Store) Rosters(ctx context.Context) ([]engine.Roster, error) {
	return listDocs[engine.Roster](ctx, s.db, "rosters")
}

func (s *Store) SaveRoster(ctx context.Context, r engine.Roster) error {
	if err := upsertDoc(ctx, s.db, "rosters", string(r.ID), r); err != nil {
		return err
	}
	s.Notify()
	return nil
}

func (s *Store) DeleteRoster(ctx context.Context, id engine.RosterID) error {
	deleted, err := deleteDoc(ctx, s.db, "rosters", string(id))
	if err != nil {
		return err
	}
	if !deleted {
		return &engine.NotFoundError{Kind: "roster", ID: string(id)}
	}
	s.Notify()
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) Settings(ctx context.Context) (engine.AppSettings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM app_settings WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return engine.DefaultSettings(), nil
	}
	if err != nil {
		return engine.AppSettings{}, fmt.Errorf("load settings: %w", err)
	}

	var settings engine.AppSettings
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return engine.AppSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings.Normalize(), nil
}

func (s *Store) SaveSettings(ctx context.Context, settings engine.AppSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, data, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.Notify()
	return nil
}

// =============================================================================
// EXTRA-DUTY HISTORY (append-only)
// =============================================================================

func (s *Store) ExtraDutyHistory(ctx context.Context) ([]engine.ExtraDutyEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM extra_duty_history ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query extra_duty_history: %w", err)
	}
	defer rows.Close()

	var out []engine.ExtraDutyEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var entry engine.ExtraDutyEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) AppendExtraDutyHistory(ctx context.Context, e engine.ExtraDutyEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO extra_duty_history (id, created_at, data) VALUES (?, ?, ?)`,
		e.ID, e.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	s.Notify()
	return nil
}

// =============================================================================
// DOCUMENT HELPERS
// =============================================================================

// listDocs returns all documents of a table in insertion (rowid) order,
// which doubles as the collection's stable order.
func listDocs[T any](ctx context.Context, db *sql.DB, table string) ([]T, error) {
	rows, err := db.QueryContext(ctx, `SELECT data FROM `+table+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", table, err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// upsertDoc writes one document, replacing any existing row with the
// same id. O(1) on the primary key, no table scan.
func upsertDoc(ctx context.Context, db *sql.DB, table, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", table, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO `+table+` (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert %s document: %w", table, err)
	}
	return nil
}

func deleteDoc(ctx context.Context, db *sql.DB, table, id string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
