package storage

import (
	"database/sql"
	"fmt"
)

const currentSchemaVersion = 1

// initializeSchema creates the tables if they do not exist yet and
// stamps the schema version. Open calls this on every connection; the
// statements are idempotent.
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createRunsTable(tx); err != nil {
			return err
		}
		if err := createFindingsTable(tx); err != nil {
			return err
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func createRunsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			target      TEXT NOT NULL,
			matched     INTEGER NOT NULL DEFAULT 0,
			distinct_n  INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create runs index: %w", err)
	}
	return nil
}

func createFindingsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS findings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			const_type  TEXT NOT NULL,
			value       TEXT,
			enum_class  TEXT,
			enum_name   TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create findings table: %w", err)
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id)`)
	if err != nil {
		return fmt.Errorf("failed to create findings index: %w", err)
	}
	return nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
	if err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// SchemaVersion reports the stored schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
