package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Run is one recorded analysis run.
type Run struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`   // "slice" or "trace"
	Target     string    `json:"target"` // node ref or call pattern
	Matched    int       `json:"matched"`
	Distinct   int       `json:"distinct"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Finding is one constant discovered by a run.
type Finding struct {
	ConstType string `json:"constType"`
	Value     string `json:"value,omitempty"`
	EnumClass string `json:"enumClass,omitempty"`
	EnumName  string `json:"enumName,omitempty"`
}

// RecordRun stores a run and its findings atomically.
func (db *DB) RecordRun(run Run, findings []Finding) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	return db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, kind, target, matched, distinct_n, duration_ms, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.Kind, run.Target, run.Matched, run.Distinct, run.DurationMs,
			run.CreatedAt.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}
		for _, f := range findings {
			_, err := tx.Exec(`
				INSERT INTO findings (run_id, const_type, value, enum_class, enum_name)
				VALUES (?, ?, ?, ?, ?)
			`, run.ID, f.ConstType, f.Value, f.EnumClass, f.EnumName)
			if err != nil {
				return fmt.Errorf("failed to insert finding: %w", err)
			}
		}
		db.logger.Debug("Recorded run", map[string]interface{}{
			"id":       run.ID,
			"kind":     run.Kind,
			"findings": len(findings),
		})
		return nil
	})
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, kind, target, matched, distinct_n, duration_ms, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Target, &r.Matched, &r.Distinct, &r.DurationMs, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a run by id.
func (db *DB) GetRun(id string) (*Run, error) {
	var r Run
	var created string
	err := db.conn.QueryRow(`
		SELECT id, kind, target, matched, distinct_n, duration_ms, created_at
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.Kind, &r.Target, &r.Matched, &r.Distinct, &r.DurationMs, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}
	return &r, nil
}

// RunFindings returns the findings recorded for a run, insertion order.
func (db *DB) RunFindings(runID string) ([]Finding, error) {
	rows, err := db.conn.Query(`
		SELECT const_type, value, enum_class, enum_name
		FROM findings WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.ConstType, &f.Value, &f.EnumClass, &f.EnumName); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// PruneRuns deletes all but the newest keep runs. Findings go with
// their run via the cascade.
func (db *DB) PruneRuns(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := db.conn.Exec(`
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		db.logger.Debug("Pruned runs", map[string]interface{}{
			"deleted": n,
			"kept":    keep,
		})
	}
	return int(n), nil
}
