package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointcull/internal/octree"
)

// ErrRunNotFound is returned when a run ID has no stored record.
var ErrRunNotFound = errors.New("point run not found")

// Run describes a stored point set.
type Run struct {
	ID         string
	Label      string
	CreatedAt  time.Time
	PointCount int
}

// CreateRun registers a new run and returns its ID.
func (db *DB) CreateRun(ctx context.Context, label string) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO point_runs (run_id, label, created_unix_ns) VALUES (?, ?, ?)`,
		id, label, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// SavePoints appends entries to the run in a single transaction. Sequence
// numbers continue from the points already stored so insertion order is
// preserved on reload.
func (db *DB) SavePoints(ctx context.Context, runID string, entries []octree.Entry[float64]) error {
	if err := db.requireRun(ctx, runID); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq) + 1, 0) FROM points WHERE run_id = ?`, runID).Scan(&next); err != nil {
		return fmt.Errorf("failed to read sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO points (run_id, seq, x, y, z, payload) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		p := e.Position
		if _, err := stmt.ExecContext(ctx, runID, next+int64(i), p.X, p.Y, p.Z, e.Payload); err != nil {
			return fmt.Errorf("failed to insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit points: %w", err)
	}
	return nil
}

// LoadPoints returns the run's points in insertion order.
func (db *DB) LoadPoints(ctx context.Context, runID string) ([]octree.Entry[float64], error) {
	if err := db.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT x, y, z, payload FROM points WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	var out []octree.Entry[float64]
	for rows.Next() {
		var p r3.Vec
		var payload float64
		if err := rows.Scan(&p.X, &p.Y, &p.Z, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		out = append(out, octree.Entry[float64]{Position: p, Payload: payload})
	}
	return out, rows.Err()
}

// ListRuns returns all runs, newest first.
func (db *DB) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.run_id, r.label, r.created_unix_ns, COUNT(p.seq)
		FROM point_runs r
		LEFT JOIN points p ON p.run_id = r.run_id
		GROUP BY r.run_id
		ORDER BY r.created_unix_ns DESC, r.run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var createdNs int64
		if err := rows.Scan(&r.ID, &r.Label, &createdNs, &r.PointCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdNs)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) requireRun(ctx context.Context, runID string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM point_runs WHERE run_id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up run: %w", err)
	}
	return nil
}
