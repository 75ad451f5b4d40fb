package db

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// FrameRecord is the stored summary of one culled frame.
type FrameRecord struct {
	Frame          int
	Eye            r3.Vec
	VisibleRegions int
	VisiblePoints  int
	CulledPoints   int
	Elapsed        time.Duration
}

// RecordFrame stores a frame summary, replacing any earlier record for the
// same frame number.
func (db *DB) RecordFrame(ctx context.Context, runID string, rec FrameRecord) error {
	if err := db.requireRun(ctx, runID); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cull_frames
			(run_id, frame, eye_x, eye_y, eye_z, visible_regions, visible_points, culled_points, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Frame, rec.Eye.X, rec.Eye.Y, rec.Eye.Z,
		rec.VisibleRegions, rec.VisiblePoints, rec.CulledPoints, rec.Elapsed.Nanoseconds())
	if err != nil {
		return fmt.Errorf("failed to record frame %d: %w", rec.Frame, err)
	}
	return nil
}

// Frames returns the run's frame summaries ordered by frame number.
func (db *DB) Frames(ctx context.Context, runID string) ([]FrameRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT frame, eye_x, eye_y, eye_z, visible_regions, visible_points, culled_points, elapsed_ns
		FROM cull_frames WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var out []FrameRecord
	for rows.Next() {
		var rec FrameRecord
		var elapsedNs int64
		if err := rows.Scan(&rec.Frame, &rec.Eye.X, &rec.Eye.Y, &rec.Eye.Z,
			&rec.VisibleRegions, &rec.VisiblePoints, &rec.CulledPoints, &elapsedNs); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		rec.Elapsed = time.Duration(elapsedNs)
		out = append(out, rec)
	}
	return out, rows.Err()
}
