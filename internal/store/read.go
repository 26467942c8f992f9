package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("store: run not found")

// ReadRun returns the run record for id, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, spec, config_hash, seed, steps, boundary, accepted, rejected, trajectory_hash, engine_version
		FROM runs
		WHERE id = ?
	`, id)

	var run Run
	err := row.Scan(
		&run.ID,
		&run.CreatedAt,
		&run.Spec,
		&run.ConfigHash,
		&run.Seed,
		&run.Steps,
		&run.Boundary,
		&run.Accepted,
		&run.Rejected,
		&run.TrajectoryHash,
		&run.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns all run records ordered by creation time then id, so the
// listing is stable even when two runs share a timestamp.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, spec, config_hash, seed, steps, boundary, accepted, rejected, trajectory_hash, engine_version
		FROM runs
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.CreatedAt,
			&run.Spec,
			&run.ConfigHash,
			&run.Seed,
			&run.Steps,
			&run.Boundary,
			&run.Accepted,
			&run.Rejected,
			&run.TrajectoryHash,
			&run.EngineVersion,
		); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// ReadTrajectory returns the stored trajectory for a run.
// Deterministic ordering: ORDER BY step ASC, dim ASC - read-back is
// bit-identical to what was written.
func (s *Store) ReadTrajectory(ctx context.Context, runID string) ([][]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, dim, value
		FROM points
		WHERE run_id = ?
		ORDER BY step ASC, dim ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}
	defer rows.Close()

	var trajectory [][]float64
	for rows.Next() {
		var step, dim int
		var value float64
		if err := rows.Scan(&step, &dim, &value); err != nil {
			return nil, fmt.Errorf("read trajectory: %w", err)
		}
		if step != len(trajectory)-1 {
			if step != len(trajectory) {
				return nil, fmt.Errorf("read trajectory: run %s: step %d out of sequence", runID, step)
			}
			trajectory = append(trajectory, nil)
		}
		point := &trajectory[len(trajectory)-1]
		if dim != len(*point) {
			return nil, fmt.Errorf("read trajectory: run %s: step %d dim %d out of sequence", runID, step, dim)
		}
		*point = append(*point, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}
	if trajectory == nil {
		return nil, fmt.Errorf("%w: %s has no trajectory", ErrNotFound, runID)
	}
	return trajectory, nil
}

// ReadSummary returns the stored summary for a run, or ErrNotFound.
func (s *Store) ReadSummary(ctx context.Context, runID string) (SummaryRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, means, stds, evidence, cred_mass, waterline, hdi_count
		FROM summaries
		WHERE run_id = ?
	`, runID)

	var rec SummaryRecord
	var meansJSON, stdsJSON string
	var evidence sql.NullFloat64
	err := row.Scan(&rec.RunID, &meansJSON, &stdsJSON, &evidence, &rec.CredMass, &rec.Waterline, &rec.HDICount)
	if errors.Is(err, sql.ErrNoRows) {
		return SummaryRecord{}, fmt.Errorf("%w: %s has no summary", ErrNotFound, runID)
	}
	if err != nil {
		return SummaryRecord{}, fmt.Errorf("read summary: %w", err)
	}
	if err := json.Unmarshal([]byte(meansJSON), &rec.Mean); err != nil {
		return SummaryRecord{}, fmt.Errorf("read summary: means: %w", err)
	}
	if err := json.Unmarshal([]byte(stdsJSON), &rec.Std); err != nil {
		return SummaryRecord{}, fmt.Errorf("read summary: stds: %w", err)
	}
	if evidence.Valid {
		v := evidence.Float64
		rec.Evidence = &v
	}
	return rec, nil
}
