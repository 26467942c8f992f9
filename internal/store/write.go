package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// WriteRun inserts a run and its full trajectory in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency on the run row; a
// half-written trajectory can never be observed because the transaction
// covers both tables.
func (s *Store) WriteRun(ctx context.Context, run Run, trajectory [][]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, spec, config_hash, seed, steps, boundary, accepted, rejected, trajectory_hash, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.CreatedAt,
		run.Spec,
		run.ConfigHash,
		run.Seed,
		run.Steps,
		run.Boundary,
		run.Accepted,
		run.Rejected,
		run.TrajectoryHash,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Duplicate run ID - trajectory already stored.
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (run_id, step, dim, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare points: %w", err)
	}
	defer stmt.Close()

	for step, point := range trajectory {
		for dim, value := range point {
			if _, err := stmt.ExecContext(ctx, run.ID, step, dim, value); err != nil {
				return fmt.Errorf("write run: point (%d,%d): %w", step, dim, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSummary upserts the posterior summary for a run. Re-summarizing a
// run (e.g. with a different cred mass) replaces the previous record.
func (s *Store) WriteSummary(ctx context.Context, rec SummaryRecord) error {
	meansJSON, err := json.Marshal(rec.Mean)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	stdsJSON, err := json.Marshal(rec.Std)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	var evidence any
	if rec.Evidence != nil {
		evidence = *rec.Evidence
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (run_id, means, stds, evidence, cred_mass, waterline, hdi_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			means = excluded.means,
			stds = excluded.stds,
			evidence = excluded.evidence,
			cred_mass = excluded.cred_mass,
			waterline = excluded.waterline,
			hdi_count = excluded.hdi_count
	`,
		rec.RunID,
		string(meansJSON),
		string(stdsJSON),
		evidence,
		rec.CredMass,
		rec.Waterline,
		rec.HDICount,
	)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
