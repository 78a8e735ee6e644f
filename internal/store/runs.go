package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/distill/internal/format"
)

// RunRecord summarizes one completed pipeline run.
type RunRecord struct {
	ID                uuid.UUID `json:"id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	SessionsExtracted int       `json:"sessions_extracted"`
	WindowsEmitted    int       `json:"windows_emitted"`
	SamplesKept       int       `json:"samples_kept"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	SecretsScrubbed   int       `json:"secrets_scrubbed"`
	TrainSamples      int       `json:"train_samples"`
	ValSamples        int       `json:"val_samples"`
}

// WriteRun records a run and the metadata of every retained sample.
// Tables: pipeline_runs, training_samples.
func (s *Store) WriteRun(ctx context.Context, run RunRecord, samples []format.Sample) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO pipeline_runs (id, started_at, finished_at, sessions_extracted, windows_emitted,
			samples_kept, duplicates_removed, secrets_scrubbed, train_samples, val_samples)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.StartedAt, run.FinishedAt, run.SessionsExtracted, run.WindowsEmitted,
		run.SamplesKept, run.DuplicatesRemoved, run.SecretsScrubbed, run.TrainSamples, run.ValSamples,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, sample := range samples {
		messageCount := len(sample.Conversations)
		chars := 0
		for _, m := range sample.Conversations {
			chars += len(m.Value)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO training_samples (id, run_id, role, session_id, window_index,
				quality_score, outcome_score, message_count, char_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(), run.ID, sample.Metadata.Role, sample.Metadata.SessionID,
			sample.Metadata.WindowIndex, sample.Metadata.QualityScore,
			sample.Metadata.OutcomeScore, messageCount, chars,
		)
		if err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LatestRun returns the most recent run record, or nil when none exist.
func (s *Store) LatestRun(ctx context.Context) (*RunRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, started_at, finished_at, sessions_extracted, windows_emitted,
			samples_kept, duplicates_removed, secrets_scrubbed, train_samples, val_samples
		FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`)

	var run RunRecord
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.SessionsExtracted,
		&run.WindowsEmitted, &run.SamplesKept, &run.DuplicatesRemoved,
		&run.SecretsScrubbed, &run.TrainSamples, &run.ValSamples)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return &run, nil
}
