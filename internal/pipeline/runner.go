// Package pipeline orchestrates the full training-data run:
// discover → reconstruct → score → window → filter → format → scrub →
// dedup → split → write.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/distill/internal/dedup"
	"github.com/MikeSquared-Agency/distill/internal/events"
	"github.com/MikeSquared-Agency/distill/internal/format"
	"github.com/MikeSquared-Agency/distill/internal/normalize"
	"github.com/MikeSquared-Agency/distill/internal/quality"
	"github.com/MikeSquared-Agency/distill/internal/roles"
	"github.com/MikeSquared-Agency/distill/internal/scrub"
	"github.com/MikeSquared-Agency/distill/internal/session"
	"github.com/MikeSquared-Agency/distill/internal/store"
	"github.com/MikeSquared-Agency/distill/internal/window"
)

// Config holds the run command configuration.
type Config struct {
	SessionsDir string
	OutputDir   string
	StatePath   string
	RoleFilter  string // process only sessions of this role
	MaxSessions int    // 0 = unlimited
	Fresh       bool   // ignore previous run state
	DryRun      bool   // no file writes, no catalog, no events
	Window      window.Params
}

// Catalog records a completed run; satisfied by *store.Store.
type Catalog interface {
	WriteRun(ctx context.Context, run store.RunRecord, samples []format.Sample) error
}

// EventPublisher announces a completed run; satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(subject string, data any) error
}

// OutcomeSource supplies the optional telemetry quality signal; satisfied
// by *telemetry.Client. A nil source or a nil result both mean "no signal".
type OutcomeSource interface {
	OutcomeForSession(ctx context.Context, sessionID string) *float64
}

// Stats reports counts in and out of every stage. The only user-visible
// failure mode of a run is a smaller-than-expected output set, surfaced
// here rather than through errors.
type Stats struct {
	RunID              uuid.UUID      `json:"run_id"`
	FilesDiscovered    int            `json:"files_discovered"`
	SessionsExtracted  int            `json:"sessions_extracted"`
	SessionsEmpty      int            `json:"sessions_empty"`
	WindowsEmitted     int            `json:"windows_emitted"`
	WindowsRejected    int            `json:"windows_rejected"`
	SamplesBeforeDedup int            `json:"samples_before_dedup"`
	DuplicatesRemoved  int            `json:"duplicates_removed"`
	SecretsScrubbed    int            `json:"secrets_scrubbed"`
	TrainSamples       int            `json:"train_samples"`
	ValSamples         int            `json:"val_samples"`
	RoleDistribution   map[string]int `json:"role_distribution"`
	PerRoleFiles       map[string]int `json:"per_role_files"`
	TrainPath          string         `json:"train_path"`
	ValPath            string         `json:"val_path"`
	Errors             int            `json:"errors"`
}

// Runner executes pipeline runs.
type Runner struct {
	cfg      Config
	outcomes OutcomeSource
	catalog  Catalog
	events   EventPublisher
	logger   *slog.Logger
}

// NewRunner creates a pipeline runner. outcomes, catalog and publisher are
// all optional; pass nil to disable each.
func NewRunner(cfg Config, outcomes OutcomeSource, catalog Catalog, publisher EventPublisher, logger *slog.Logger) *Runner {
	if cfg.Window.Size == 0 {
		cfg.Window.Size = window.DefaultWindowTurns
	}
	if cfg.Window.Stride == 0 {
		cfg.Window.Stride = window.DefaultStride
	}
	if cfg.Window.MaxChars == 0 {
		cfg.Window.MaxChars = window.DefaultMaxChars
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	return &Runner{
		cfg:      cfg,
		outcomes: outcomes,
		catalog:  catalog,
		events:   publisher,
		logger:   logger,
	}
}

// Run executes the full pipeline.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	startedAt := time.Now().UTC()

	var state *State
	if r.cfg.Fresh {
		state = NewState(r.cfg.StatePath)
	} else {
		var err error
		state, err = LoadState(r.cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
	}

	files, err := DiscoverSessions(r.cfg.SessionsDir)
	if err != nil {
		return nil, fmt.Errorf("discover sessions: %w", err)
	}

	stats := &Stats{
		RunID:            uuid.New(),
		FilesDiscovered:  len(files),
		RoleDistribution: make(map[string]int),
		PerRoleFiles:     make(map[string]int),
	}
	state.FilesDiscovered = len(files)

	r.logger.Info("sessions discovered", "files", len(files), "dir", r.cfg.SessionsDir)

	var allSamples []format.Sample
	processed := 0

	for _, path := range files {
		select {
		case <-ctx.Done():
			r.logger.Info("run interrupted, saving state")
			_ = state.Save()
			return stats, ctx.Err()
		default:
		}

		if state.IsProcessed(path) {
			continue
		}
		if r.cfg.MaxSessions > 0 && processed >= r.cfg.MaxSessions {
			break
		}

		sess, err := session.Extract(path, r.logger)
		if err != nil {
			r.logger.Warn("failed to extract session", "path", path, "error", err)
			state.AddError(fmt.Sprintf("extract %s: %v", path, err))
			continue
		}
		if sess == nil {
			stats.SessionsEmpty++
			state.SessionsEmpty++
			state.MarkProcessed(path)
			continue
		}

		role := sessionRole(sess)
		if r.cfg.RoleFilter != "" && role != r.cfg.RoleFilter {
			state.MarkProcessed(path)
			continue
		}

		samples := r.transformSession(ctx, sess, role, stats)
		allSamples = append(allSamples, samples...)

		stats.SessionsExtracted++
		state.SessionsExtracted++
		state.MarkProcessed(path)
		processed++

		if processed%50 == 0 {
			r.logger.Info("progress", "sessions", processed, "samples", len(allSamples))
			_ = state.Save()
		}
	}

	r.logger.Info("sessions transformed",
		"sessions", stats.SessionsExtracted,
		"empty", stats.SessionsEmpty,
		"samples", len(allSamples),
	)

	// Scrub secrets before dedup so redaction normalizes content ahead of
	// hashing.
	for i := range allSamples {
		stats.SecretsScrubbed += scrub.Sample(&allSamples[i])
	}
	if stats.SecretsScrubbed > 0 {
		r.logger.Info("secrets scrubbed", "count", stats.SecretsScrubbed)
	}

	stats.SamplesBeforeDedup = len(allSamples)
	unique := dedup.NewSet().Filter(allSamples)
	stats.DuplicatesRemoved = stats.SamplesBeforeDedup - len(unique)

	// Train/validation split: first 5% (at least one sample) to val.
	valSize := 0
	if len(unique) > 0 {
		valSize = len(unique) / 20
		if valSize < 1 {
			valSize = 1
		}
	}
	valSamples := unique[:valSize]
	trainSamples := unique[valSize:]

	stats.TrainSamples = len(trainSamples)
	stats.ValSamples = len(valSamples)
	stats.TrainPath = filepath.Join(r.cfg.OutputDir, "gastown_train.jsonl")
	stats.ValPath = filepath.Join(r.cfg.OutputDir, "gastown_val.jsonl")

	if !r.cfg.DryRun {
		if _, err := format.WriteJSONL(trainSamples, stats.TrainPath); err != nil {
			return stats, fmt.Errorf("write train set: %w", err)
		}
		if _, err := format.WriteJSONL(valSamples, stats.ValPath); err != nil {
			return stats, fmt.Errorf("write val set: %w", err)
		}

		// Per-role splits for per-role adapter training.
		byRole := make(map[string][]format.Sample)
		for _, sample := range trainSamples {
			byRole[sample.Metadata.Role] = append(byRole[sample.Metadata.Role], sample)
		}
		for role, samples := range byRole {
			rolePath := filepath.Join(r.cfg.OutputDir, role+"_train.jsonl")
			if _, err := format.WriteJSONL(samples, rolePath); err != nil {
				return stats, fmt.Errorf("write %s set: %w", role, err)
			}
			stats.PerRoleFiles[role] = len(samples)
		}
	}

	state.WindowsEmitted = stats.WindowsEmitted
	state.WindowsRejected = stats.WindowsRejected
	state.SamplesKept = len(unique)
	state.DuplicatesRemoved = stats.DuplicatesRemoved
	state.SecretsScrubbed = stats.SecretsScrubbed
	state.TrainSamples = stats.TrainSamples
	state.ValSamples = stats.ValSamples
	stats.Errors = len(state.Errors)
	if !r.cfg.DryRun {
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save state", "error", err)
		}
	}

	r.recordRun(ctx, stats, unique, startedAt)

	r.logger.Info("run complete",
		"run_id", stats.RunID,
		"train", stats.TrainSamples,
		"val", stats.ValSamples,
		"duplicates_removed", stats.DuplicatesRemoved,
		"dry_run", r.cfg.DryRun,
	)

	return stats, nil
}

// transformSession turns one extracted session into zero or more formatted
// samples: outcome lookup → role tag → tool-result normalization →
// windowing → quality filter → format.
func (r *Runner) transformSession(ctx context.Context, sess *session.ExtractedSession, role string, stats *Stats) []format.Sample {
	var outcome *float64
	if r.outcomes != nil {
		outcome = r.outcomes.OutcomeForSession(ctx, sess.SessionID)
	}

	for i := range sess.Turns {
		sess.Turns[i].Content = normalize.TurnContent(sess.Turns[i].Content)
	}

	windows := window.Split(sess.Turns, r.cfg.Window)

	var samples []format.Sample
	for _, w := range windows {
		result := quality.Assess(w.Turns, outcome)
		if !result.Keep {
			stats.WindowsRejected++
			r.logger.Debug("window rejected",
				"session_id", sess.SessionID,
				"window", w.Index,
				"reason", result.Reason,
			)
			continue
		}
		stats.WindowsEmitted++

		sample := format.Sharegpt(w.Turns, role, sess.SessionID, w.Index, result.Score, outcome)
		if !sample.Trainable() {
			continue
		}
		samples = append(samples, sample)
		stats.RoleDistribution[role]++
	}

	return samples
}

// sessionRole classifies the session: path first, then the first
// human-authored message.
func sessionRole(sess *session.ExtractedSession) string {
	firstUserContent := ""
	for _, turn := range sess.Turns {
		if turn.Role == "user" {
			firstUserContent = turn.Content
			break
		}
	}
	return roles.Tag(sess.SourcePath, firstUserContent)
}

// recordRun persists the run to the catalog and announces it, when either
// is configured.
func (r *Runner) recordRun(ctx context.Context, stats *Stats, samples []format.Sample, startedAt time.Time) {
	if r.cfg.DryRun {
		return
	}

	if r.catalog != nil {
		run := store.RunRecord{
			ID:                stats.RunID,
			StartedAt:         startedAt,
			FinishedAt:        time.Now().UTC(),
			SessionsExtracted: stats.SessionsExtracted,
			WindowsEmitted:    stats.WindowsEmitted,
			SamplesKept:       stats.TrainSamples + stats.ValSamples,
			DuplicatesRemoved: stats.DuplicatesRemoved,
			SecretsScrubbed:   stats.SecretsScrubbed,
			TrainSamples:      stats.TrainSamples,
			ValSamples:        stats.ValSamples,
		}
		if err := r.catalog.WriteRun(ctx, run, samples); err != nil {
			r.logger.Warn("failed to record run in catalog", "error", err)
		}
	}

	if r.events != nil {
		payload := events.RunCompleted{
			RunID:             stats.RunID.String(),
			FinishedAt:        time.Now().UTC().Format(time.RFC3339),
			SessionsExtracted: stats.SessionsExtracted,
			TrainSamples:      stats.TrainSamples,
			ValSamples:        stats.ValSamples,
			DuplicatesRemoved: stats.DuplicatesRemoved,
			RoleDistribution:  stats.RoleDistribution,
			TrainPath:         stats.TrainPath,
			ValPath:           stats.ValPath,
		}
		if err := r.events.Publish(events.SubjectRunCompleted, payload); err != nil {
			r.logger.Warn("failed to publish run event", "error", err)
		}
	}
}
