// Package pipeline drives ingestion runs: fetch raw records from a source,
// normalize and validate each one, then save it or report a dry-run preview.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/recipe-ingest/internal/metrics"
	"github.com/jonathan/recipe-ingest/internal/persist"
	"github.com/jonathan/recipe-ingest/internal/sources"
	"github.com/jonathan/recipe-ingest/internal/types"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Stage   string        `json:"stage"` // "fetched", "preview", "saved", "skipped", "error"
	Message string        `json:"message"`
	RunID   string        `json:"run_id"`
	Index   int           `json:"index,omitempty"`
	Total   int           `json:"total,omitempty"`
	Recipe  *types.Recipe `json:"recipe,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// Saver persists one recipe.
type Saver interface {
	Save(ctx context.Context, r *types.Recipe) persist.Result
}

// Validator rejects recipes that do not fit the canonical schema.
type Validator interface {
	Validate(r *types.Recipe) error
}

// RunHistory stores the final statistics of every run.
type RunHistory interface {
	RecordRun(ctx context.Context, stats *Stats, runErr error) error
}

// Options holds configuration for one run
type Options struct {
	// Limit caps the number of records processed; <= 0 means no limit.
	Limit      int
	DryRun     bool
	OnProgress ProgressCallback
}

// Orchestrator runs ingestion for one source. Runs are sequential; State
// may be read from other goroutines.
type Orchestrator struct {
	source    sources.Source
	saver     Saver
	validator Validator
	metrics   *metrics.Recorder
	history   RunHistory
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator validates every normalized recipe before it is saved.
func WithValidator(v Validator) Option {
	return func(o *Orchestrator) { o.validator = v }
}

// WithMetrics records final run statistics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.metrics = r }
}

// WithRunHistory stores final run statistics.
func WithRunHistory(h RunHistory) Option {
	return func(o *Orchestrator) { o.history = h }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator. saver may be nil when only dry runs are made.
func New(source sources.Source, saver Saver, logger zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source: source,
		saver:  saver,
		logger: logger.With().Str("source", source.Name()).Logger(),
		now:    time.Now,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Source returns the name of the orchestrated source.
func (o *Orchestrator) Source() string {
	return o.source.Name()
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes one ingestion run. Per-record failures are counted and never
// abort the run. A fetch failure ends the run in StateFatalError; the
// statistics are returned together with the error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Stats, error) {
	if !opts.DryRun && o.saver == nil {
		return nil, fmt.Errorf("no saver configured for a non-dry run")
	}

	stats := &Stats{
		RunID:     uuid.New(),
		Source:    o.source.Name(),
		DryRun:    opts.DryRun,
		State:     StateIdle,
		StartedAt: o.now(),
	}
	logger := o.logger.With().Str("run_id", stats.RunID.String()).Logger()

	logger.Info().Int("limit", opts.Limit).Bool("dry_run", opts.DryRun).Msg("starting ingestion")
	o.transition(stats, StateFetching)

	records, err := o.source.Fetch(ctx, opts.Limit)
	if err != nil {
		err = fmt.Errorf("fetch failed: %w", err)
		logger.Error().Err(err).Msg("fatal error during ingestion")
		o.finish(ctx, stats, StateFatalError, err)
		return stats, err
	}

	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	stats.Fetched = len(records)
	logger.Info().Int("fetched", stats.Fetched).Msg("records fetched")
	emit(opts, ProgressEvent{Stage: "fetched", RunID: stats.RunID.String(), Total: stats.Fetched,
		Message: fmt.Sprintf("fetched %d records", stats.Fetched)})

	if len(records) == 0 {
		logger.Warn().Msg("no records fetched")
	}

	o.transition(stats, StateProcessing)

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("ingestion canceled after %d of %d records: %w", i, len(records), err)
			logger.Error().Err(err).Msg("fatal error during ingestion")
			o.finish(ctx, stats, StateFatalError, err)
			return stats, err
		}
		o.processRecord(ctx, logger, stats, opts, i+1, raw)
	}

	o.finish(ctx, stats, StateDone, nil)
	return stats, nil
}

func (o *Orchestrator) processRecord(ctx context.Context, logger zerolog.Logger, stats *Stats, opts Options, index int, raw types.RawRecord) {
	event := ProgressEvent{RunID: stats.RunID.String(), Index: index, Total: stats.Fetched}

	recipe, err := o.normalize(raw)
	if err == nil && o.validator != nil {
		err = o.validator.Validate(recipe)
	}
	if err != nil {
		stats.Errored++
		logger.Error().Err(err).Int("index", index).Msg("failed to process record")
		event.Stage, event.Message = "error", err.Error()
		emit(opts, event)
		return
	}
	stats.Processed++
	event.Recipe = recipe

	if opts.DryRun {
		logger.Info().
			Int("index", index).
			Str("name", recipe.Name).
			Strs("labels", recipe.Labels()).
			Msg("dry run, would save")
		event.Stage, event.Message = "preview", "would save "+recipe.Name
		emit(opts, event)
		return
	}

	res := o.saver.Save(ctx, recipe)
	switch res.Outcome {
	case persist.Saved:
		stats.Saved++
		logger.Info().Int("index", index).Int64("id", res.ID).Str("name", recipe.Name).Msg("recipe saved")
		event.Stage, event.Message = "saved", "saved "+recipe.Name
	case persist.SkippedDuplicate:
		stats.Skipped++
		logger.Info().Int("index", index).Str("name", recipe.Name).Msg("recipe already exists, skipping")
		event.Stage, event.Message = "skipped", "skipped "+recipe.Name
	default:
		stats.Errored++
		event.Stage, event.Message = "error", fmt.Sprintf("failed to save %s: %v", recipe.Name, res.Err)
	}
	emit(opts, event)
}

// normalize turns a panic in a source's normalizer into an error for this record.
func (o *Orchestrator) normalize(raw types.RawRecord) (recipe *types.Recipe, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("normalize panicked: %v", p)
		}
	}()
	recipe = o.source.Normalize(raw)
	if recipe == nil {
		return nil, errors.New("normalize returned no recipe")
	}
	return recipe, nil
}

func (o *Orchestrator) transition(stats *Stats, s State) {
	stats.State = s
	o.setState(s)
}

func (o *Orchestrator) finish(ctx context.Context, stats *Stats, final State, runErr error) {
	stats.EndedAt = o.now()
	o.transition(stats, final)

	o.logger.Info().
		Str("run_id", stats.RunID.String()).
		Str("state", string(final)).
		Int("fetched", stats.Fetched).
		Int("processed", stats.Processed).
		Int("saved", stats.Saved).
		Int("skipped", stats.Skipped).
		Int("errored", stats.Errored).
		Dur("duration", stats.Duration()).
		Msg("ingestion finished")

	if o.metrics != nil {
		o.metrics.ObserveRun(metrics.Run{
			Source:   stats.Source,
			Fatal:    final == StateFatalError,
			Fetched:  stats.Fetched,
			Saved:    stats.Saved,
			Skipped:  stats.Skipped,
			Errored:  stats.Errored,
			Duration: stats.Duration(),
			EndedAt:  stats.EndedAt,
		})
	}

	if o.history != nil {
		// the run context may already be canceled; history is still written
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := o.history.RecordRun(hctx, stats, runErr); err != nil {
			o.logger.Warn().Err(err).Msg("failed to record run history")
		}
	}
}

func emit(opts Options, event ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(event)
	}
}

// RunAll runs each orchestrator in order with the same options. A run that
// fails counts as one error and the next one still runs.
func RunAll(ctx context.Context, runs []*Orchestrator, opts Options) (*Totals, []*Stats) {
	totals := &Totals{Sources: len(runs)}
	all := make([]*Stats, 0, len(runs))

	for _, o := range runs {
		stats, err := o.Run(ctx, opts)
		if stats != nil {
			all = append(all, stats)
		}
		if err != nil {
			totals.Errored++
			continue
		}
		totals.SourcesCompleted++
		totals.Fetched += stats.Fetched
		totals.Saved += stats.Saved
		totals.Errored += stats.Errored
	}
	return totals, all
}
