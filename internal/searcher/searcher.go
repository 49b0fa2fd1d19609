package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/chunkgrep/internal/aggregator"
	"github.com/dshills/chunkgrep/internal/dispatcher"
	"github.com/dshills/chunkgrep/internal/walker"
	"github.com/dshills/chunkgrep/pkg/types"
)

// Searcher runs complete searches: validation, dispatch and ordered output
type Searcher struct {
	logger   *slog.Logger
	walkOpts walker.Options
}

// Option configures a Searcher
type Option func(*Searcher)

// WithWalkOptions sets directory filtering for every search
func WithWalkOptions(opts walker.Options) Option {
	return func(s *Searcher) { s.walkOpts = opts }
}

// New creates a Searcher. A nil logger means slog.Default.
func New(logger *slog.Logger, opts ...Option) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Searcher{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search scans cfg.Root for cfg.Pattern and delivers matches and notices to
// sink in (file discovery order, line number) order.
//
// A configuration error is returned before any file is opened. A missing or
// unreadable root, or cancellation of ctx, returns an error together with a
// summary of whatever was emitted, marked StatusFailed. Per-file problems do
// not fail the search; they are reported through sink and make the summary
// StatusWarnings.
func (s *Searcher) Search(ctx context.Context, cfg types.SearchConfig, sink aggregator.Sink) (*types.Summary, error) {
	startTime := time.Now()
	runID := uuid.NewString()

	if err := cfg.Validate(); err != nil {
		return &types.Summary{RunID: runID, Status: types.StatusFailed}, err
	}

	logger := s.logger.With("run_id", runID)
	logger.Info("search started",
		"root", cfg.Root,
		"ignore_case", cfg.IgnoreCase,
		"parallelism", cfg.Parallelism,
		"chunk_size", cfg.ChunkSize,
		"queue", cfg.Queue())

	agg := aggregator.New(sink, cfg.Window())
	d := dispatcher.New(cfg,
		dispatcher.WithAdmitter(agg),
		dispatcher.WithLogger(logger),
		dispatcher.WithWalkOptions(s.walkOpts))

	results := make(chan dispatcher.Result, cfg.Parallelism)
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(ctx, results)
	}()

	summary := agg.Consume(results)
	err := <-errCh

	summary.RunID = runID
	summary.Duration = time.Since(startTime)

	if err != nil {
		summary.Status = types.StatusFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("search interrupted", "matches", summary.Matches, "error", err)
			return &summary, fmt.Errorf("search interrupted: %w", err)
		}
		logger.Debug("search failed", "error", err)
		return &summary, err
	}

	logger.Info("search finished",
		"status", summary.Status,
		"matches", summary.Matches,
		"files_scanned", summary.FilesScanned,
		"files_skipped", summary.FilesSkipped,
		"duration", summary.Duration)

	return &summary, nil
}
