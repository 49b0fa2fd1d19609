package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/chunkgrep/internal/chunker"
	"github.com/dshills/chunkgrep/internal/matcher"
	"github.com/dshills/chunkgrep/internal/walker"
	"github.com/dshills/chunkgrep/pkg/types"
)

// Admitter bounds how many queue items may be outstanding between the
// producer and the consumer of results. Admit blocks until a slot is free.
type Admitter interface {
	Admit(ctx context.Context) error
}

// Result is the output of one queue item. Seq is the item's position in
// production order, which is (file discovery order, chunk order).
type Result struct {
	Seq  int
	File types.FileHandle

	// Chunk results
	Chunk   int // Ordinal of the chunk within its file, -1 for other items
	Lines   int
	Records []types.MatchRecord

	// Notice is set for local failures
	Notice *types.Notice

	// FileDone marks the end of a file that was opened; Bytes is its decoded size
	FileDone bool
	Bytes    int64
}

// item is one entry of the work queue
type item struct {
	seq      int
	file     types.FileHandle
	chunk    *types.Chunk
	notice   *types.Notice
	fileDone bool
	bytes    int64
}

// Dispatcher fans chunk matching out over a fixed pool of workers
type Dispatcher struct {
	cfg      types.SearchConfig
	walkOpts walker.Options
	admitter Admitter
	logger   *slog.Logger

	// match is swapped in tests to exercise panic recovery
	match func(m *matcher.Matcher, chunk *types.Chunk) []types.MatchRecord
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithAdmitter bounds outstanding items with a
func WithAdmitter(a Admitter) Option {
	return func(d *Dispatcher) { d.admitter = a }
}

// WithLogger sets the logger used for pipeline events
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithWalkOptions sets the walker's filtering options. OnNotice is ignored:
// walk notices are always routed through the work queue.
func WithWalkOptions(opts walker.Options) Option {
	return func(d *Dispatcher) { d.walkOpts = opts }
}

// New creates a Dispatcher for a validated configuration
func New(cfg types.SearchConfig, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		logger: slog.Default(),
		match: func(m *matcher.Matcher, chunk *types.Chunk) []types.MatchRecord {
			return m.Match(chunk)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run walks the configured root, queues every chunk, and matches them on
// cfg.Parallelism workers. Results are sent on results, which Run closes
// before returning. Fatal root errors and context cancellation are returned;
// per-file failures arrive as Results carrying a Notice.
func (d *Dispatcher) Run(ctx context.Context, results chan<- Result) error {
	defer close(results)

	work := make(chan item, d.cfg.Queue())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		return d.produce(gctx, work)
	})

	for i := 0; i < d.cfg.Parallelism; i++ {
		id := i
		g.Go(func() error {
			return d.work(gctx, id, work, results)
		})
	}

	return g.Wait()
}

// produce is the single writer of the work queue
func (d *Dispatcher) produce(ctx context.Context, work chan<- item) error {
	seq := 0
	emit := func(it item) error {
		if d.admitter != nil {
			if err := d.admitter.Admit(ctx); err != nil {
				return err
			}
		}
		it.seq = seq
		select {
		case work <- it:
			seq++
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var emitErr error
	opts := d.walkOpts
	opts.OnNotice = func(n types.Notice) {
		if emitErr != nil {
			return
		}
		d.logger.Debug("walk notice", "path", n.Path, "kind", n.Kind, "message", n.Message)
		emitErr = emit(item{file: types.FileHandle{Path: n.Path, Index: -1}, notice: &n})
	}

	err := walker.New(opts).Walk(ctx, d.cfg.Root, func(fh types.FileHandle) error {
		if emitErr != nil {
			return emitErr
		}
		return d.produceFile(ctx, fh, emit)
	})
	if err == nil {
		err = emitErr
	}
	if err != nil {
		return err
	}

	d.logger.Debug("producer finished", "items", seq)
	return nil
}

// produceFile queues the chunks of one file followed by its notices and a
// file-done marker. Failures to open or read only affect this file.
func (d *Dispatcher) produceFile(ctx context.Context, fh types.FileHandle, emit func(item) error) error {
	r, err := chunker.Open(fh, d.cfg.ChunkSize)
	if err != nil {
		d.logger.Debug("skipping file", "path", fh.Path, "error", err)
		n := types.NoticeFromError(fh.Path, err, true)
		return emit(item{file: fh, notice: &n})
	}
	defer func() { _ = r.Close() }()

	chunks := 0
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.logger.Debug("read failed", "path", fh.Path, "error", err)
			n := types.NoticeFromError(fh.Path, err, true)
			if err := emit(item{file: fh, notice: &n}); err != nil {
				return err
			}
			break
		}
		if err := emit(item{file: fh, chunk: chunk}); err != nil {
			return err
		}
		chunks++
	}

	for _, warning := range r.Warnings() {
		n := types.NoticeFromError(fh.Path, warning, false)
		if err := emit(item{file: fh, notice: &n}); err != nil {
			return err
		}
	}

	d.logger.Debug("file queued", "path", fh.Path, "chunks", chunks, "encoding", r.Encoding())
	return emit(item{file: fh, fileDone: true, bytes: r.Offset()})
}

// work pulls items until the queue is closed or the context is cancelled
func (d *Dispatcher) work(ctx context.Context, id int, work <-chan item, results chan<- Result) error {
	m := matcher.New(d.cfg.Pattern, d.cfg.IgnoreCase)

	for {
		var it item
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case it, ok = <-work:
			if !ok {
				return nil
			}
		}

		res, panicked := d.process(m, it)
		if panicked {
			d.logger.Warn("worker recovered from panic", "worker", id, "path", it.file.Path, "message", res.Notice.Message)
			m = matcher.New(d.cfg.Pattern, d.cfg.IgnoreCase)
		}

		select {
		case results <- res:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// process matches one item. A panic is converted into a KindWorker notice
// for the chunk; its records are dropped.
func (d *Dispatcher) process(m *matcher.Matcher, it item) (res Result, panicked bool) {
	res = Result{
		Seq:      it.seq,
		File:     it.file,
		Chunk:    -1,
		Notice:   it.notice,
		FileDone: it.fileDone,
		Bytes:    it.bytes,
	}
	if it.chunk == nil {
		return res, false
	}

	res.Chunk = it.chunk.Seq
	res.Lines = len(it.chunk.Lines)

	defer func() {
		if r := recover(); r != nil {
			res.Records = nil
			n := types.NoticeFromError(it.file.Path, types.NewError(types.KindWorker, it.file.Path,
				fmt.Errorf("lines %d-%d not searched: %v", it.chunk.StartLine, it.chunk.EndLine(), r)), false)
			res.Notice = &n
			panicked = true
		}
	}()

	res.Records = d.match(m, it.chunk)
	return res, false
}
