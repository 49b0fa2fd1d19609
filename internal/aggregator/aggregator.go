// Package aggregator restores a deterministic order over worker results.
//
// Workers finish out of order. Every result carries the sequence number the
// producer gave its queue item, and sequence order is (file discovery order,
// line number). The Aggregator keeps a reorder buffer keyed by sequence
// number and emits results to a Sink strictly in that order, without
// buffering the whole result set. It also acts as the dispatcher's admission
// window: the producer may only have `window` items outstanding, which bounds
// the reorder buffer.
package aggregator

import (
	"context"
	"sort"
	"sync"

	"github.com/dshills/chunkgrep/internal/dispatcher"
	"github.com/dshills/chunkgrep/pkg/types"
)

// Sink receives ordered output
type Sink interface {
	Match(rec types.MatchRecord)
	Notice(n types.Notice)
}

// Aggregator orders results and builds the run summary
type Aggregator struct {
	sink  Sink
	slots chan struct{}

	pending     map[int]dispatcher.Result
	next        int
	fileMatched bool
	summary     types.Summary
}

// New creates an Aggregator writing to sink with an admission window of
// window items (minimum 1)
func New(sink Sink, window int) *Aggregator {
	if window < 1 {
		window = 1
	}
	return &Aggregator{
		sink:    sink,
		slots:   make(chan struct{}, window),
		pending: make(map[int]dispatcher.Result),
	}
}

// Admit blocks until an item may be produced
func (a *Aggregator) Admit(ctx context.Context) error {
	select {
	case a.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Aggregator) release() {
	select {
	case <-a.slots:
	default:
	}
}

// Consume reads results until the channel is closed and returns the summary.
// If the run was cancelled and sequence numbers are missing, whatever is
// left in the buffer is flushed in sequence order.
func (a *Aggregator) Consume(results <-chan dispatcher.Result) types.Summary {
	for res := range results {
		a.pending[res.Seq] = res
		for {
			next, ok := a.pending[a.next]
			if !ok {
				break
			}
			delete(a.pending, a.next)
			a.emit(next)
			a.next++
			a.release()
		}
	}

	if len(a.pending) > 0 {
		seqs := make([]int, 0, len(a.pending))
		for seq := range a.pending {
			seqs = append(seqs, seq)
		}
		sort.Ints(seqs)
		for _, seq := range seqs {
			a.emit(a.pending[seq])
			delete(a.pending, seq)
		}
	}

	a.summary.Finalize()
	return a.summary
}

// Buffered returns the number of results waiting for an earlier sequence number
func (a *Aggregator) Buffered() int {
	return len(a.pending)
}

func (a *Aggregator) emit(res dispatcher.Result) {
	if res.Chunk >= 0 {
		a.summary.Chunks++
	}

	if len(res.Records) > 0 {
		if !a.fileMatched {
			a.summary.FilesMatched++
			a.fileMatched = true
		}
		for _, rec := range res.Records {
			a.sink.Match(rec)
		}
		a.summary.Matches += len(res.Records)
	}

	if res.Notice != nil {
		if res.Notice.Skipped {
			a.summary.FilesSkipped++
		}
		a.summary.Notices = append(a.summary.Notices, *res.Notice)
		a.sink.Notice(*res.Notice)
	}

	if res.FileDone {
		a.summary.FilesScanned++
		a.summary.Bytes += res.Bytes
		a.fileMatched = false
	}
}

// Collector is a Sink that keeps everything in memory
type Collector struct {
	mu      sync.Mutex
	Records []types.MatchRecord
	Notices []types.Notice
}

// Match implements Sink
func (c *Collector) Match(rec types.MatchRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Records = append(c.Records, rec)
}

// Notice implements Sink
func (c *Collector) Notice(n types.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notices = append(c.Notices, n)
}

// LimitedCollector keeps at most Limit records and counts the rest
type LimitedCollector struct {
	Collector
	Limit   int
	Dropped int
}

// Match implements Sink
func (c *LimitedCollector) Match(rec types.MatchRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Limit > 0 && len(c.Records) >= c.Limit {
		c.Dropped++
		return
	}
	c.Records = append(c.Records, rec)
}

// Truncated reports whether records were dropped
func (c *LimitedCollector) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Dropped > 0
}
