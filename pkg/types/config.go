package types

import (
	"fmt"
	"runtime"
)

const (
	// DefaultChunkSize is the number of lines per chunk when none is configured
	DefaultChunkSize = 1000

	// DefaultParallelism is the worker count when none is configured
	DefaultParallelism = 1
)

// SearchConfig describes one scan. It is immutable once validated and shared
// read-only by every stage of the pipeline.
type SearchConfig struct {
	Pattern     string
	Root        string
	IgnoreCase  bool
	Parallelism int
	ChunkSize   int

	// QueueCapacity bounds the work queue (0 = Parallelism)
	QueueCapacity int
}

// MaxParallelism is the upper bound for SearchConfig.Parallelism
func MaxParallelism() int {
	return runtime.NumCPU()
}

// Validate checks every field and returns a KindConfig SearchError on failure
func (c *SearchConfig) Validate() error {
	if c.Pattern == "" {
		return NewError(KindConfig, "", ErrEmptyPattern)
	}

	if c.Root == "" {
		return NewError(KindConfig, "", ErrEmptyRoot)
	}

	if limit := MaxParallelism(); c.Parallelism < 1 || c.Parallelism > limit {
		return NewError(KindConfig, "", fmt.Errorf("%w: %d (allowed 1-%d)", ErrInvalidParallelism, c.Parallelism, limit))
	}

	if c.ChunkSize <= 0 {
		return NewError(KindConfig, "", fmt.Errorf("%w: %d", ErrInvalidChunkSize, c.ChunkSize))
	}

	if c.QueueCapacity < 0 {
		return NewError(KindConfig, "", fmt.Errorf("%w: %d", ErrInvalidQueue, c.QueueCapacity))
	}

	return nil
}

// Queue returns the effective work queue capacity
func (c *SearchConfig) Queue() int {
	if c.QueueCapacity > 0 {
		return c.QueueCapacity
	}
	return c.Parallelism
}

// Window returns the number of queue items that may be outstanding between
// the producer and the aggregator
func (c *SearchConfig) Window() int {
	return c.Queue() + c.Parallelism
}
