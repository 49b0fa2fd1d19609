package types

import "errors"

// FileHandle identifies a single file discovered by the walker
type FileHandle struct {
	Path  string
	Index int   // Discovery order, 0-based and monotonic within a run
	Size  int64 // Size hint from the walk; may be stale
}

// Chunk is a line-aligned slice of a file, the unit of work handed to workers
type Chunk struct {
	// Identification
	File FileHandle
	Seq  int // Ordinal of the chunk within its file, 0-based

	// Location
	StartLine   int   // 1-based line number of Lines[0]
	StartOffset int64 // Byte offset of Lines[0] in the decoded stream

	// Content
	Lines []string

	// Last is set on the final chunk of a file
	Last bool
}

// EndLine returns the line number of the chunk's last line
func (c *Chunk) EndLine() int {
	return c.StartLine + len(c.Lines) - 1
}

// Validate checks the chunk's location invariants
func (c *Chunk) Validate() error {
	if c.File.Path == "" {
		return errors.New("chunk file path is required")
	}

	if c.StartLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if len(c.Lines) == 0 {
		return errors.New("chunk must hold at least one line")
	}

	if c.StartOffset < 0 {
		return errors.New("start offset must not be negative")
	}

	return nil
}
