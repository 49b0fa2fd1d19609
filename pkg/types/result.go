package types

import (
	"fmt"
	"time"
)

// MatchRecord is one reported matching line
type MatchRecord struct {
	Path       string `json:"path"`
	LineNumber int    `json:"line"`
	Line       string `json:"content"`
}

// String renders the record as path:line:content
func (m MatchRecord) String() string {
	return fmt.Sprintf("%s:%d:%s", m.Path, m.LineNumber, m.Line)
}

// Notice is a per-file warning delivered alongside matches
type Notice struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Skipped bool      `json:"skipped"` // The file (or the rest of it) was not searched
}

// NoticeFromError converts a local failure into a notice
func NoticeFromError(path string, err error, skipped bool) Notice {
	kind := KindOf(err)
	if kind == "" {
		kind = KindIoError
	}
	return Notice{Path: path, Kind: kind, Message: err.Error(), Skipped: skipped}
}

// String renders the notice for humans
func (n Notice) String() string {
	if n.Skipped {
		return fmt.Sprintf("%s: skipped: %s", n.Path, n.Message)
	}
	return fmt.Sprintf("%s: %s", n.Path, n.Message)
}

// Status is the aggregate outcome of a run
type Status string

const (
	StatusClean    Status = "clean"
	StatusWarnings Status = "warnings"
	StatusFailed   Status = "failed"
)

// Summary describes a finished run
type Summary struct {
	RunID        string
	Status       Status
	Matches      int
	FilesScanned int
	FilesMatched int
	FilesSkipped int
	Chunks       int
	Bytes        int64
	Notices      []Notice
	Duration     time.Duration
}

// HasWarnings reports whether any local failure occurred
func (s *Summary) HasWarnings() bool {
	return len(s.Notices) > 0
}

// Finalize derives Status from the collected notices
func (s *Summary) Finalize() {
	if s.Status == StatusFailed {
		return
	}
	if s.HasWarnings() {
		s.Status = StatusWarnings
		return
	}
	s.Status = StatusClean
}
