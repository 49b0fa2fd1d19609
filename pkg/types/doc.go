// Package types provides shared type definitions for chunkgrep.
//
// This package defines the domain types passed between the pipeline stages:
// the scan configuration, discovered files, chunks, match records, notices and
// the run summary.
//
// # Core Types
//
// SearchConfig is built once per run and validated before any file is opened:
//
//	cfg := types.SearchConfig{
//	    Pattern:     "needle",
//	    Root:        "/var/log",
//	    IgnoreCase:  true,
//	    Parallelism: 4,
//	    ChunkSize:   1000,
//	}
//	if err := cfg.Validate(); err != nil {
//	    // errors.Is(err, types.ErrConfig) == true
//	}
//
// FileHandle and Chunk flow from the walker through the chunker to the
// workers. A chunk never splits a line, and its StartLine is the absolute
// 1-based line number of its first line.
//
// MatchRecord and Notice flow from the workers to the aggregator. Notices
// describe local failures (an unreadable file, a decode problem, a recovered
// worker panic) and never abort a run.
//
// # Errors
//
// SearchError carries an ErrorKind and matches the kind's sentinel:
//
//	errors.Is(err, types.ErrPathNotFound)
//	errors.Is(err, types.ErrPermissionDenied)
//
// Configuration and root errors are fatal (IsFatal); everything else is
// reported as a Notice and the scan continues.
package types
