// Package searcher runs a complete literal text search.
//
// # Basic Usage
//
//	s := searcher.New(logger)
//
//	sink := &aggregator.Collector{}
//	summary, err := s.Search(ctx, types.SearchConfig{
//	    Pattern:     "foo",
//	    Root:        "/path/to/tree",
//	    IgnoreCase:  true,
//	    Parallelism: 4,
//	    ChunkSize:   1000,
//	}, sink)
//
//	for _, rec := range sink.Records {
//	    fmt.Println(rec)
//	}
//
// # Run Lifecycle
//
//  1. The configuration is validated. Nothing is opened when it is invalid.
//  2. A dispatcher walks the root and feeds chunks to the worker pool.
//  3. The calling goroutine consumes results through an aggregator, which
//     restores discovery order and forwards records to the sink as soon as
//     they are next in line.
//  4. The summary gets a run id and the elapsed time.
//
// # Outcomes
//
//   - StatusClean: every file was read and searched.
//   - StatusWarnings: the search completed but some files were skipped or
//     partly searched. The notices are in Summary.Notices.
//   - StatusFailed: the search could not start (bad root) or was cancelled.
//     An error is returned alongside the summary.
//
// Results never depend on Parallelism or ChunkSize: the same configuration
// with different values of either produces the same records in the same
// order.
package searcher
