// Package dispatcher runs the concurrent part of a search: one producer and a
// fixed pool of matching workers.
//
// # Pipeline
//
//	walker -> chunker -> work queue (bounded) -> N workers -> results
//
// The producer walks the root and reads each file into chunks, one file after
// another, and is the only writer of the work queue. When the queue is full
// the producer blocks, so at most QueueCapacity + Parallelism chunks are in
// memory at once, however large the input tree is.
//
// Every queue item gets a sequence number in production order. Per-file
// failures (a directory that cannot be listed, a file that cannot be opened,
// a read or decode problem) travel through the queue as notice items, so they
// are ordered with the matches of the same file and never stop other work.
//
// # Workers
//
// Each worker owns a matcher.Matcher and loops until the queue is closed:
//
//	for it := range work {
//	    results <- match(it)
//	}
//
// A panic while matching a chunk is recovered; the chunk's records are
// dropped and a KindWorker notice takes their place.
//
// # Shutdown
//
// Producer and workers run in an errgroup. Closing the queue tells workers to
// exit; cancelling the context stops everyone promptly, including a producer
// blocked on a full queue. Run closes the results channel before returning in
// every case, so a consumer ranging over it never hangs.
package dispatcher
