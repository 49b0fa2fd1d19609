// Package walker enumerates the files to search under a root path.
//
// Directories are traversed depth-first with an explicit stack, entries in
// name order, so files are discovered in lexicographic path order and each
// FileHandle carries a monotonic discovery Index. Directories are tracked by
// canonical path, which makes symlink cycles harmless. Failures below the root
// are reported as notices and skipped; only a missing or unreadable root is
// fatal.
package walker
