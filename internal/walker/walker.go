package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/chunkgrep/pkg/types"
)

// Options configures a walk
type Options struct {
	SkipHidden  bool     // Skip entries starting with "." below the root
	ExcludeDirs []string // Directory names never entered (e.g. ".git", "node_modules")

	// OnNotice receives local failures; the walk continues after each one
	OnNotice func(types.Notice)
}

// Walker enumerates the files under a root path
type Walker struct {
	opts    Options
	exclude map[string]bool
}

// New creates a new Walker instance
func New(opts Options) *Walker {
	exclude := make(map[string]bool, len(opts.ExcludeDirs))
	for _, name := range opts.ExcludeDirs {
		exclude[name] = true
	}
	return &Walker{opts: opts, exclude: exclude}
}

// pending is a stack entry: a path still to be visited
type pending struct {
	path string
	root bool
}

// Walk calls visit for every regular file under root in lexicographic path
// order. A root that is a file is visited on its own. Root failures are fatal
// and returned as SearchErrors; failures below the root are reported through
// Options.OnNotice. An error returned by visit stops the walk.
func (w *Walker) Walk(ctx context.Context, root string, visit func(types.FileHandle) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	info, err := os.Stat(root)
	if err != nil {
		return rootError(root, err)
	}

	index := 0
	if !info.IsDir() {
		return visit(types.FileHandle{Path: root, Index: index, Size: info.Size()})
	}

	// Directories already listed, keyed by canonical path
	visited := make(map[string]bool)

	stack := []pending{{path: root, root: true}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := os.Stat(node.path)
		if err != nil {
			w.notice(types.NoticeFromError(node.path, statError(node.path, err), true))
			continue
		}

		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				continue
			}
			if err := visit(types.FileHandle{Path: node.path, Index: index, Size: info.Size()}); err != nil {
				return err
			}
			index++
			continue
		}

		canonical, err := filepath.EvalSymlinks(node.path)
		if err != nil {
			w.notice(types.NoticeFromError(node.path, statError(node.path, err), true))
			continue
		}
		if visited[canonical] {
			continue
		}
		visited[canonical] = true

		entries, err := os.ReadDir(node.path)
		if err != nil {
			listErr := statError(node.path, err)
			if node.root {
				return listErr
			}
			w.notice(types.NoticeFromError(node.path, listErr, true))
			continue
		}

		// Push in reverse so the smallest name is popped first
		for i := len(entries) - 1; i >= 0; i-- {
			entry := entries[i]
			if w.skip(entry) {
				continue
			}
			stack = append(stack, pending{path: filepath.Join(node.path, entry.Name())})
		}
	}

	return nil
}

// Collect walks root and returns every discovered file, in order
func (w *Walker) Collect(ctx context.Context, root string) ([]types.FileHandle, error) {
	var files []types.FileHandle
	err := w.Walk(ctx, root, func(fh types.FileHandle) error {
		files = append(files, fh)
		return nil
	})
	return files, err
}

// skip applies the hidden and excluded-directory rules to an entry
func (w *Walker) skip(entry fs.DirEntry) bool {
	name := entry.Name()
	if w.opts.SkipHidden && strings.HasPrefix(name, ".") {
		return true
	}
	if entry.IsDir() && w.exclude[name] {
		return true
	}
	return false
}

func (w *Walker) notice(n types.Notice) {
	if w.opts.OnNotice != nil {
		w.opts.OnNotice(n)
	}
}

// rootError maps a failure to stat the root onto the fatal error kinds
func rootError(root string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return types.NewError(types.KindPathNotFound, root, err)
	case errors.Is(err, fs.ErrPermission):
		return types.NewError(types.KindPermissionDenied, root, err)
	default:
		return types.NewError(types.KindIoError, root, fmt.Errorf("failed to stat root: %w", err))
	}
}

// statError classifies a failure below the root
func statError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return types.NewError(types.KindPermissionDenied, path, err)
	case errors.Is(err, fs.ErrNotExist):
		return types.NewError(types.KindPathNotFound, path, err)
	default:
		return types.NewError(types.KindIoError, path, err)
	}
}
