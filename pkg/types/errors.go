package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised by the scanning engine
type ErrorKind string

const (
	KindConfig           ErrorKind = "config"
	KindPathNotFound     ErrorKind = "path_not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindIoError          ErrorKind = "io"
	KindDecode           ErrorKind = "decode"
	KindWorker           ErrorKind = "worker"
)

// Sentinel errors, one per kind, usable with errors.Is
var (
	ErrConfig           = errors.New("invalid configuration")
	ErrPathNotFound     = errors.New("path not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIo               = errors.New("read error")
	ErrDecode           = errors.New("decode error")
	ErrWorker           = errors.New("worker failure")
)

// Configuration validation errors
var (
	ErrEmptyPattern       = errors.New("pattern cannot be empty")
	ErrEmptyRoot          = errors.New("root path is required")
	ErrInvalidParallelism = errors.New("parallelism out of range")
	ErrInvalidChunkSize   = errors.New("chunk size must be > 0")
	ErrInvalidQueue       = errors.New("queue capacity must be >= 0")
)

// SearchError carries the kind of failure and the path it concerns
type SearchError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewError builds a SearchError
func NewError(kind ErrorKind, path string, err error) *SearchError {
	return &SearchError{Kind: kind, Path: path, Err: err}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.sentinel(), e.Path, e.Err)
}

// Unwrap exposes the underlying error
func (e *SearchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *SearchError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *SearchError) sentinel() error {
	switch e.Kind {
	case KindConfig:
		return ErrConfig
	case KindPathNotFound:
		return ErrPathNotFound
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindDecode:
		return ErrDecode
	case KindWorker:
		return ErrWorker
	default:
		return ErrIo
	}
}

// KindOf returns the kind of a SearchError in err's chain, or "" if none
func KindOf(err error) ErrorKind {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsFatal reports whether err must abort the run before scanning
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindConfig, KindPathNotFound, KindPermissionDenied:
		return true
	default:
		return false
	}
}
