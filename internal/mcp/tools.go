package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/chunkgrep/internal/aggregator"
	"github.com/dshills/chunkgrep/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodePathNotFound     = -32001 // Search root does not exist or cannot be read
	ErrorCodeSearchInProgress = -32002 // Another search is already running
	ErrorCodeEmptyPattern     = -32004 // Pattern parameter is empty
)

// handleSearchText handles the search_text tool invocation
func (s *Server) handleSearchText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return nil, newMCPError(ErrorCodeEmptyPattern, "pattern parameter is required and cannot be empty", map[string]interface{}{
			"param":  "pattern",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrPathNotFound) || errors.Is(err, ErrPathNotReadable) {
			code = ErrorCodePathNotFound
		}
		return nil, newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	limit := getIntDefault(args, "limit", DefaultLimit)
	if limit < 1 || limit > MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", MaxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	cfg := s.cfg.SearchConfig(pattern, path)
	cfg.IgnoreCase = getBoolDefault(args, "ignore_case", s.cfg.IgnoreCase)
	cfg.Parallelism = getIntDefault(args, "parallelism", s.cfg.Parallelism)
	cfg.ChunkSize = getIntDefault(args, "chunk_size", s.cfg.ChunkSize)

	if err := cfg.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search parameters", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeSearchInProgress, "another search is already running", nil)
	}
	defer s.lock.Release()

	sink := &aggregator.LimitedCollector{Limit: limit}
	summary, err := s.searcher.Search(ctx, cfg, sink)
	if err != nil {
		code := ErrorCodeInternalError
		switch types.KindOf(err) {
		case types.KindPathNotFound, types.KindPermissionDenied:
			code = ErrorCodePathNotFound
		case types.KindConfig:
			code = ErrorCodeInvalidParams
		}
		return nil, newMCPError(code, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	matches := sink.Records
	if matches == nil {
		matches = []types.MatchRecord{}
	}
	notices := summary.Notices
	if notices == nil {
		notices = []types.Notice{}
	}

	response := map[string]interface{}{
		"run_id":        summary.RunID,
		"status":        summary.Status,
		"matches":       matches,
		"total_matches": summary.Matches,
		"truncated":     sink.Truncated(),
		"notices":       notices,
		"files_scanned": summary.FilesScanned,
		"files_matched": summary.FilesMatched,
		"files_skipped": summary.FilesSkipped,
		"bytes_scanned": summary.Bytes,
		"duration_ms":   summary.Duration.Milliseconds(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetLimits handles the get_limits tool invocation
func (s *Server) handleGetLimits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"max_parallelism":     types.MaxParallelism(),
		"default_parallelism": s.cfg.Parallelism,
		"default_chunk_size":  s.cfg.ChunkSize,
		"default_limit":       DefaultLimit,
		"max_limit":           MaxLimit,
		"search_in_progress":  s.lock.Held(),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that path is absolute and names an existing file or
// directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		return ErrNotSearchable
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotSearchable   = errors.New("path is neither a regular file nor a directory")
)
