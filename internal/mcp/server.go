package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/chunkgrep/internal/config"
	"github.com/dshills/chunkgrep/internal/searcher"
	"github.com/dshills/chunkgrep/internal/walker"
)

const (
	// ServerName is the MCP server name
	ServerName = "chunkgrep"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	searcher *searcher.Searcher
	cfg      *config.Config
	logger   *slog.Logger
	lock     SearchLock
}

// NewServer creates a new MCP server instance. cfg supplies the defaults for
// arguments a tool call leaves out.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	srch := searcher.New(logger, searcher.WithWalkOptions(walker.Options{
		SkipHidden:  cfg.SkipHidden,
		ExcludeDirs: cfg.ExcludeDirs,
	}))

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:      mcpServer,
		searcher: srch,
		cfg:      cfg,
		logger:   logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve runs the MCP protocol over in and out until ctx is cancelled or in
// is closed
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("MCP server ready, listening on stdio", "name", ServerName, "version", ServerVersion)
	return stdio.Listen(ctx, in, out)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchTextTool(), s.handleSearchText)
	s.mcp.AddTool(getLimitsTool(), s.handleGetLimits)
	return nil
}
