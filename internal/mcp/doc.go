// Package mcp implements the Model Context Protocol (MCP) server for chunkgrep.
//
// The MCP server exposes two tools to AI coding assistants:
//   - search_text: Search a file or directory for a literal string
//   - get_limits: Report the parallelism limit and defaults
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server reads requests from stdin and writes responses to stdout, so
// all logging goes to stderr.
//
// # Basic Usage
//
// The MCP server is started via the serve command:
//
//	chunkgrep serve
//
// # Tool: search_text
//
//	Request:
//	{
//	  "name": "search_text",
//	  "arguments": {
//	    "path": "/path/to/tree",
//	    "pattern": "TODO",
//	    "ignore_case": true,
//	    "parallelism": 4,
//	    "chunk_size": 1000,
//	    "limit": 100
//	  }
//	}
//
//	Response:
//	{
//	  "status": "warnings",
//	  "matches": [
//	    {"path": "/path/to/tree/main.go", "line": 12, "content": "// TODO: retry"}
//	  ],
//	  "total_matches": 1,
//	  "truncated": false,
//	  "notices": [
//	    {"path": "/path/to/tree/secret", "kind": "io",
//	     "message": "...", "skipped": true}
//	  ],
//	  "files_scanned": 41,
//	  "files_matched": 1,
//	  "files_skipped": 1,
//	  "bytes_scanned": 183422,
//	  "duration_ms": 7
//	}
//
// Matches are in discovery order (lexicographic by path) and line order.
// When more than limit lines match, the first limit are returned and
// truncated is true; total_matches still counts all of them.
//
// # Tool: get_limits
//
//	Response:
//	{
//	  "max_parallelism": 8,
//	  "default_parallelism": 1,
//	  "default_chunk_size": 1000,
//	  "default_limit": 1000,
//	  "max_limit": 10000,
//	  "search_in_progress": false
//	}
//
// # Concurrency
//
// Each search already runs its own worker pool, so the server runs one
// search at a time. A call that arrives while another is running fails
// immediately with ErrorCodeSearchInProgress (-32002).
//
// # Error Codes
//
//	-32602  Invalid parameters (bad path, limit, parallelism, chunk_size)
//	-32603  Internal error (search interrupted)
//	-32001  Path not found or not readable
//	-32002  Search already in progress
//	-32004  Empty pattern
package mcp
