package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Limits for the search_text tool
const (
	DefaultLimit = 1000
	MaxLimit     = 10000
)

// searchTextTool returns the tool definition for search_text
func searchTextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_text",
		Description: "Search a file or directory tree for lines containing a literal string",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to a file or directory to search",
				},
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Literal text to find (no regular expressions)",
				},
				"ignore_case": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, match using Unicode case folding",
					"default":     false,
				},
				"parallelism": map[string]interface{}{
					"type":        "integer",
					"description": "Number of matching workers (1 to the number of CPUs)",
					"minimum":     1,
				},
				"chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Lines handed to a worker at once",
					"minimum":     1,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of matches to return (1-10000)",
					"default":     DefaultLimit,
					"minimum":     1,
					"maximum":     MaxLimit,
				},
			},
			Required: []string{"path", "pattern"},
		},
	}
}

// getLimitsTool returns the tool definition for get_limits
func getLimitsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_limits",
		Description: "Report the parallelism limit and defaults used by search_text",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
