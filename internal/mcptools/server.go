package mcptools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// NewServer creates an MCP server with the navigation tools registered.
func NewServer(tools *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		"gosym-mcp",
		Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(positionTool("find_definition",
		"Find the declaration of the Go identifier at a position. Returns path:line:column followed by the kind and name of the declaration."),
		tools.FindDefinition)

	s.AddTool(positionTool("infer_type",
		"Infer the static type of the Go identifier at a position."),
		tools.InferType)

	s.AddTool(positionTool("find_references",
		"List the declaration of the Go identifier at a position and every identifier referring to it, one path:line:column per line."),
		tools.FindReferences)

	return s
}

// positionTool declares a tool taking a source position.
func positionTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Path of the Go file, absolute or relative to the project root"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line number"),
		),
		mcp.WithNumber("column",
			mcp.Required(),
			mcp.Description("1-based column in bytes"),
		),
	)
}
