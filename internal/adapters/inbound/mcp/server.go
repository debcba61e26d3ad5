package mcp

import (
	"io"

	"github.com/mark3labs/mcp-go/server"
)

// NewPatchkraftMCPServer creates an MCP server with all patchkraft tools and
// resources registered. projectPath is the directory holding
// .patchkraft.yaml; logs go to logOut, never to the stdio transport.
func NewPatchkraftMCPServer(projectPath string, logOut io.Writer) *server.MCPServer {
	s := server.NewMCPServer(
		"patchkraft",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	p := project{path: projectPath, logOut: logOut}
	registerTools(s, p)
	registerResources(s, p)

	return s
}
