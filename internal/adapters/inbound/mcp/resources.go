package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const associationsURI = "patchkraft://associations"

// registerResources registers all patchkraft MCP resources on the given server.
func registerResources(s *server.MCPServer, p project) {
	s.AddResource(
		mcplib.NewResource(
			associationsURI,
			"Associations",
			mcplib.WithResourceDescription("Remembered patch targets keyed by source checksum"),
			mcplib.WithMIMEType("application/json"),
		),
		handleAssociationsResource(p),
	)
}

func handleAssociationsResource(p project) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := loadAssociations(p)
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling associations: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      associationsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
