package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/patchkraft/patchkraft/internal/adapters/outbound/codec"
	"github.com/patchkraft/patchkraft/internal/adapters/outbound/filesystem"
	"github.com/patchkraft/patchkraft/internal/application"
	"github.com/patchkraft/patchkraft/internal/bootstrap"
	"github.com/patchkraft/patchkraft/internal/domain"
)

// project is reloaded on every call so config edits apply without a restart.
type project struct {
	path   string
	logOut io.Writer
}

func (p project) load() (*bootstrap.Env, error) {
	return bootstrap.Load(p.path, "", p.logOut)
}

// resolve makes a tool argument path relative to the project directory.
func (p project) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.path, name)
}

// registerTools registers all patchkraft MCP tools on the given server.
func registerTools(s *server.MCPServer, p project) {
	// 1. patchkraft_apply
	s.AddTool(
		mcplib.NewTool("patchkraft_apply",
			mcplib.WithDescription("Apply IPS or BPS patches and return the batch report as JSON"),
			mcplib.WithString("patches",
				mcplib.Required(),
				mcplib.Description("Comma-separated patch paths, relative to the project directory"),
			),
			mcplib.WithString("target",
				mcplib.Description("Apply every patch to this file (relative to the project directory). Without it, targets are found from the patches"),
			),
			mcplib.WithBoolean("auto_match",
				mcplib.Description("Find targets for patches that identify them (defaults to the project setting)"),
			),
			mcplib.WithString("output",
				mcplib.Description("Output path relative to the project directory, only for a single patch"),
			),
		),
		handleApply(p),
	)

	// 2. patchkraft_find_target
	s.AddTool(
		mcplib.NewTool("patchkraft_find_target",
			mcplib.WithDescription("Find the target file a patch was made for"),
			mcplib.WithString("patch",
				mcplib.Required(),
				mcplib.Description("Path of the patch, relative to the project directory"),
			),
		),
		handleFindTarget(p),
	)

	// 3. patchkraft_associations
	s.AddTool(
		mcplib.NewTool("patchkraft_associations",
			mcplib.WithDescription("Returns the remembered patch targets as JSON"),
		),
		handleAssociations(p),
	)
}

func handleApply(p project) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		patchesStr, err := request.RequireString("patches")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		var patches []string
		for _, name := range strings.Split(patchesStr, ",") {
			if name = strings.TrimSpace(name); name != "" {
				patches = append(patches, p.resolve(name))
			}
		}

		env, err := p.load()
		if err != nil {
			return errorResult(err.Error()), nil
		}

		args := request.GetArguments()
		opts := application.ApplyOptions{Patches: patches, AutoMatch: env.Config.AutoMatch}
		if target, ok := args["target"].(string); ok {
			opts.Target = p.resolve(target)
		}
		if auto, ok := args["auto_match"].(bool); ok {
			opts.AutoMatch = auto
		}
		if output, ok := args["output"].(string); ok {
			if output != "" && len(patches) > 1 {
				return errorResult("output needs exactly one patch"), nil
			}
			opts.Output = p.resolve(output)
		}

		report, err := env.Service(bootstrap.NoPicker{}).Apply(ctx, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("apply failed: %v", err)), nil
		}
		env.Record(report)
		return jsonResult(report)
	}
}

type targetResult struct {
	Patch              string `json:"patch"`
	Format             string `json:"format"`
	Target             string `json:"target,omitempty"`
	PossiblyApplicable bool   `json:"possibly_applicable"`
}

func handleFindTarget(p project) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("patch")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		name = p.resolve(name)

		env, err := p.load()
		if err != nil {
			return errorResult(err.Error()), nil
		}

		file, err := filesystem.New().Open(name)
		if err != nil {
			return errorResult(fmt.Sprintf("opening patch: %v", err)), nil
		}
		defer file.Close()

		info, err := codec.Identify(file)
		if err != nil {
			return errorResult(fmt.Sprintf("reading patch: %v", err)), nil
		}
		target, possible := env.Store.FindTarget(ctx, domain.Patch{Name: name, File: file})
		return jsonResult(targetResult{
			Patch:              name,
			Format:             info.Format.String(),
			Target:             target,
			PossiblyApplicable: possible,
		})
	}
}

func handleAssociations(p project) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		entries, err := loadAssociations(p)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(entries)
	}
}

func loadAssociations(p project) ([]domain.Association, error) {
	env, err := p.load()
	if err != nil {
		return nil, err
	}
	entries, err := env.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading associations: %w", err)
	}
	if entries == nil {
		entries = []domain.Association{}
	}
	return entries, nil
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
