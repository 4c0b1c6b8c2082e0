// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package mcpserver exposes DVC command assembly and pipeline resolution as
// MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mlvtools/mlvtools/internal/config"
	"github.com/mlvtools/mlvtools/internal/export"
	"github.com/mlvtools/mlvtools/internal/gendvc"
)

// Tool names.
const (
	ToolDvcCommandData  = "dvc_command_data"
	ToolResolvePipeline = "resolve_pipeline"
)

// New returns an MCP server with every mlvtools tool registered.
func New(version string) *server.MCPServer {
	s := server.NewMCPServer("mlvtools", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool(ToolDvcCommandData,
		mcp.WithDescription("Assemble the DVC command template data of a Python step script from the "+
			"dvc annotations of its first function docstring."),
		mcp.WithString("script", mcp.Required(),
			mcp.Description("Path of the Python script.")),
		mcp.WithString("working_directory",
			mcp.Description("Project top directory. Defaults to the git top directory of the script.")),
	), handleDvcCommandData)

	s.AddTool(mcp.NewTool(ToolResolvePipeline,
		mcp.WithDescription("List, in execution order, the DVC steps needed to reproduce a pipeline step."),
		mcp.WithString("dvc", mcp.Required(),
			mcp.Description("Path of the targeted .dvc metadata file.")),
	), handleResolvePipeline)

	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func Serve(version string) error {
	slog.Debug("Serving MCP tools on stdio.")
	return server.ServeStdio(New(version))
}

func handleDvcCommandData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script, err := req.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workDir := req.GetString("working_directory", "")
	if workDir == "" {
		if workDir, err = config.WorkDirectory(ctx, filepath.Dir(script)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	cfg, err := config.LoadFrom(config.DefaultPath(workDir), workDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := gendvc.CommandData(script, cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(data)
}

func handleResolvePipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("dvc")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	steps, err := export.Steps(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(steps)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
