// Package mcp exposes the visualization pipeline as Model Context Protocol
// tools, so assistants can ask for industrial real-estate charts directly.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"iipviz/internal/chart"
	"iipviz/internal/model"
	"iipviz/internal/service"
)

// Service is the part of the pipeline the tools call
type Service interface {
	Visualize(ctx context.Context, req *model.VisualizeRequest) (*model.VisualizationPayload, error)
	Provinces() *model.ProvincesResponse
}

// NewServer creates an MCP server with the visualization tools registered
func NewServer(svc Service, version string, logger zerolog.Logger) *server.MCPServer {
	if version == "" {
		version = "dev"
	}

	s := server.NewMCPServer(
		"iipviz",
		version,
		server.WithToolCapabilities(false),
	)

	registerVisualizeTool(s, svc, logger)
	registerProvincesTool(s, svc)
	return s
}

// ServeStdio serves s on standard input and output until stdin closes
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerVisualizeTool(s *server.MCPServer, svc Service, logger zerolog.Logger) {
	tool := mcp.NewTool("visualize_industrial_query",
		mcp.WithDescription("Draw a chart answering a question about Vietnamese industrial zones or clusters (land rental price in USD/m², area in hectares), e.g. \"Vẽ biểu đồ giá thuê đất các KCN ở Bắc Ninh\". Returns the PNG chart and the ranked items; item indexes match the numbers on the chart."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The question, in Vietnamese or English"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		payload, err := svc.Visualize(ctx, &model.VisualizeRequest{Query: query})
		if err != nil {
			errPayload, known := service.ToErrorPayload(err)
			if !known {
				logger.Error().Err(err).Str("query", query).Msg("MCP visualization failed")
			}
			data, _ := json.Marshal(errPayload)
			return mcp.NewToolResultError(string(data)), nil
		}

		// the chart travels as image content; the text part carries the rest
		textPayload := *payload
		textPayload.Chart = ""
		data, err := json.MarshalIndent(textPayload, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode error: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewImageContent(payload.Chart, chart.MIMETypePNG),
				mcp.NewTextContent(string(data)),
			},
		}, nil
	})
}

func registerProvincesTool(s *server.MCPServer, svc Service) {
	tool := mcp.NewTool("list_provinces",
		mcp.WithDescription("List the provinces present in the industrial zone dataset, for use in visualize_industrial_query questions."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.MarshalIndent(svc.Provinces(), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode error: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}
