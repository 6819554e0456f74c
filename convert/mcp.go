package convert

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/docport/encode"
)

// RegisterMCP registers docport tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerConvertTool(srv)
	s.registerFormatsTool(srv)
}

type convertToolArgs struct {
	Path   string `json:"path" jsonschema:"File path of the source document or image"`
	Target string `json:"target" jsonschema:"Target format: pdf, docx, txt, jpg, png or md"`
	Output string `json:"output,omitempty" jsonschema:"Optional output path; defaults to the source path with the target extension"`
}

func (s *Service) registerConvertTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docport_convert",
		Description: "Convert a document or image to another format (pdf, docx, txt, jpg, png, md).",
	}

	mcp.AddTool(srv, tool, func(ctx context.Context, _ *mcp.CallToolRequest, args convertToolArgs) (*mcp.CallToolResult, map[string]any, error) {
		target, err := encode.ParseFormat(args.Target)
		if err != nil {
			return nil, nil, err
		}

		data, err := os.ReadFile(args.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("read source: %w", err)
		}

		ext := strings.ToLower(filepath.Ext(args.Path))
		mimeType := mime.TypeByExtension(ext)
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		if _, err := s.SelectSource(filepath.Base(args.Path), mimeType, data); err != nil {
			return nil, nil, err
		}
		res, err := s.Convert(ctx, target)
		if err != nil {
			return nil, nil, err
		}

		out := args.Output
		if out == "" {
			out = filepath.Join(filepath.Dir(args.Path), res.Filename)
		}
		if err := os.WriteFile(out, res.Payload, 0o644); err != nil {
			return nil, nil, fmt.Errorf("write output: %w", err)
		}

		return nil, map[string]any{
			"output":       out,
			"content_type": res.ContentType,
			"bytes":        len(res.Payload),
		}, nil
	})
}

type formatsToolArgs struct{}

func (s *Service) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docport_formats",
		Description: "List all supported conversion target formats.",
	}

	mcp.AddTool(srv, tool, func(_ context.Context, _ *mcp.CallToolRequest, _ formatsToolArgs) (*mcp.CallToolResult, map[string]any, error) {
		return nil, map[string]any{"formats": encode.SupportedFormats()}, nil
	})
}
