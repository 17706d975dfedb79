package notebookserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSourceAdd(server *mcp.Server, mgr *sources.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "source_add",
		Description: "Add sources to the notebook. Accepts url, youtube, and text sources; URL-like sources submitted together are grouped into a single dialog pass. Returns per-source results and an overall_success flag.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input sources.AddInput) (*mcp.CallToolResult, sources.AddOutput, error) {
		if len(input.Sources) == 0 {
			return nil, sources.AddOutput{}, errors.New("at least one source is required")
		}
		for _, s := range input.Sources {
			switch s.Type {
			case sources.TypeURL, sources.TypeYouTube, sources.TypeText:
			default:
				return nil, sources.AddOutput{}, fmt.Errorf("unknown source type %q: must be url, youtube, or text", s.Type)
			}
		}

		results, err := mgr.Add(ctx, input.Sources)
		if err != nil {
			return nil, sources.AddOutput{}, err
		}

		overall := true
		for _, r := range results {
			if !r.Success {
				overall = false
				break
			}
		}
		return nil, sources.AddOutput{OverallSuccess: overall, Results: results}, nil
	})
}

func registerSourceClear(server *mcp.Server, mgr *sources.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "source_clear",
		Description: "Remove all sources from the notebook one by one. Returns how many were removed; success is false when nothing was removed.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, engine.ClearResult, error) {
		result, err := mgr.ClearAll(ctx)
		if err != nil {
			return nil, engine.ClearResult{}, err
		}
		return nil, result, nil
	})
}
