package notebookserver

import (
	"context"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/studio"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerStudioClear(server *mcp.Server, mgr *studio.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "studio_clear",
		Description: "Delete all generated artifacts from the studio panel one by one. Returns how many were removed, or a message when the panel has no generated items.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, engine.ClearResult, error) {
		result, err := mgr.ClearAll(ctx)
		if err != nil {
			return nil, engine.ClearResult{}, err
		}
		return nil, result, nil
	})
}
