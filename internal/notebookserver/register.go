// Package notebookserver exposes NotebookLM browser automation as MCP
// tools: source ingestion, audio overview generation and retrieval,
// studio cleanup, and connection diagnostics.
package notebookserver

import (
	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/sources"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/studio"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all notebook tools on the given MCP server.
// Every tool drives the same browser session; sess owns its lifecycle
// and serializes the DOM work.
func RegisterTools(server *mcp.Server, sess *engine.Session) {
	srcMgr := sources.NewManager(sess)
	audioMgr := studio.NewManager(sess)

	registerSourceAdd(server, srcMgr)
	registerSourceClear(server, srcMgr)
	registerAudioGenerate(server, audioMgr)
	registerAudioStatus(server, audioMgr)
	registerAudioGetURL(server, audioMgr)
	registerAudioDownload(server, audioMgr)
	registerStudioClear(server, audioMgr)
	registerNotebookStatus(server, sess)
	registerNotebookScreenshot(server, sess)
}
