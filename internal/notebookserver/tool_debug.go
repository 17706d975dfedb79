package notebookserver

import (
	"context"
	"encoding/base64"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/toolutil"
	"github.com/go-rod/rod"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerNotebookStatus(server *mcp.Server, sess *engine.Session) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_status",
		Description: "Report the browser session state: page URL and title, detected UI language, artifact count, and a markdown preview of the studio library. Never fails; connection problems are reported in the error field.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, engine.StatusReport, error) {
		var report engine.StatusReport
		err := sess.WithPage(ctx, func(p *rod.Page) error {
			report.Connected = true
			if info, ierr := p.Info(); ierr == nil {
				report.PageURL = info.URL
				report.PageTitle = info.Title
			}
			report.Language = sess.Lang()
			report.SessionID = sess.ID()

			engine.EnsurePanel(ctx, p, "artifact-library", sess.Text("studio_tab"))

			has, lib, herr := p.Has("artifact-library")
			if herr != nil || !has {
				return nil
			}
			report.LibraryPresent = true
			if items, ierr := p.Elements("artifact-library > *"); ierr == nil {
				report.ArtifactCount = len(items)
			}
			if html, herr := lib.HTML(); herr == nil {
				report.LibraryPreview = toolutil.MarkdownPreview(ctx, html, 500)
			}
			return nil
		})
		if err != nil {
			report.Connected = false
			report.Error = err.Error()
		}
		return nil, report, nil
	})
}

func registerNotebookScreenshot(server *mcp.Server, sess *engine.Session) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "notebook_screenshot",
		Description: "Capture a PNG screenshot of the notebook page. Saves to a file when save_to is given, otherwise returns the image base64-encoded.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ScreenshotInput) (*mcp.CallToolResult, engine.ScreenshotResult, error) {
		var shot []byte
		err := sess.WithPage(ctx, func(p *rod.Page) error {
			var serr error
			shot, serr = p.Screenshot(input.FullPage, nil)
			return serr
		})
		if err != nil {
			return nil, engine.ScreenshotResult{}, err
		}

		if input.SaveTo != "" {
			path, serr := toolutil.SaveFile(input.SaveTo, shot)
			if serr != nil {
				return nil, engine.ScreenshotResult{}, serr
			}
			return nil, engine.ScreenshotResult{Saved: true, Path: path, Size: len(shot)}, nil
		}
		return nil, engine.ScreenshotResult{
			Size:   len(shot),
			Base64: base64.StdEncoding.EncodeToString(shot),
		}, nil
	})
}
