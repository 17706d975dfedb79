package notebookserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/studio"
	"github.com/anatolykoptev/go_notebooklm/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerAudioGenerate(server *mcp.Server, mgr *studio.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "audio_generate",
		Description: "Start audio overview generation from the current notebook sources. Optional style (deep_dive, summary, critique, debate), focus prompt, language, and duration. Returns a job_id for polling; generation continues in the background.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input studio.GenerateOptions) (*mcp.CallToolResult, studio.GenerateOutput, error) {
		jobID, err := mgr.Generate(ctx, input)
		if err != nil {
			return nil, studio.GenerateOutput{}, err
		}
		return nil, studio.GenerateOutput{JobID: jobID, Status: "started"}, nil
	})
}

func registerAudioStatus(server *mcp.Server, mgr *studio.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "audio_status",
		Description: "Check the state of an audio generation job: generating, completed, failed, or unknown. Includes the episode title and, once completed, the direct download URL.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input studio.JobRef) (*mcp.CallToolResult, studio.StatusOutput, error) {
		if input.JobID == "" {
			return nil, studio.StatusOutput{}, errors.New("job_id is required")
		}

		st, err := mgr.Status(ctx, input.JobID)
		if err != nil {
			return nil, studio.StatusOutput{}, err
		}

		out := studio.StatusOutput{
			JobID:  input.JobID,
			Status: st.Status,
			Title:  st.Title,
			Reason: st.Reason,
		}
		if st.Status == engine.StatusCompleted {
			if url, ok, uerr := mgr.DownloadURL(ctx, input.JobID); uerr == nil && ok {
				out.DownloadURL = url
			}
		}
		return nil, out, nil
	})
}

func registerAudioGetURL(server *mcp.Server, mgr *studio.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "audio_get_url",
		Description: "Return the direct media URL of a completed audio overview, captured from the player's network traffic. Fails while the job is still generating.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input studio.JobRef) (*mcp.CallToolResult, studio.URLOutput, error) {
		if input.JobID == "" {
			return nil, studio.URLOutput{}, errors.New("job_id is required")
		}

		st, err := mgr.Status(ctx, input.JobID)
		if err != nil {
			return nil, studio.URLOutput{}, err
		}
		if st.Status != engine.StatusCompleted {
			return nil, studio.URLOutput{}, fmt.Errorf("audio generation not completed: status is %s", st.Status)
		}

		url, ok, err := mgr.DownloadURL(ctx, input.JobID)
		if err != nil {
			return nil, studio.URLOutput{}, err
		}
		if !ok {
			return nil, studio.URLOutput{}, errors.New("could not retrieve the download url")
		}
		return nil, studio.URLOutput{URL: url}, nil
	})
}

func registerAudioDownload(server *mcp.Server, mgr *studio.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "audio_download",
		Description: "Download a completed audio overview to disk. Uses the browser's download flow, or a direct media fetch when attached to a remote browser. Returns the saved file's name, size, and path.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input studio.DownloadInput) (*mcp.CallToolResult, studio.FileOutput, error) {
		if input.JobID == "" {
			return nil, studio.FileOutput{}, errors.New("job_id is required")
		}

		st, err := mgr.Status(ctx, input.JobID)
		if err != nil {
			return nil, studio.FileOutput{}, err
		}
		if st.Status != engine.StatusCompleted {
			return nil, studio.FileOutput{}, fmt.Errorf("audio generation not completed: status is %s", st.Status)
		}

		var (
			res   engine.DownloadResult
			found bool
		)
		if engine.Cfg.BrowserWSEndpoint != "" {
			res, found, err = mgr.DownloadViaFetch(ctx, input.JobID)
		} else {
			res, found, err = mgr.DownloadFile(ctx, input.JobID)
		}
		if err != nil {
			return nil, studio.FileOutput{}, err
		}
		if !found {
			return nil, studio.FileOutput{}, errors.New("audio download failed, see server logs")
		}

		dest := input.SaveTo
		if dest == "" {
			dest = filepath.Join(engine.Cfg.DownloadDir, res.FileName)
		}
		path, err := toolutil.SaveFile(dest, res.Data)
		if err != nil {
			return nil, studio.FileOutput{}, err
		}
		return nil, studio.FileOutput{FileName: res.FileName, Size: res.Size, Path: path}, nil
	})
}
