package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/net/html"
)

// librarySelector is the studio panel's artifact list. Its direct children
// are the generated items, newest last; job identifiers index into this
// list 1-based.
const librarySelector = "artifact-library"

// Styles accepted by Generate, matching the dialog's radio row.
var validStyles = map[string]bool{
	"deep_dive": true,
	"summary":   true,
	"critique":  true,
	"debate":    true,
}

// GenerateOptions mirror the audio overview dialog controls. Zero values
// leave the corresponding control at its dialog default.
type GenerateOptions struct {
	Style    string `json:"style,omitempty" jsonschema:"conversation style: deep_dive, summary, critique, or debate"`
	Prompt   string `json:"prompt,omitempty" jsonschema:"focus prompt steering what the hosts talk about"`
	Language string `json:"language,omitempty" jsonschema:"output language as its option reads in the dialog, e.g. English"`
	Duration string `json:"duration,omitempty" jsonschema:"episode length: short or default"`
}

// JobStatus classifies one generated artifact.
type JobStatus struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// JobRef selects a generated artifact by the identifier Generate returned.
type JobRef struct {
	JobID string `json:"job_id" jsonschema:"job identifier returned by audio_generate"`
}

// GenerateOutput is the audio_generate tool result.
type GenerateOutput struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// StatusOutput is the audio_status tool result.
type StatusOutput struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status" jsonschema:"generating, completed, failed, or unknown"`
	Title       string `json:"title,omitempty"`
	DownloadURL string `json:"download_url,omitempty" jsonschema:"direct media url, present once completed"`
	Reason      string `json:"reason,omitempty" jsonschema:"diagnostic when status is unknown"`
}

// URLOutput is the audio_get_url tool result.
type URLOutput struct {
	URL string `json:"url"`
}

// DownloadInput selects an artifact and an optional destination path.
type DownloadInput struct {
	JobID  string `json:"job_id" jsonschema:"job identifier returned by audio_generate"`
	SaveTo string `json:"save_to,omitempty" jsonschema:"destination file path; defaults to the download directory"`
}

// FileOutput is the audio_download tool result.
type FileOutput struct {
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
}

// Manager drives the Studio panel: audio generation, status, retrieval
// and cleanup.
type Manager struct {
	sess *engine.Session
}

func NewManager(sess *engine.Session) *Manager {
	return &Manager{sess: sess}
}

// normalizeStyle maps style aliases onto dialog option names. Older
// clients say "criticism"; the dialog option is "critique".
func normalizeStyle(style string) string {
	if style == "criticism" {
		return "critique"
	}
	return style
}

// Generate submits an audio overview request and returns the job
// identifier: the artifact count right after submission, in string form.
// The identifier is positional, so deleting artifacts shifts it.
func (m *Manager) Generate(ctx context.Context, opts GenerateOptions) (string, error) {
	opts.Style = normalizeStyle(opts.Style)
	if opts.Style != "" && !validStyles[opts.Style] {
		return "", fmt.Errorf("unknown audio style %q", opts.Style)
	}

	var jobID string
	err := m.sess.WithPage(ctx, func(p *rod.Page) error {
		engine.EnsurePanel(ctx, p, librarySelector, m.sess.Text("studio_tab"))

		if err := m.openOptionsDialog(p); err != nil {
			return err
		}

		if opts.Style != "" {
			styleText := m.sess.Text(opts.Style + "_radio_button")
			radio, ok := engine.ProbeR(p, "mat-radio-button", engine.TextPattern(styleText))
			if !ok {
				// The caller asked for this style explicitly; silently
				// generating the default would be worse than failing.
				return fmt.Errorf("could not find the %s style option in the audio dialog", opts.Style)
			}
			if cerr := engine.Click(radio); cerr != nil {
				return fmt.Errorf("select %s style: %w", opts.Style, cerr)
			}
		}

		if opts.Language != "" {
			m.selectLanguage(p, opts.Language)
		}
		if opts.Duration != "" {
			m.selectDuration(p, opts.Duration)
		}
		if opts.Prompt != "" {
			m.fillPrompt(p, opts.Prompt)
		}

		if err := m.submitDialog(ctx, p); err != nil {
			return err
		}

		// Let the studio list materialize the new entry before counting.
		engine.Settle(ctx, 2*time.Second)

		items, ierr := artifactItems(p)
		if ierr != nil {
			return fmt.Errorf("count artifacts: %w", ierr)
		}
		jobID = strconv.Itoa(len(items))
		return nil
	})
	if err != nil {
		return "", err
	}

	engine.IncrAudioGenerated()
	slog.Info("audio generation submitted",
		slog.String("job_id", jobID),
		slog.String("style", opts.Style),
		slog.String("duration", opts.Duration))
	return jobID, nil
}

// Status classifies the artifact a job identifier points at. Bad
// identifiers come back as status "unknown" with a reason instead of an
// error: the session is fine, the job just is not there.
func (m *Manager) Status(ctx context.Context, jobID string) (JobStatus, error) {
	st := JobStatus{JobID: jobID, Status: engine.StatusUnknown}

	err := m.sess.WithPage(ctx, func(p *rod.Page) error {
		engine.IncrStatusChecks()
		engine.EnsurePanel(ctx, p, librarySelector, m.sess.Text("studio_tab"))

		index, perr := parseJobID(jobID)
		if perr != nil {
			st.Reason = perr.Error()
			return nil
		}

		items, ierr := artifactItems(p)
		if ierr != nil {
			return fmt.Errorf("list artifacts: %w", ierr)
		}
		if index >= len(items) {
			st.Reason = fmt.Sprintf("job %s not found, %d artifacts present", jobID, len(items))
			return nil
		}

		item := items[index]
		text, terr := item.Text()
		if terr != nil {
			return fmt.Errorf("read artifact text: %w", terr)
		}
		if markup, herr := item.HTML(); herr == nil {
			st.Title = extractTitle(markup)
		}
		st.Status = m.classify(item, text)
		return nil
	})
	return st, err
}

// DownloadURL captures the artifact's direct media URL by starting
// playback and intercepting the first media request. ok=false means the
// URL could not be determined; the error is reserved for session failures.
func (m *Manager) DownloadURL(ctx context.Context, jobID string) (string, bool, error) {
	cacheKey := engine.CacheKey("media", m.sess.ID(), jobID)
	if url, hit := engine.CacheGet(ctx, cacheKey); hit {
		return url, true, nil
	}

	var captured string
	err := m.sess.WithPage(ctx, func(p *rod.Page) error {
		engine.EnsurePanel(ctx, p, librarySelector, m.sess.Text("studio_tab"))

		index, perr := parseJobID(jobID)
		if perr != nil {
			slog.Error("download url rejected", slog.String("job_id", jobID), slog.Any("error", perr))
			return nil
		}

		items, ierr := artifactItems(p)
		if ierr != nil {
			return fmt.Errorf("list artifacts: %w", ierr)
		}
		if index >= len(items) {
			slog.Error("job not found",
				slog.String("job_id", jobID),
				slog.Int("artifacts", len(items)))
			return nil
		}

		item := items[index]
		if serr := item.ScrollIntoView(); serr != nil {
			slog.Debug("scroll to artifact failed", slog.Any("error", serr))
		}

		play, ok := engine.Probe(item, ariaButton(m.sess.Text("play_arrow_button")))
		if !ok {
			slog.Error("play button not found, audio may still be generating",
				slog.String("job_id", jobID))
			return nil
		}

		url, cerr := m.captureMediaURL(ctx, p, play)
		if cerr != nil {
			slog.Error("media capture failed", slog.String("job_id", jobID), slog.Any("error", cerr))
			return nil
		}
		captured = url

		// Stop playback so the next operation starts from a quiet page.
		if closeBtn, ok := engine.Probe(p, ariaButton(m.sess.Text("close_audio_player_button"))); ok {
			if cerr := engine.Click(closeBtn); cerr != nil {
				slog.Debug("player close failed", slog.Any("error", cerr))
			}
		}
		return nil
	})
	if err != nil || captured == "" {
		return "", false, err
	}

	engine.IncrURLCaptures()
	engine.CacheSet(ctx, cacheKey, captured)
	return captured, true, nil
}

// DownloadFile clicks the artifact's Download menu entry and waits for a
// new file to land in the configured download directory, which the
// browser and this process share as a mailbox. The file is read, deleted
// and returned. ok=false on any stage failing; the error is reserved for
// session failures.
func (m *Manager) DownloadFile(ctx context.Context, jobID string) (engine.DownloadResult, bool, error) {
	var res engine.DownloadResult
	found := false

	download := func(p *rod.Page) error {
		engine.EnsurePanel(ctx, p, librarySelector, m.sess.Text("studio_tab"))

		index, perr := parseJobID(jobID)
		if perr != nil {
			slog.Error("download rejected", slog.String("job_id", jobID), slog.Any("error", perr))
			return nil
		}

		dir := engine.Cfg.DownloadDir
		before, serr := snapshotDir(dir)
		if serr != nil {
			slog.Debug("download dir snapshot failed",
				slog.String("dir", dir),
				slog.Any("error", serr))
		}

		items, ierr := artifactItems(p)
		if ierr != nil {
			return fmt.Errorf("list artifacts: %w", ierr)
		}
		if index >= len(items) {
			slog.Error("job not found",
				slog.String("job_id", jobID),
				slog.Int("artifacts", len(items)))
			return nil
		}

		item := items[index]
		if serr := item.ScrollIntoView(); serr != nil {
			slog.Debug("scroll to artifact failed", slog.Any("error", serr))
		}

		more, ok := engine.Probe(item, ariaButton(m.sess.Text("more_button")))
		if !ok {
			slog.Error("more button not found", slog.String("job_id", jobID))
			return nil
		}
		if cerr := engine.Click(more); cerr != nil {
			slog.Error("artifact menu open failed", slog.Any("error", cerr))
			return nil
		}
		engine.Settle(ctx, 500*time.Millisecond)

		menu, ok := engine.ProbeR(p, "[role='menuitem']",
			engine.ExactTextPattern(m.sess.Text("download_menu_item")))
		if !ok {
			slog.Error("download menu item not found", slog.String("job_id", jobID))
			if kerr := p.Keyboard.Type(input.Escape); kerr != nil {
				slog.Debug("menu escape failed", slog.Any("error", kerr))
			}
			return nil
		}

		// Re-point Chrome's download machinery at our directory every
		// time: another client on the same browser may have moved it.
		if berr := allowDownloads(p, dir); berr != nil {
			slog.Warn("setting download behavior failed", slog.Any("error", berr))
		}
		if cerr := engine.Click(menu); cerr != nil {
			slog.Error("download menu click failed", slog.Any("error", cerr))
			return nil
		}

		slog.Info("waiting for download", slog.String("dir", dir), slog.String("job_id", jobID))
		wait := engine.PollConfig{Timeout: engine.Cfg.DownloadTimeout, Interval: 500 * time.Millisecond}
		path, werr := engine.PollUntil(ctx, wait, func() (string, bool) {
			return newCompleteFile(dir, before)
		})
		if werr != nil {
			engine.IncrDownloadErrors()
			slog.Error("download timed out", slog.String("job_id", jobID), slog.Any("error", werr))
			return nil
		}

		// Grace period: the browser may still be flushing the tail.
		engine.Settle(ctx, time.Second)

		data, rerr := os.ReadFile(path)
		if rerr != nil {
			engine.IncrDownloadErrors()
			slog.Error("reading downloaded file failed",
				slog.String("path", path),
				slog.Any("error", rerr))
			return nil
		}
		if rmerr := os.Remove(path); rmerr != nil {
			slog.Debug("downloaded file cleanup failed", slog.Any("error", rmerr))
		}

		res = engine.DownloadResult{
			FileName: filepath.Base(path),
			Size:     int64(len(data)),
			Data:     data,
		}
		found = true
		return nil
	}

	err := engine.TrackOperation(ctx, "audio_download", func(ctx context.Context) error {
		return m.sess.WithPage(ctx, download)
	})
	if err != nil || !found {
		return engine.DownloadResult{}, false, err
	}

	engine.IncrFileDownloads()
	slog.Info("audio downloaded",
		slog.String("file", res.FileName),
		slog.Int64("size", res.Size))
	return res, true, nil
}

// DownloadViaFetch retrieves the audio over plain HTTP from the captured
// media URL. Used when the browser runs on a remote host and its download
// directory is out of reach.
func (m *Manager) DownloadViaFetch(ctx context.Context, jobID string) (engine.DownloadResult, bool, error) {
	url, ok, err := m.DownloadURL(ctx, jobID)
	if err != nil || !ok {
		return engine.DownloadResult{}, false, err
	}

	// Media URLs are request-signed, but some routes still want the
	// session cookies; send them when the page can provide them.
	var cookie string
	if werr := m.sess.WithPage(ctx, func(p *rod.Page) error {
		header, herr := engine.PageCookieHeader(p, url)
		if herr != nil {
			slog.Debug("cookie header unavailable for media fetch", slog.Any("error", herr))
			return nil
		}
		cookie = header
		return nil
	}); werr != nil {
		return engine.DownloadResult{}, false, werr
	}

	data, ferr := engine.FetchMedia(ctx, url, engine.Cfg.NotebookURL, cookie)
	if ferr != nil {
		engine.IncrDownloadErrors()
		slog.Error("media fetch failed", slog.String("job_id", jobID), slog.Any("error", ferr))
		return engine.DownloadResult{}, false, nil
	}

	res := engine.DownloadResult{
		FileName: "audio_" + jobID + ".mp4",
		Size:     int64(len(data)),
		Data:     data,
	}
	engine.IncrFileDownloads()
	return res, true, nil
}

// ClearAll deletes generated artifacts first-to-last until the list is
// empty, a control goes missing, or the attempt bound is hit. Partial
// success is reported, not raised.
func (m *Manager) ClearAll(ctx context.Context) (engine.ClearResult, error) {
	maxAttempts := engine.Cfg.MaxClearAttempts
	if maxAttempts <= 0 {
		maxAttempts = 200
	}
	removed := 0
	initial := 0
	missing := false

	clearLoop := func(p *rod.Page) error {
		engine.EnsurePanel(ctx, p, librarySelector, m.sess.Text("studio_tab"))

		if has, _, herr := p.Has(librarySelector); herr != nil || !has {
			missing = true
			return nil
		}
		if items, ierr := artifactItems(p); ierr == nil {
			initial = len(items)
		}

		for attempt := 0; attempt < maxAttempts; attempt++ {
			items, ierr := artifactItems(p)
			if ierr != nil {
				return fmt.Errorf("list artifacts: %w", ierr)
			}
			if len(items) == 0 {
				break
			}
			prev := len(items)
			item := items.First()
			if serr := item.ScrollIntoView(); serr != nil {
				slog.Debug("scroll to artifact failed", slog.Any("error", serr))
			}

			more, ok := engine.Probe(item, ariaButton(m.sess.Text("more_button")))
			if !ok {
				slog.Warn("could not locate more options for a generated item")
				break
			}
			if cerr := engine.Click(more); cerr != nil {
				slog.Error("artifact menu open failed", slog.Any("error", cerr))
				break
			}

			menu, ok := engine.ProbeR(p, "[role='menuitem']",
				engine.ExactTextPattern(m.sess.Text("delete_menu_item")))
			if !ok {
				slog.Warn("delete menu item not found for a generated item")
				break
			}
			if cerr := engine.Click(menu); cerr != nil {
				slog.Error("delete menu click failed", slog.Any("error", cerr))
				break
			}

			confirm, ok := engine.ProbeR(p, "button",
				engine.ExactTextPattern(m.sess.Text("confirm_delete_button")))
			if !ok {
				slog.Warn("delete confirmation button not found")
				break
			}
			if cerr := engine.Click(confirm); cerr != nil {
				slog.Error("delete confirmation click failed", slog.Any("error", cerr))
				break
			}

			detach := engine.PollConfig{Timeout: 2 * time.Second, Interval: 100 * time.Millisecond}
			if werr := engine.WaitFor(ctx, detach, func() bool {
				left, lerr := artifactItems(p)
				return lerr == nil && len(left) < prev
			}); werr != nil {
				slog.Warn("generated item did not delete cleanly")
			}

			removed++
			if perr := m.sess.Pace(ctx); perr != nil {
				return perr
			}
		}
		return nil
	}

	err := engine.TrackOperation(ctx, "studio_clear", func(ctx context.Context) error {
		return m.sess.WithPage(ctx, clearLoop)
	})

	if missing {
		return engine.ClearResult{Success: false, Count: 0, Message: "no generated items found"}, err
	}
	if removed > 0 {
		engine.IncrArtifactsCleared(removed)
		// Deletion shifts every later artifact down, so all cached media
		// URLs from before the clear are positionally stale.
		for i := 1; i <= initial; i++ {
			engine.CacheInvalidate(ctx, engine.CacheKey("media", m.sess.ID(), strconv.Itoa(i)))
		}
	}
	return engine.ClearResult{Success: removed > 0, Count: removed}, err
}

// openOptionsDialog clicks the audio overview's edit control and waits
// for the options dialog to show.
func (m *Manager) openOptionsDialog(p *rod.Page) error {
	// The pencil icon sits under click-intercepting overlays, so icon
	// hits use a DOM-level click instead of a synthesized mouse event.
	if icon, ok := engine.ProbeR(p, "mat-icon", engine.ExactTextPattern("edit")); ok {
		if _, err := icon.Eval(`() => this.click()`); err != nil {
			return fmt.Errorf("click edit icon: %w", err)
		}
	} else if icon, ok := engine.Probe(p, "mat-icon.edit-button-icon"); ok {
		if _, err := icon.Eval(`() => this.click()`); err != nil {
			return fmt.Errorf("click edit icon: %w", err)
		}
	} else if btn, ok := engine.ProbeX(p, `//button[.//mat-icon[normalize-space()="edit"]]`); ok {
		if err := engine.Click(btn); err != nil {
			return fmt.Errorf("click edit button: %w", err)
		}
	} else {
		return errors.New("could not find the edit control for the audio overview")
	}

	dlg, derr := p.Timeout(engine.Cfg.DialogTimeout).Element("mat-dialog-container")
	if derr != nil {
		return fmt.Errorf("audio options dialog did not open: %w", derr)
	}
	if werr := dlg.WaitVisible(); werr != nil {
		return fmt.Errorf("audio options dialog not visible: %w", werr)
	}
	return nil
}

// selectLanguage picks an output language in the options dialog. A missing
// selector or option keeps the dialog default; escape closes a dropdown
// left hanging open.
func (m *Manager) selectLanguage(p *rod.Page, language string) {
	trigger, ok := engine.Probe(p, "mat-select")
	if !ok {
		return
	}
	if err := engine.Click(trigger); err != nil {
		slog.Warn("language selector click failed", slog.Any("error", err))
		return
	}

	if opt, oerr := p.Timeout(2 * time.Second).Element("mat-option"); oerr == nil {
		if werr := opt.WaitVisible(); werr != nil {
			slog.Debug("language options slow to render", slog.Any("error", werr))
		}
	}

	if opt, ok := engine.ProbeR(p, "mat-option", engine.TextPattern(language)); ok {
		if err := engine.Click(opt); err != nil {
			slog.Warn("language option click failed",
				slog.String("language", language),
				slog.Any("error", err))
		}
		return
	}

	slog.Warn("language option not found, keeping dialog default",
		slog.String("language", language))
	if err := p.Keyboard.Type(input.Escape); err != nil {
		slog.Debug("dropdown escape failed", slog.Any("error", err))
	}
}

// selectDuration clicks the length toggle. Missing toggles are logged and
// skipped: length is a preference, not a contract.
func (m *Manager) selectDuration(p *rod.Page, duration string) {
	text := m.sess.Text("duration_" + duration)
	if text == "" {
		slog.Warn("unknown duration option", slog.String("duration", duration))
		return
	}
	toggle, ok := engine.ProbeR(p, "mat-button-toggle", engine.TextPattern(text))
	if !ok {
		slog.Warn("duration toggle not found", slog.String("duration", duration))
		return
	}
	if err := engine.Click(toggle); err != nil {
		slog.Warn("duration toggle click failed", slog.Any("error", err))
	}
}

// fillPrompt writes the focus prompt into the dialog's free-text area,
// located by placeholder substring with a last-textarea fallback.
func (m *Manager) fillPrompt(p *rod.Page, prompt string) {
	var area *rod.Element
	ok := false
	if snippet := m.sess.Text("prompt_textarea_placeholder"); snippet != "" {
		area, ok = engine.Probe(p, fmt.Sprintf("textarea[placeholder*=%q]", snippet))
	}
	if !ok {
		area, ok = engine.ProbeLast(p, "mat-dialog-container textarea")
	}
	if !ok {
		slog.Warn("prompt textarea not found, skipping focus prompt")
		return
	}
	if err := engine.Fill(area, prompt); err != nil {
		slog.Warn("prompt fill failed", slog.Any("error", err))
	}
}

// submitDialog clicks the generate button and waits briefly for the
// dialog to go away. Dialog-close timeouts are logged, not fatal: the
// generation request usually went through anyway.
func (m *Manager) submitDialog(ctx context.Context, p *rod.Page) error {
	btn, ok := engine.ProbeLastWithText(p, "mat-dialog-actions button", m.sess.Text("generate_button"))
	if !ok {
		btn, ok = engine.ProbeLast(p, "mat-dialog-actions button")
	}
	if !ok {
		return errors.New("could not find the generate button in the dialog actions")
	}
	if err := engine.Click(btn); err != nil {
		return fmt.Errorf("click generate: %w", err)
	}

	hidden := engine.PollConfig{Timeout: 5 * time.Second, Interval: 100 * time.Millisecond}
	if werr := engine.WaitFor(ctx, hidden, func() bool {
		has, el, herr := p.Has("mat-dialog-container")
		if herr != nil {
			return false
		}
		if !has {
			return true
		}
		vis, verr := el.Visible()
		return verr == nil && !vis
	}); werr != nil {
		slog.Warn("options dialog still visible after generate click")
	}
	return nil
}

// captureMediaURL starts playback and waits for the page to request the
// media stream, blocking that request once seen so no bandwidth is spent
// on it. The interceptor is removed on every path.
func (m *Manager) captureMediaURL(ctx context.Context, p *rod.Page, play *rod.Element) (string, error) {
	var mu sync.Mutex
	var captured string

	router := p.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		mu.Lock()
		if captured == "" && h.Request.Type() == proto.NetworkResourceTypeMedia {
			captured = h.Request.URL().String()
			mu.Unlock()
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		mu.Unlock()
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return "", fmt.Errorf("install media interceptor: %w", err)
	}
	go router.Run()
	defer func() {
		if serr := router.Stop(); serr != nil {
			slog.Debug("media interceptor stop failed", slog.Any("error", serr))
		}
	}()

	if cerr := engine.Click(play); cerr != nil {
		return "", fmt.Errorf("click play: %w", cerr)
	}

	capture := engine.PollConfig{Timeout: engine.Cfg.CaptureTimeout, Interval: 100 * time.Millisecond}
	url, perr := engine.PollUntil(ctx, capture, func() (string, bool) {
		mu.Lock()
		defer mu.Unlock()
		return captured, captured != ""
	})
	if perr != nil {
		engine.IncrCaptureTimeouts()
		return "", fmt.Errorf("no media request observed: %w", perr)
	}
	return url, nil
}

// classify maps an artifact's rendered text onto a job status. The list
// shows a sync spinner while generating, a play control once done, and an
// error glyph or localized error text on failure.
func (m *Manager) classify(item *rod.Element, text string) string {
	generating := m.sess.Text("generating_status_text")
	if strings.Contains(text, "sync") || (generating != "" && strings.Contains(text, generating)) {
		return engine.StatusGenerating
	}
	if strings.Contains(text, "play_arrow") {
		return engine.StatusCompleted
	}
	if item != nil {
		if _, ok := engine.ProbeR(item, "mat-icon", engine.ExactTextPattern("play_arrow")); ok {
			return engine.StatusCompleted
		}
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "error") || strings.Contains(lower, strings.ToLower(m.sess.Text("error_text"))) {
		return engine.StatusFailed
	}
	return engine.StatusUnknown
}

// artifactItems returns the studio list entries in render order.
func artifactItems(p *rod.Page) (rod.Elements, error) {
	return p.Elements(librarySelector + " > *")
}

// parseJobID converts a 1-based job identifier to a 0-based index.
func parseJobID(jobID string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(jobID))
	if err != nil {
		return 0, fmt.Errorf("invalid job id %q: must be a positive number", jobID)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid job id %d: identifiers start at 1", n)
	}
	return n - 1, nil
}

// ariaButton builds an exact aria-label button selector.
func ariaButton(label string) string {
	return fmt.Sprintf("button[aria-label=%q]", label)
}

// Artifact title locations across layout revisions, newest first.
var titleSelectors = []string{
	".artifact-title",
	"span.artifact-title",
	".artifact-labels .artifact-title",
	".artifact-labels div span",
	"span.mat-title-small",
}

// extractTitle pulls the artifact's display title out of its markup.
// Raw text nodes keep the markup's inter-element whitespace, so runs
// are collapsed to match what the page renders. When no known title
// selector matches (a layout revision we have not seen yet), the first
// plain text node that is not an icon ligature is used instead.
func extractTitle(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	for _, sel := range titleSelectors {
		if title := engine.CollapseSpaces(doc.Find(sel).First().Text()); title != "" {
			return title
		}
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return engine.CollapseSpaces(firstTextNode(root))
}

// iconElements render ligature names (play_arrow, more_vert) instead of
// user-facing text, so the fallback walk skips their subtrees.
var iconElements = map[string]bool{
	"mat-icon": true,
	"button":   true,
	"script":   true,
	"style":    true,
}

// firstTextNode walks the tree depth-first and returns the first
// non-empty text node outside icon and control elements.
func firstTextNode(n *html.Node) string {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			return text
		}
	}
	if n.Type == html.ElementNode && iconElements[n.Data] {
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := firstTextNode(c); text != "" {
			return text
		}
	}
	return ""
}

// snapshotDir returns the file names currently present, tolerating a
// missing directory: the browser creates it on first download.
func snapshotDir(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return map[string]bool{}, err
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	return names, nil
}

// newCompleteFile picks the first entry absent from before that looks
// fully written: not a Chrome partial, not hidden, not empty.
func newCompleteFile(dir string, before map[string]bool) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		name := e.Name()
		if before[name] || strings.HasSuffix(name, ".crdownload") || strings.HasPrefix(name, ".") {
			continue
		}
		info, ierr := e.Info()
		if ierr != nil || info.IsDir() || info.Size() == 0 {
			continue
		}
		return filepath.Join(dir, name), true
	}
	return "", false
}

// allowDownloads points the browser's download machinery at dir.
func allowDownloads(p *rod.Page, dir string) error {
	return (&proto.BrowserSetDownloadBehavior{
		Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath: dir,
	}).Call(p.Browser())
}
