package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
)

// Source types accepted by Add.
const (
	TypeURL     = "url"
	TypeYouTube = "youtube"
	TypeText    = "text"
)

// Source is one item to feed into the notebook.
type Source struct {
	Type    string `json:"type" jsonschema:"source kind: url, youtube, or text"`
	Content string `json:"content" jsonschema:"the address for url/youtube sources, or the raw text"`
}

// AddResult reports the outcome for one source as submitted, i.e. after
// grouping. A grouped entry succeeds or fails as a unit.
type AddResult struct {
	Source  Source `json:"source"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AddInput is the source_add tool input.
type AddInput struct {
	Sources []Source `json:"sources" jsonschema:"sources to add to the notebook"`
}

// AddOutput is the source_add tool result.
type AddOutput struct {
	OverallSuccess bool        `json:"overall_success"`
	Results        []AddResult `json:"results"`
}

// itemSelector matches one entry in the notebook's source list.
const itemSelector = "div.single-source-container"

// GroupSources folds all URL-like sources into a single newline-joined
// entry. The add dialog accepts many addresses at once, so one dialog
// round-trip covers them all. The joined entry takes the type of the
// first URL-like source and leads the result; remaining sources keep
// their relative order.
func GroupSources(list []Source) []Source {
	var urlLike, rest []Source
	for _, s := range list {
		switch s.Type {
		case TypeURL, TypeYouTube:
			urlLike = append(urlLike, s)
		default:
			rest = append(rest, s)
		}
	}
	if len(urlLike) == 0 {
		return rest
	}

	contents := make([]string, len(urlLike))
	for i, s := range urlLike {
		contents[i] = s.Content
	}
	out := make([]Source, 0, len(rest)+1)
	out = append(out, Source{Type: urlLike[0].Type, Content: strings.Join(contents, "\n")})
	return append(out, rest...)
}

// Manager drives the Sources panel of the connected notebook.
type Manager struct {
	sess *engine.Session
}

func NewManager(sess *engine.Session) *Manager {
	return &Manager{sess: sess}
}

// Add ingests the given sources, grouping URL-likes into one dialog pass.
// Per-source failures are recorded in the results; the returned error is
// reserved for session-level failures.
func (m *Manager) Add(ctx context.Context, list []Source) ([]AddResult, error) {
	grouped := GroupSources(list)
	results := make([]AddResult, 0, len(grouped))

	err := m.sess.WithPage(ctx, func(p *rod.Page) error {
		engine.EnsurePanel(ctx, p, itemSelector, m.sess.Text("sources_tab"))
		m.closeDialog(ctx, p)

		for _, src := range grouped {
			res := AddResult{Source: src, Success: true}

			var addErr error
			switch src.Type {
			case TypeURL, TypeYouTube:
				addErr = m.addURL(ctx, p, src.Type, src.Content)
			case TypeText:
				addErr = m.addText(ctx, p, src.Content)
			default:
				addErr = fmt.Errorf("unknown source type: %q", src.Type)
			}

			if addErr != nil {
				slog.Error("adding source failed",
					slog.String("type", src.Type),
					slog.Any("error", addErr))
				res.Success = false
				res.Error = addErr.Error()
			} else {
				engine.IncrSourcesAdded(1)
			}
			results = append(results, res)
			engine.Settle(ctx, 100*time.Millisecond)
		}
		return nil
	})
	return results, err
}

// ClearAll removes sources one at a time until none remain, a control goes
// missing, or the attempt bound is hit. Partial success is reported in the
// result rather than raised.
func (m *Manager) ClearAll(ctx context.Context) (engine.ClearResult, error) {
	maxAttempts := engine.Cfg.MaxClearAttempts
	if maxAttempts <= 0 {
		maxAttempts = 200
	}
	removed := 0

	clearLoop := func(p *rod.Page) error {
		engine.EnsurePanel(ctx, p, itemSelector, m.sess.Text("sources_tab"))

		for attempt := 0; attempt < maxAttempts; attempt++ {
			items, ierr := p.Elements(itemSelector)
			if ierr != nil {
				return fmt.Errorf("list sources: %w", ierr)
			}
			if len(items) == 0 {
				break
			}
			prev := len(items)
			item := items.First()

			more, ok := engine.Probe(item, "button.source-item-more-button")
			if !ok {
				more, ok = engine.ProbeX(item, `.//button[.//mat-icon[normalize-space()="more_vert"]]`)
			}
			if !ok {
				slog.Warn("could not locate the more button for a source item")
				break
			}
			if cerr := engine.Click(more); cerr != nil {
				slog.Error("opening source menu failed", slog.Any("error", cerr))
				break
			}
			engine.Settle(ctx, 200*time.Millisecond)

			menu, ok := engine.ProbeR(p, "[role='menuitem']",
				engine.ExactTextPattern(m.sess.Text("delete_source_menu_item")))
			if !ok {
				slog.Warn("remove-source menu item not found")
				break
			}
			if cerr := engine.Click(menu); cerr != nil {
				slog.Error("remove-source click failed", slog.Any("error", cerr))
				break
			}
			engine.Settle(ctx, 200*time.Millisecond)

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

			detach := engine.PollConfig{Timeout: time.Second, Interval: 100 * time.Millisecond}
			if werr := engine.WaitFor(ctx, detach, func() bool {
				left, lerr := p.Elements(itemSelector)
				return lerr == nil && len(left) < prev
			}); werr != nil {
				slog.Warn("source item did not detach after delete confirmation")
			}

			removed++
			if perr := m.sess.Pace(ctx); perr != nil {
				return perr
			}
		}
		return nil
	}

	err := engine.TrackOperation(ctx, "source_clear", func(ctx context.Context) error {
		return m.sess.WithPage(ctx, clearLoop)
	})

	if removed > 0 {
		engine.IncrSourcesCleared(removed)
	}
	return engine.ClearResult{Success: removed > 0, Count: removed}, err
}

// addURL submits one or more newline-separated addresses through the URL
// flavor of the add dialog.
func (m *Manager) addURL(ctx context.Context, p *rod.Page, sourceType, urls string) error {
	if err := m.openDialog(ctx, p); err != nil {
		return err
	}
	defer m.closeDialog(ctx, p)

	chipKey := "source_type_website"
	if sourceType == TypeYouTube {
		chipKey = "source_type_youtube"
	}
	m.selectChip(p, m.sess.Text(chipKey))

	// The form control name is the stable handle; structural and
	// placeholder matches cover older dialog revisions.
	inp, ok := engine.Probe(p, "textarea[formcontrolname='newUrl']")
	if !ok {
		inp, ok = engine.Probe(p, "input[type='url'], input[placeholder*='http'], textarea[placeholder*='http']")
	}
	if !ok {
		if ph := m.sess.Text("url_input_placeholder"); ph != "" {
			inp, ok = engine.Probe(p, fmt.Sprintf("input[placeholder*=%q], textarea[placeholder*=%q]", ph, ph))
		}
	}
	if !ok {
		return fmt.Errorf("could not find url input field for %s source", sourceType)
	}

	if err := engine.Fill(inp, urls); err != nil {
		return fmt.Errorf("fill url input: %w", err)
	}
	engine.Settle(ctx, 500*time.Millisecond)

	return m.submitDialog(ctx, p, inp)
}

// addText submits free text through the copied-text flavor of the dialog.
func (m *Manager) addText(ctx context.Context, p *rod.Page, text string) error {
	if err := m.openDialog(ctx, p); err != nil {
		return err
	}
	defer m.closeDialog(ctx, p)

	m.selectChip(p, m.sess.Text("source_type_text"))

	var scope engine.Queryable = p
	if dlg, open := dialogOpen(p); open {
		scope = dlg
	}
	area, ok := engine.Probe(scope,
		"textarea[formcontrolname='textInput'], textarea[formcontrolname='newText'], textarea")
	if !ok {
		return errors.New("could not find text input field for copied-text source")
	}

	if err := engine.Fill(area, text); err != nil {
		return fmt.Errorf("fill text input: %w", err)
	}
	engine.Settle(ctx, 500*time.Millisecond)

	return m.submitDialog(ctx, p, area)
}

// dialogOpen reports whether an add-source dialog is currently visible.
// Stacked dialogs render in order, so the last one is the active one.
func dialogOpen(p *rod.Page) (*rod.Element, bool) {
	return engine.ProbeLast(p, "mat-dialog-container")
}

func (m *Manager) openDialog(ctx context.Context, p *rod.Page) error {
	if _, open := dialogOpen(p); open {
		return nil
	}
	btn, ok := engine.ProbeR(p, "button", engine.TextPattern(m.sess.Text("add_source_button")))
	if !ok {
		return errors.New("could not locate the add-source button")
	}
	if err := engine.Click(btn); err != nil {
		return fmt.Errorf("click add-source button: %w", err)
	}
	engine.Settle(ctx, 500*time.Millisecond)
	return nil
}

// closeDialog dismisses the dialog if one is open. Best effort: a dialog
// that refuses to close surfaces through the next operation's selectors.
func (m *Manager) closeDialog(ctx context.Context, p *rod.Page) {
	if _, open := dialogOpen(p); !open {
		return
	}
	if btn, ok := engine.ProbeX(p, `//button[.//mat-icon[normalize-space()="close"]]`); ok {
		if err := engine.Click(btn); err == nil {
			engine.Settle(ctx, 200*time.Millisecond)
			return
		}
	}
	if icon, ok := engine.ProbeR(p, "mat-icon", engine.TextPattern("close")); ok {
		if err := engine.Click(icon); err != nil {
			slog.Debug("dialog close icon click failed", slog.Any("error", err))
			return
		}
		engine.Settle(ctx, 200*time.Millisecond)
	}
}

// selectChip clicks the source-type chip when the dialog offers one.
// Missing chips are tolerated: single-type dialogs skip the chip row.
func (m *Manager) selectChip(p *rod.Page, label string) {
	if label == "" {
		return
	}
	chip, ok := engine.ProbeR(p,
		"mat-chip-option, .mdc-evolution-chip, span.mat-mdc-chip-action",
		engine.TextPattern(label))
	if !ok {
		chip, ok = engine.ProbeR(p, "*", engine.ExactTextPattern(label))
	}
	if !ok {
		return
	}
	if err := engine.Click(chip); err != nil {
		slog.Debug("source type chip click failed",
			slog.String("chip", label),
			slog.Any("error", err))
	}
}

// submitDialog clicks the localized insert button, falling back to Enter
// in the input when the button is absent.
func (m *Manager) submitDialog(ctx context.Context, p *rod.Page, inp *rod.Element) error {
	if btn, ok := engine.ProbeR(p, "button", engine.ExactTextPattern(m.sess.Text("insert_button"))); ok {
		if err := engine.Click(btn); err != nil {
			return fmt.Errorf("click insert button: %w", err)
		}
	} else if err := inp.Type(input.Enter); err != nil {
		return fmt.Errorf("submit with enter: %w", err)
	}
	engine.Settle(ctx, 100*time.Millisecond)
	return nil
}
