package engine

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Queryable is the slice of rod.Page and rod.Element the probe helpers
// need. Probes are non-blocking: a missing element is an ordinary miss,
// not an error, so fallback chains can try the next selector.
type Queryable interface {
	Has(selector string) (bool, *rod.Element, error)
	HasR(selector, jsRegex string) (bool, *rod.Element, error)
	HasX(selector string) (bool, *rod.Element, error)
	Elements(selector string) (rod.Elements, error)
}

// TextPattern builds a JS regex matching text as a case-insensitive
// literal substring, the loose matching UI button labels need.
func TextPattern(text string) string {
	return "/" + jsRegexQuote(text) + "/i"
}

// ExactTextPattern matches the whole element text, tolerating surrounding
// whitespace. Used for menu items and chips where a substring would catch
// sibling entries.
func ExactTextPattern(text string) string {
	return `/^\s*` + jsRegexQuote(text) + `\s*$/i`
}

func jsRegexQuote(text string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(text), "/", `\/`)
}

// Probe returns the first visible element matching selector, or false on
// any miss: absent, detached, or hidden.
func Probe(q Queryable, selector string) (*rod.Element, bool) {
	has, el, err := q.Has(selector)
	return visibleOrMiss(has, el, err)
}

// ProbeR is Probe for selector plus text-regex matching.
func ProbeR(q Queryable, selector, jsRegex string) (*rod.Element, bool) {
	has, el, err := q.HasR(selector, jsRegex)
	return visibleOrMiss(has, el, err)
}

// ProbeX is Probe for XPath, used where CSS cannot express structure such
// as "button wrapping an icon with this ligature text".
func ProbeX(q Queryable, xpath string) (*rod.Element, bool) {
	has, el, err := q.HasX(xpath)
	return visibleOrMiss(has, el, err)
}

// ProbeLast returns the last visible element matching selector. Dialog
// action rows put the affirmative button last, and stacked dialogs put the
// active one last.
func ProbeLast(q Queryable, selector string) (*rod.Element, bool) {
	els, err := q.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	for i := len(els) - 1; i >= 0; i-- {
		if vis, verr := els[i].Visible(); verr == nil && vis {
			return els[i], true
		}
	}
	return nil, false
}

// ProbeLastWithText returns the last visible element matching selector
// whose text contains text, case-insensitively.
func ProbeLastWithText(q Queryable, selector, text string) (*rod.Element, bool) {
	els, err := q.Elements(selector)
	if err != nil || len(els) == 0 {
		return nil, false
	}
	needle := strings.ToLower(text)
	for i := len(els) - 1; i >= 0; i-- {
		t, terr := els[i].Text()
		if terr != nil || !strings.Contains(strings.ToLower(t), needle) {
			continue
		}
		if vis, verr := els[i].Visible(); verr == nil && vis {
			return els[i], true
		}
	}
	return nil, false
}

func visibleOrMiss(has bool, el *rod.Element, err error) (*rod.Element, bool) {
	if err != nil || !has || el == nil {
		return nil, false
	}
	if vis, verr := el.Visible(); verr != nil || !vis {
		return nil, false
	}
	return el, true
}

// Click left-clicks an element once.
func Click(el *rod.Element) error {
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Fill replaces an input's content with text.
func Fill(el *rod.Element, text string) error {
	if err := el.SelectAllText(); err != nil {
		slog.Debug("select-all before fill failed", slog.Any("error", err))
	}
	return el.Input(text)
}

// Settle pauses for Angular to finish re-rendering, honoring ctx.
func Settle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// EnsurePanel switches the UI to the panel containing containerSel when
// the narrow tabbed layout is active. In the wide layout all panels are
// visible and no tab strip exists, so every probe misses and this is a
// no-op. Failures are soft: the caller's own selectors produce the real
// error if the panel truly is unreachable.
func EnsurePanel(ctx context.Context, p *rod.Page, containerSel, tabText string) {
	if has, _, err := p.Has(containerSel); err == nil && has {
		return
	}

	pattern := TextPattern(tabText)
	for _, sel := range []string{".mat-mdc-tab", ".mat-tab-label", "[role='tab']"} {
		if tab, ok := ProbeR(p, sel, pattern); ok {
			slog.Info("switching layout tab", slog.String("tab", tabText))
			if err := Click(tab); err != nil {
				slog.Warn("layout tab click failed", slog.Any("error", err))
				continue
			}
			Settle(ctx, 500*time.Millisecond)
			return
		}
	}

	// Last resort: any element whose whole text is the tab label.
	if tab, ok := ProbeR(p, "*", ExactTextPattern(tabText)); ok {
		slog.Info("switching layout tab by text", slog.String("tab", tabText))
		if err := Click(tab); err != nil {
			slog.Warn("layout tab click failed", slog.Any("error", err))
			return
		}
		Settle(ctx, 500*time.Millisecond)
	}
}
