// Package widget holds runtime plumbing shared by the three public
// widget variants: the bootstrap guard, container resolution, status
// banners, and the in-flight submission guard.
package widget

import (
	"errors"
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

// ErrSubmissionInFlight rejects overlapping submissions; the user must
// wait for the outstanding attempt to settle.
var ErrSubmissionInFlight = errors.New("widget: submission already in flight")

// Bootstrap runs a widget's initialization under a guard so no panic
// ever escapes into the host page's own scripts. The failure is logged
// once; nothing is retried.
func Bootstrap(logger *logging.Logger, name string, init func() error) {
	if logger == nil {
		logger = logging.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("widget init panicked", "widget", name, "panic", r)
		}
	}()
	if err := init(); err != nil {
		logger.Error("widget init failed", "widget", name, "error", err)
	}
}

// Container resolves where the widget renders: the element with the
// configured target id when it exists, otherwise a fresh div inserted
// immediately after the hosting script tag.
func Container(doc *dom.Document, script *html.Node, targetID string) *html.Node {
	if targetID != "" {
		if el := doc.GetElementByID(targetID); el != nil {
			return el
		}
	}
	div := dom.Build("div", nil)
	doc.InsertAfter(script, div)
	return div
}

// StatusArea renders exactly one of the three feedback states: nothing,
// a success banner, or an error banner.
type StatusArea struct {
	node *html.Node
}

// NewStatusArea builds a detached status region for the caller to place.
func NewStatusArea() *StatusArea {
	return &StatusArea{node: dom.Build("div", nil)}
}

// Node returns the region's root for insertion.
func (s *StatusArea) Node() *html.Node {
	return s.node
}

// ShowSuccess replaces the region with a success banner, clearing any
// prior error.
func (s *StatusArea) ShowSuccess(msg string) {
	dom.ClearChildren(s.node)
	banner := dom.Build("div", dom.Attrs{
		"text": msg,
		"style": map[string]string{
			"color":   "#166534",
			"padding": "8px",
		},
	})
	s.node.AppendChild(banner)
}

// ShowError replaces the region with an error banner, clearing any
// prior success.
func (s *StatusArea) ShowError(msg string) {
	dom.ClearChildren(s.node)
	banner := dom.Build("div", dom.Attrs{
		"text": msg,
		"style": map[string]string{
			"color":   "#991b1b",
			"padding": "8px",
		},
	})
	s.node.AppendChild(banner)
}

// Clear empties the region.
func (s *StatusArea) Clear() {
	dom.ClearChildren(s.node)
}

// Text returns the region's visible text, for callers inspecting state.
func (s *StatusArea) Text() string {
	return dom.TextContent(s.node)
}

// Inflight guards a widget instance so at most one submission is
// outstanding at a time.
type Inflight struct {
	active atomic.Bool
}

// Begin claims the guard; it reports false while a submission is
// already outstanding.
func (f *Inflight) Begin() bool {
	return f.active.CompareAndSwap(false, true)
}

// End releases the guard.
func (f *Inflight) End() {
	f.active.Store(false)
}
