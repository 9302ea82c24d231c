// Package admission implements the public admission widget: a class
// catalog, applicant fields, and a gated submission to the education
// vertical's public API.
package admission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/underdog7S/zenith-widgets/internal/captcha"
	"github.com/underdog7S/zenith-widgets/internal/catalog"
	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/internal/embed"
	"github.com/underdog7S/zenith-widgets/internal/observability/metrics"
	"github.com/underdog7S/zenith-widgets/internal/submit"
	"github.com/underdog7S/zenith-widgets/internal/widget"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

const (
	widgetName = "admission"

	classesLoadError = "Failed to load classes"
	successMessage   = "Admission request submitted successfully!"
	incompleteError  = "Please fill in your name, email, and class."
)

// ErrIncompleteForm is returned when required fields are missing; the
// submission never reaches the network.
var ErrIncompleteForm = errors.New("admission: name, email, and class are required")

// Deps are the widget's injected collaborators.
type Deps struct {
	Logger     *logging.Logger
	Metrics    *metrics.WidgetMetrics
	HTTPClient *http.Client
}

// Widget is one admission widget instance on a host page.
type Widget struct {
	logger     *logging.Logger
	metrics    *metrics.WidgetMetrics
	httpClient *http.Client

	cfg      embed.Config
	doc      *dom.Document
	root     *html.Node
	status   *widget.StatusArea
	loader   *catalog.Loader
	gate     *captcha.Gate
	pipeline *submit.Pipeline
	inflight widget.Inflight

	classSelect *html.Node
	classNote   *html.Node
	classes     []catalog.Class

	name    string
	email   string
	phone   string
	classID int
}

// New builds an unmounted widget.
func New(deps Deps) *Widget {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Widget{
		logger:     logger,
		metrics:    deps.Metrics,
		httpClient: deps.HTTPClient,
	}
}

// Mount resolves configuration from the hosting script tag, builds the
// UI into the host document, and kicks off the class catalog load. A
// missing tenant slug aborts before any DOM write or network call.
func (w *Widget) Mount(ctx context.Context, doc *dom.Document, script *html.Node) error {
	cfg, err := embed.Resolve(script, doc.URL)
	if err != nil {
		w.logger.Error("admission widget: missing tenant slug, not rendering")
		return err
	}
	w.cfg = cfg
	w.doc = doc
	w.logger = w.logger.With("widget", widgetName, "tenant", cfg.TenantSlug, "instance_id", cfg.InstanceID)

	w.loader, err = catalog.NewLoader(catalog.Config{
		BaseURL:    cfg.APIBase,
		APIKey:     cfg.APIKey,
		HTTPClient: w.httpClient,
		Logger:     w.logger,
	})
	if err != nil {
		return err
	}
	w.pipeline, err = submit.NewPipeline(submit.Config{
		BaseURL:    cfg.APIBase,
		APIKey:     cfg.APIKey,
		HTTPClient: w.httpClient,
		Logger:     w.logger,
	})
	if err != nil {
		return err
	}
	w.gate = captcha.NewGate(captcha.Config{
		Document: doc,
		SiteKey:  cfg.CaptchaSiteKey,
		Widget:   widgetName,
		Logger:   w.logger,
		Metrics:  w.metrics,
	})

	w.buildUI(widget.Container(doc, script, cfg.TargetContainerID))
	w.loadClasses(ctx)
	return nil
}

func (w *Widget) buildUI(container *html.Node) {
	w.root = container
	w.status = widget.NewStatusArea()
	w.classSelect = dom.Build("select", dom.Attrs{"name": "class_id"})
	w.classNote = dom.Build("div", dom.Attrs{"style": map[string]string{"color": "#991b1b"}})
	w.renderClassOptions()

	form := dom.Build("div", dom.Attrs{"style": map[string]string{"max-width": "420px"}},
		dom.Build("h3", dom.Attrs{"text": "Admission"}),
		w.status.Node(),
		dom.Build("label", dom.Attrs{"text": "Class"}),
		w.classSelect,
		w.classNote,
		dom.Build("input", dom.Attrs{"name": "name", "placeholder": "Full name"}),
		dom.Build("input", dom.Attrs{"name": "email", "type": "email", "placeholder": "Email"}),
		dom.Build("input", dom.Attrs{"name": "phone", "type": "tel", "placeholder": "Phone"}),
		dom.Build("button", dom.Attrs{"type": "button", "text": "Apply"}),
	)
	dom.ClearChildren(container)
	container.AppendChild(form)
}

// loadClasses replaces the class list wholesale on success. On failure
// the previous list stays (empty on first load) and an inline message
// appears; a page reload is the only retry path.
func (w *Widget) loadClasses(ctx context.Context) {
	classes, err := w.loader.LoadClasses(ctx, w.cfg.TenantSlug)
	if err != nil {
		w.logger.Warn("class catalog load failed", "error", err)
		w.metrics.ObserveCatalogFailure(widgetName, "classes")
		dom.SetText(w.classNote, classesLoadError)
		return
	}
	w.classes = classes
	dom.ClearChildren(w.classNote)
	w.renderClassOptions()
}

func (w *Widget) renderClassOptions() {
	dom.ClearChildren(w.classSelect)
	w.classSelect.AppendChild(dom.Build("option", dom.Attrs{"value": "", "text": "Select a class"}))
	for _, c := range w.classes {
		w.classSelect.AppendChild(dom.Build("option", dom.Attrs{"value": c.ID, "text": c.Name}))
	}
}

// SetName records the applicant's name.
func (w *Widget) SetName(v string) { w.name = v }

// SetEmail records the applicant's email.
func (w *Widget) SetEmail(v string) { w.email = v }

// SetPhone records the applicant's phone.
func (w *Widget) SetPhone(v string) { w.phone = v }

// SelectClass records the chosen class id.
func (w *Widget) SelectClass(id int) { w.classID = id }

// Classes returns the currently loaded class list.
func (w *Widget) Classes() []catalog.Class { return w.classes }

// Root returns the widget's rendered container.
func (w *Widget) Root() *html.Node { return w.root }

// StatusText exposes the feedback region's visible text.
func (w *Widget) StatusText() string { return w.status.Text() }

// Submit validates the form, obtains an anti-abuse token, and posts
// the admission record. Overlapping calls are rejected.
func (w *Widget) Submit(ctx context.Context) error {
	if w.pipeline == nil {
		return errors.New("admission: widget not mounted")
	}
	if !w.inflight.Begin() {
		return widget.ErrSubmissionInFlight
	}
	defer w.inflight.End()

	if strings.TrimSpace(w.name) == "" || strings.TrimSpace(w.email) == "" || w.classID == 0 {
		w.status.ShowError(incompleteError)
		return ErrIncompleteForm
	}

	token, err := w.gate.Token(ctx, "admission_submit")
	if err != nil {
		return err
	}
	payload := struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone,omitempty"`
		ClassID int    `json:"class_id"`
	}{w.name, w.email, w.phone, w.classID}

	res := w.pipeline.Submit(ctx, fmt.Sprintf("/public/education/%s/admissions/", w.cfg.TenantSlug), payload, token)
	w.metrics.ObserveSubmission(widgetName, res.Outcome.String())
	switch res.Outcome {
	case submit.OutcomeSuccess:
		w.resetForm()
		w.status.ShowSuccess(successMessage)
	default:
		w.status.ShowError(res.Message)
	}
	return nil
}

func (w *Widget) resetForm() {
	w.name = ""
	w.email = ""
	w.phone = ""
	w.classID = 0
}
