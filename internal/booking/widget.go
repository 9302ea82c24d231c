// Package booking implements the public appointment widget: service
// and stylist catalogs loaded independently, temporal normalization of
// the start input, and a gated submission running an explicit
// Idle → Normalizing → Gating → Submitting state machine.
package booking

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
	"github.com/underdog7S/zenith-widgets/internal/temporal"
	"github.com/underdog7S/zenith-widgets/internal/widget"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

const (
	widgetName = "booking"

	servicesLoadError = "Failed to load services"
	stylistsLoadError = "Failed to load stylists"
	incompleteError   = "Please choose a service, a time, and leave your name and phone."
	successMessage    = "Appointment booked successfully!"

	// BookingsClosedMessage replaces any server body on a 403 from the
	// appointments endpoint: that status is the tenant's feature gate,
	// not an auth failure.
	BookingsClosedMessage = "Online bookings are currently closed."
)

// ErrIncompleteForm is returned when required fields are missing; the
// submission never reaches the network.
var ErrIncompleteForm = errors.New("booking: service, start time, name, and phone are required")

// Phase is the booking submission machine's position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseNormalizing
	PhaseGating
	PhaseSubmitting
	PhaseRejected
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseNormalizing:
		return "normalizing"
	case PhaseGating:
		return "gating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseRejected:
		return "rejected"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Deps are the widget's injected collaborators.
type Deps struct {
	Logger     *logging.Logger
	Metrics    *metrics.WidgetMetrics
	HTTPClient *http.Client
}

// Widget is one booking widget instance on a host page.
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
	phase    Phase

	serviceSelect *html.Node
	serviceNote   *html.Node
	stylistSelect *html.Node
	stylistNote   *html.Node

	services  []catalog.Service
	stylists  []catalog.Stylist
	durations temporal.DurationTable

	serviceID     int
	stylistID     int
	startRaw      string
	customerName  string
	customerPhone string
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
		durations:  temporal.DurationTable{},
	}
}

// Mount resolves configuration (script attributes overridden by
// same-named page query parameters), builds the UI, and loads the
// service and stylist catalogs independently: a failure in one never
// blocks or corrupts the other. A missing tenant slug aborts before
// any DOM write or network call.
func (w *Widget) Mount(ctx context.Context, doc *dom.Document, script *html.Node) error {
	cfg, err := embed.ResolveWithOverrides(script, doc.URL)
	if err != nil {
		w.logger.Error("booking widget: missing tenant slug, not rendering")
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
	w.loadServices(ctx)
	w.loadStylists(ctx)
	return nil
}

func (w *Widget) buildUI(container *html.Node) {
	w.root = container
	w.status = widget.NewStatusArea()
	w.serviceSelect = dom.Build("select", dom.Attrs{"name": "service_id"})
	w.serviceNote = dom.Build("div", dom.Attrs{"style": map[string]string{"color": "#991b1b"}})
	w.stylistSelect = dom.Build("select", dom.Attrs{"name": "stylist_id"})
	w.stylistNote = dom.Build("div", dom.Attrs{"style": map[string]string{"color": "#991b1b"}})
	w.renderServiceOptions()
	w.renderStylistOptions()

	form := dom.Build("div", dom.Attrs{"style": map[string]string{"max-width": "420px"}},
		dom.Build("h3", dom.Attrs{"text": "Book an appointment"}),
		w.status.Node(),
		dom.Build("label", dom.Attrs{"text": "Service"}),
		w.serviceSelect,
		w.serviceNote,
		dom.Build("label", dom.Attrs{"text": "Stylist"}),
		w.stylistSelect,
		w.stylistNote,
		dom.Build("input", dom.Attrs{"name": "start_time", "type": "datetime-local"}),
		dom.Build("input", dom.Attrs{"name": "customer_name", "placeholder": "Name"}),
		dom.Build("input", dom.Attrs{"name": "customer_phone", "type": "tel", "placeholder": "Phone"}),
		dom.Build("button", dom.Attrs{"type": "button", "text": "Book"}),
	)
	dom.ClearChildren(container)
	container.AppendChild(form)
}

func (w *Widget) loadServices(ctx context.Context) {
	services, err := w.loader.LoadServices(ctx, w.cfg.TenantSlug)
	if err != nil {
		w.logger.Warn("service catalog load failed", "error", err)
		w.metrics.ObserveCatalogFailure(widgetName, "services")
		dom.SetText(w.serviceNote, servicesLoadError)
		return
	}
	w.services = services
	w.durations = temporal.NewDurationTable(services)
	dom.ClearChildren(w.serviceNote)
	w.renderServiceOptions()
}

func (w *Widget) loadStylists(ctx context.Context) {
	stylists, err := w.loader.LoadStylists(ctx, w.cfg.TenantSlug)
	if err != nil {
		w.logger.Warn("stylist catalog load failed", "error", err)
		w.metrics.ObserveCatalogFailure(widgetName, "stylists")
		dom.SetText(w.stylistNote, stylistsLoadError)
		return
	}
	w.stylists = stylists
	dom.ClearChildren(w.stylistNote)
	w.renderStylistOptions()
}

func (w *Widget) renderServiceOptions() {
	dom.ClearChildren(w.serviceSelect)
	w.serviceSelect.AppendChild(dom.Build("option", dom.Attrs{"value": "", "text": "Select a service"}))
	for _, s := range w.services {
		w.serviceSelect.AppendChild(dom.Build("option", dom.Attrs{"value": s.ID, "text": s.Name}))
	}
}

func (w *Widget) renderStylistOptions() {
	dom.ClearChildren(w.stylistSelect)
	w.stylistSelect.AppendChild(dom.Build("option", dom.Attrs{"value": "", "text": "Any stylist"}))
	for _, s := range w.stylists {
		w.stylistSelect.AppendChild(dom.Build("option", dom.Attrs{"value": s.ID, "text": s.Name}))
	}
}

// edited drops a settled Rejected/Failed machine back to Idle and
// clears the stale banner; any field change counts as a user edit.
func (w *Widget) edited() {
	if w.phase == PhaseRejected || w.phase == PhaseFailed {
		w.phase = PhaseIdle
		w.status.Clear()
	}
}

// SelectService records the chosen service id.
func (w *Widget) SelectService(id int) { w.serviceID = id; w.edited() }

// SelectStylist records the chosen stylist id; zero means any.
func (w *Widget) SelectStylist(id int) { w.stylistID = id; w.edited() }

// SetStartInput records the raw start time text, native or locale shaped.
func (w *Widget) SetStartInput(v string) { w.startRaw = v; w.edited() }

// SetCustomerName records the customer's name.
func (w *Widget) SetCustomerName(v string) { w.customerName = v; w.edited() }

// SetCustomerPhone records the customer's phone.
func (w *Widget) SetCustomerPhone(v string) { w.customerPhone = v; w.edited() }

// Services returns the currently loaded service list.
func (w *Widget) Services() []catalog.Service { return w.services }

// Stylists returns the currently loaded stylist list.
func (w *Widget) Stylists() []catalog.Stylist { return w.stylists }

// Phase reports the submission machine's current phase.
func (w *Widget) Phase() Phase { return w.phase }

// Root returns the widget's rendered container.
func (w *Widget) Root() *html.Node { return w.root }

// StatusText exposes the feedback region's visible text.
func (w *Widget) StatusText() string { return w.status.Text() }

// Submit runs the booking machine: normalize the start input, derive
// the end boundary from the service duration, obtain an anti-abuse
// token, and post the appointment. Overlapping calls are rejected.
func (w *Widget) Submit(ctx context.Context) error {
	if w.pipeline == nil {
		return errors.New("booking: widget not mounted")
	}
	if !w.inflight.Begin() {
		return widget.ErrSubmissionInFlight
	}
	defer w.inflight.End()

	if w.serviceID == 0 || strings.TrimSpace(w.startRaw) == "" ||
		strings.TrimSpace(w.customerName) == "" || strings.TrimSpace(w.customerPhone) == "" {
		w.status.ShowError(incompleteError)
		return ErrIncompleteForm
	}

	w.phase = PhaseNormalizing
	start := temporal.ToCanonicalLocal(w.startRaw)
	end := temporal.AddDuration(start, w.durations.Lookup(w.serviceID))

	w.phase = PhaseGating
	token, err := w.gate.Token(ctx, "booking_submit")
	if err != nil {
		w.phase = PhaseFailed
		return err
	}

	w.phase = PhaseSubmitting
	payload := struct {
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
		ServiceID     int    `json:"service_id"`
		StylistID     int    `json:"stylist_id,omitempty"`
		StartTime     string `json:"start_time"`
		EndTime       string `json:"end_time"`
	}{w.customerName, w.customerPhone, w.serviceID, w.stylistID, start, end}

	res := w.pipeline.Submit(ctx, fmt.Sprintf("/public/salon/%s/appointments/", w.cfg.TenantSlug), payload, token)
	w.metrics.ObserveSubmission(widgetName, res.Outcome.String())
	switch res.Outcome {
	case submit.OutcomeSuccess:
		w.resetForm()
		w.status.ShowSuccess(successMessage)
		w.phase = PhaseIdle
	case submit.OutcomeRejected:
		w.phase = PhaseRejected
		if res.Status == http.StatusForbidden {
			w.status.ShowError(BookingsClosedMessage)
		} else {
			w.status.ShowError(res.Message)
		}
	default:
		w.phase = PhaseFailed
		w.status.ShowError(res.Message)
	}
	return nil
}

func (w *Widget) resetForm() {
	w.serviceID = 0
	w.stylistID = 0
	w.startRaw = ""
	w.customerName = ""
	w.customerPhone = ""
}
