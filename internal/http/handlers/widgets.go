package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html"

	"github.com/underdog7S/zenith-widgets/internal/admission"
	"github.com/underdog7S/zenith-widgets/internal/booking"
	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/internal/embed"
	"github.com/underdog7S/zenith-widgets/internal/observability/metrics"
	"github.com/underdog7S/zenith-widgets/internal/ordering"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

// WidgetHandler server-renders the initial markup of a widget for a
// tenant, the same trees the embedded runtime builds in place. Site
// owners without script access fetch these fragments directly.
type WidgetHandler struct {
	apiBase string
	metrics *metrics.WidgetMetrics
	logger  *logging.Logger
}

// NewWidgetHandler creates the handler. apiBase optionally overrides
// the backend base the rendered widgets load their catalogs from.
func NewWidgetHandler(apiBase string, m *metrics.WidgetMetrics, logger *logging.Logger) *WidgetHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WidgetHandler{apiBase: apiBase, metrics: m, logger: logger}
}

// Render handles GET /widgets/{kind}?slug=...&api_key=...
func (h *WidgetHandler) Render(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	switch kind {
	case "booking", "ordering", "admission":
	default:
		writeJSONError(w, http.StatusNotFound, "unknown widget kind")
		return
	}

	q := r.URL.Query()
	if q.Get("slug") == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "slug is required")
		return
	}

	doc := dom.NewDocument(r.Referer())
	attrs := dom.Attrs{embed.AttrSlug: q.Get("slug")}
	if v := q.Get("api_key"); v != "" {
		attrs[embed.AttrAPIKey] = v
	}
	if v := q.Get("api_base"); v != "" {
		attrs[embed.AttrAPIBase] = v
	} else if h.apiBase != "" {
		attrs[embed.AttrAPIBase] = h.apiBase
	}
	if v := q.Get("recaptcha_site_key"); v != "" {
		attrs[embed.AttrCaptchaSiteKey] = v
	}
	script := dom.Build("script", attrs)
	doc.Append(doc.Body(), script)

	root, err := h.mount(r, kind, doc, script)
	if err != nil {
		h.logger.Error("widget render failed", "kind", kind, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "widget render failed")
		return
	}

	markup, err := dom.Render(root)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "widget render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(markup))
}

func (h *WidgetHandler) mount(r *http.Request, kind string, doc *dom.Document, script *html.Node) (*html.Node, error) {
	ctx := r.Context()
	switch kind {
	case "booking":
		wdg := booking.New(booking.Deps{Logger: h.logger, Metrics: h.metrics})
		if err := wdg.Mount(ctx, doc, script); err != nil {
			return nil, err
		}
		return wdg.Root(), nil
	case "ordering":
		wdg := ordering.New(ordering.Deps{Logger: h.logger, Metrics: h.metrics})
		if err := wdg.Mount(ctx, doc, script); err != nil {
			return nil, err
		}
		return wdg.Root(), nil
	default:
		wdg := admission.New(admission.Deps{Logger: h.logger, Metrics: h.metrics})
		if err := wdg.Mount(ctx, doc, script); err != nil {
			return nil, err
		}
		return wdg.Root(), nil
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
