// Package captcha gates submissions behind the third-party anti-abuse
// script. The gate never blocks the core workflow: when the script is
// absent, slow, or failing, submissions proceed with a null token.
package captcha

import (
	"context"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/internal/observability/metrics"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

var gateTracer = otel.Tracer("zenith.internal.captcha")

const (
	// ScriptElementID guards at-most-once script injection per host
	// page, no matter how many widget instances the page embeds.
	ScriptElementID = "zenith-recaptcha-script"

	scriptBaseURL = "https://www.google.com/recaptcha/api.js"

	defaultPollInterval = 100 * time.Millisecond
	defaultMaxAttempts  = 50
)

// State is the gate's lifecycle position.
type State int

const (
	// StateUnneeded: no site key configured. Terminal; every Token
	// call returns a null token immediately.
	StateUnneeded State = iota
	// StateLoading: script injected, execution API not yet detected.
	StateLoading
	// StateReady: execution API detected; Token executes per attempt.
	StateReady
	// StateDegraded: readiness never arrived within the attempt
	// budget. Terminal; behaves like Unneeded.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateUnneeded:
		return "unneeded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Executor is the global execution API the anti-abuse script exposes
// once loaded. Implementations are registered per document, the way the
// real script installs a window global.
type Executor interface {
	Ready() bool
	Execute(ctx context.Context, siteKey, action string) (string, error)
}

// Config controls how the Gate behaves.
type Config struct {
	Document *dom.Document
	SiteKey  string
	// Widget labels degradation metrics ("booking", "ordering", ...).
	Widget       string
	Logger       *logging.Logger
	Metrics      *metrics.WidgetMetrics
	PollInterval time.Duration
	MaxAttempts  int
}

// Gate lazily loads the anti-abuse script and produces action tokens.
type Gate struct {
	doc          *dom.Document
	siteKey      string
	widget       string
	state        State
	pollInterval time.Duration
	maxAttempts  int
	logger       *logging.Logger
	metrics      *metrics.WidgetMetrics
}

// NewGate builds a gate for one widget instance. With a site key it
// injects the provider script into the document head (idempotently) and
// starts in Loading; without one it is terminally Unneeded.
func NewGate(cfg Config) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	g := &Gate{
		doc:          cfg.Document,
		siteKey:      cfg.SiteKey,
		widget:       cfg.Widget,
		state:        StateUnneeded,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		logger:       logger,
		metrics:      cfg.Metrics,
	}
	if g.siteKey != "" && g.doc != nil {
		injectScript(g.doc, g.siteKey)
		g.state = StateLoading
	}
	return g
}

// State reports the gate's current state.
func (g *Gate) State() State {
	return g.state
}

// Token produces an anti-abuse token for one submission attempt, or a
// null token when the gate is unneeded or degraded. The only error it
// returns is context cancellation; provider failures degrade silently.
func (g *Gate) Token(ctx context.Context, action string) (string, error) {
	ctx, span := gateTracer.Start(ctx, "captcha.token")
	defer span.End()
	span.SetAttributes(
		attribute.String("zenith.widget", g.widget),
		attribute.String("zenith.captcha_state", g.state.String()),
	)

	switch g.state {
	case StateUnneeded, StateDegraded:
		return "", nil
	case StateLoading:
		exec, err := g.awaitExecutor(ctx)
		if err != nil {
			return "", err
		}
		if exec == nil {
			g.state = StateDegraded
			g.observeDegradation("timeout")
			return "", nil
		}
		g.state = StateReady
		return g.execute(ctx, exec, action)
	case StateReady:
		exec := executorFor(g.doc)
		if exec == nil || !exec.Ready() {
			// The global vanished after becoming ready; treat it
			// like a failed execution for this attempt only.
			g.observeDegradation("executor_lost")
			return "", nil
		}
		return g.execute(ctx, exec, action)
	default:
		return "", nil
	}
}

// awaitExecutor polls the page registry for a ready executor with a
// bounded attempt budget. It returns nil when the budget is exhausted.
func (g *Gate) awaitExecutor(ctx context.Context) (Executor, error) {
	timer := time.NewTimer(g.pollInterval)
	defer timer.Stop()
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if exec := executorFor(g.doc); exec != nil && exec.Ready() {
			return exec, nil
		}
		timer.Reset(g.pollInterval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, nil
}

func (g *Gate) execute(ctx context.Context, exec Executor, action string) (string, error) {
	token, err := exec.Execute(ctx, g.siteKey, action)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Degraded for this attempt only; the gate stays Ready.
		g.logger.Warn("captcha execute failed", "widget", g.widget, "error", err)
		g.observeDegradation("execute_failed")
		return "", nil
	}
	return token, nil
}

func (g *Gate) observeDegradation(reason string) {
	g.logger.Info("captcha degraded", "widget", g.widget, "reason", reason)
	g.metrics.ObserveCaptchaDegradation(g.widget)
}

// injectScript appends the provider script tag to the document head at
// most once per page, guarded by the well-known element id.
func injectScript(doc *dom.Document, siteKey string) {
	if doc.GetElementByID(ScriptElementID) != nil {
		return
	}
	head := doc.Head()
	if head == nil {
		return
	}
	script := dom.Build("script", dom.Attrs{
		"id":    ScriptElementID,
		"src":   scriptBaseURL + "?render=" + url.QueryEscape(siteKey),
		"async": "true",
	})
	doc.Append(head, script)
}
