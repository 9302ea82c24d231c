// Package submit performs the final POST of a widget payload and
// classifies the response into exactly one of three outcomes.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

var pipelineTracer = otel.Tracer("zenith.internal.submit")

const defaultTimeout = 15 * time.Second

// GenericFailureMessage is what the end user sees for transport-level
// failures; no structured detail is exposed.
const GenericFailureMessage = "Something went wrong. Please try again."

// Outcome tags a submission result.
type Outcome int

const (
	// OutcomeSuccess: any 2xx with a body.
	OutcomeSuccess Outcome = iota
	// OutcomeRejected: the backend returned a structured domain error.
	OutcomeRejected
	// OutcomeFailed: the server was unreachable or the response
	// was unusable.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the classified outcome of one submission attempt.
type Result struct {
	Outcome Outcome
	// Status is set for Success and Rejected outcomes.
	Status int
	// Message is the user-facing text for Rejected and Failed.
	Message string
	// Body is the raw server body on Success.
	Body []byte
}

// Config controls how the Pipeline behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Pipeline posts domain payloads to the tenant-scoped public API.
type Pipeline struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewPipeline creates a configured Pipeline with sane defaults.
func NewPipeline(cfg Config) (*Pipeline, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("submit: base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Submit POSTs the payload to the resource-scoped path. A non-empty
// anti-abuse token rides along as a header; a null token is simply
// omitted. No retry: the user must explicitly resubmit.
func (p *Pipeline) Submit(ctx context.Context, path string, payload any, token string) Result {
	ctx, span := pipelineTracer.Start(ctx, "submit.post")
	defer span.End()
	span.SetAttributes(
		attribute.String("zenith.path", path),
		attribute.Bool("zenith.has_token", token != ""),
	)

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("submit: marshal payload", "path", path, "error", err)
		return Result{Outcome: OutcomeFailed, Message: GenericFailureMessage}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeFailed, Message: GenericFailureMessage}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", p.apiKey)
	if token != "" {
		req.Header.Set("X-Recaptcha-Token", token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("submit: request failed", "path", path, "error", err)
		return Result{Outcome: OutcomeFailed, Message: GenericFailureMessage}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Outcome: OutcomeFailed, Message: GenericFailureMessage}
	}

	span.SetAttributes(attribute.Int("zenith.status", resp.StatusCode))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Outcome: OutcomeSuccess, Status: resp.StatusCode, Body: data}
	}
	return Result{
		Outcome: OutcomeRejected,
		Status:  resp.StatusCode,
		Message: rejectionMessage(resp.StatusCode, data),
	}
}

// rejectionMessage extracts the backend's structured error text,
// falling back to a status line when the body is not the expected
// {"error": ...} shape.
func rejectionMessage(status int, body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Error) != "" {
		return parsed.Error
	}
	return fmt.Sprintf("Request was rejected (status %d).", status)
}
