// Package catalog fetches tenant-scoped reference data from the public
// API. Each widget loads the catalogs it needs independently; a failed
// load never corrupts previously loaded data; the caller keeps its
// existing list and surfaces an inline message.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Config controls how the Loader behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Loader reads public catalog resources for one tenant API base.
type Loader struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewLoader creates a configured Loader with sane defaults.
func NewLoader(cfg Config) (*Loader, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("catalog: base URL is required")
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
	return &Loader{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// LoadServices fetches the salon service list for a tenant.
func (l *Loader) LoadServices(ctx context.Context, slug string) ([]Service, error) {
	var wrapper struct {
		Services []Service `json:"services"`
	}
	if err := l.get(ctx, fmt.Sprintf("/public/salon/%s/services/", slug), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Services, nil
}

// LoadStylists fetches the salon stylist list for a tenant.
func (l *Loader) LoadStylists(ctx context.Context, slug string) ([]Stylist, error) {
	var wrapper struct {
		Stylists []Stylist `json:"stylists"`
	}
	if err := l.get(ctx, fmt.Sprintf("/public/salon/%s/stylists/", slug), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Stylists, nil
}

// LoadProducts fetches the retail product list for a tenant.
func (l *Loader) LoadProducts(ctx context.Context, slug string) ([]Product, error) {
	var wrapper struct {
		Products []Product `json:"products"`
	}
	if err := l.get(ctx, fmt.Sprintf("/public/retail/%s/products/", slug), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Products, nil
}

// LoadClasses fetches the education class list for a tenant.
func (l *Loader) LoadClasses(ctx context.Context, slug string) ([]Class, error) {
	var wrapper struct {
		Classes []Class `json:"classes"`
	}
	if err := l.get(ctx, fmt.Sprintf("/public/education/%s/classes/", slug), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Classes, nil
}

func (l *Loader) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("X-API-Key", l.apiKey)
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("catalog: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.logger.Warn("catalog load failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("catalog: http status %d for %s", resp.StatusCode, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: decode response: %w", err)
	}
	return nil
}
