// Package embed resolves widget configuration from the hosting script
// tag and, for the booking widget, URL query overrides.
package embed

import (
	"errors"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/underdog7S/zenith-widgets/internal/dom"
)

// ErrMissingSlug is the fatal initialization error: without a tenant
// slug the widget renders nothing and touches nothing.
var ErrMissingSlug = errors.New("embed: tenant slug missing")

// backendPort is the fixed port the public API listens on during
// development; the default API base rewrites the host page's port to it.
const backendPort = "8000"

// Script tag data attributes of the embedding contract.
const (
	AttrSlug           = "data-slug"
	AttrAPIKey         = "data-api-key"
	AttrAPIBase        = "data-api-base"
	AttrTarget         = "data-target"
	AttrCaptchaSiteKey = "data-recaptcha-site-key"
)

// URL query parameters the booking widget accepts as overrides.
const (
	QuerySlug           = "slug"
	QueryAPIKey         = "api_key"
	QueryAPIBase        = "api_base"
	QueryCaptchaSiteKey = "recaptcha_site_key"
)

// Config is a widget instance's resolved configuration. It is built
// once at mount time and immutable thereafter.
type Config struct {
	InstanceID        string
	TenantSlug        string
	APIKey            string
	APIBase           string
	TargetContainerID string
	CaptchaSiteKey    string
}

// Resolve builds a Config from the hosting script element's data
// attributes. pageURL is the address of the host page; it only feeds
// the default API base. A missing slug is the one fatal condition.
func Resolve(script *html.Node, pageURL string) (Config, error) {
	cfg := Config{
		InstanceID:        uuid.NewString(),
		TenantSlug:        dom.GetAttr(script, AttrSlug),
		APIKey:            dom.GetAttr(script, AttrAPIKey),
		APIBase:           dom.GetAttr(script, AttrAPIBase),
		TargetContainerID: dom.GetAttr(script, AttrTarget),
		CaptchaSiteKey:    dom.GetAttr(script, AttrCaptchaSiteKey),
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase(pageURL)
	}
	if cfg.TenantSlug == "" {
		return Config{}, ErrMissingSlug
	}
	return cfg, nil
}

// ResolveWithOverrides resolves like Resolve but lets same-named query
// parameters on the host page URL override the script attributes, query
// taking precedence. Only the booking widget uses this. A malformed
// query string is swallowed: the overrides are skipped, never an error.
func ResolveWithOverrides(script *html.Node, pageURL string) (Config, error) {
	cfg := Config{
		InstanceID:        uuid.NewString(),
		TenantSlug:        dom.GetAttr(script, AttrSlug),
		APIKey:            dom.GetAttr(script, AttrAPIKey),
		APIBase:           dom.GetAttr(script, AttrAPIBase),
		TargetContainerID: dom.GetAttr(script, AttrTarget),
		CaptchaSiteKey:    dom.GetAttr(script, AttrCaptchaSiteKey),
	}
	for key, val := range queryOverrides(pageURL) {
		switch key {
		case QuerySlug:
			cfg.TenantSlug = val
		case QueryAPIKey:
			cfg.APIKey = val
		case QueryAPIBase:
			cfg.APIBase = val
		case QueryCaptchaSiteKey:
			cfg.CaptchaSiteKey = val
		}
	}
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase(pageURL)
	}
	if cfg.TenantSlug == "" {
		return Config{}, ErrMissingSlug
	}
	return cfg, nil
}

// DefaultAPIBase derives the backend API base from the host page URL:
// same origin with the port rewritten to the fixed backend port, plus
// the /api suffix. Unparseable URLs fall back to localhost.
func DefaultAPIBase(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return "http://localhost:" + backendPort + "/api"
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + u.Hostname() + ":" + backendPort + "/api"
}

// queryOverrides extracts recognized override parameters from the page
// URL. Parse failures yield no overrides; individual malformed pairs
// are dropped by the query parser without affecting the rest.
func queryOverrides(pageURL string) map[string]string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	values := u.Query()
	overrides := make(map[string]string, 4)
	for _, key := range []string{QuerySlug, QueryAPIKey, QueryAPIBase, QueryCaptchaSiteKey} {
		if v := values.Get(key); v != "" {
			overrides[key] = v
		}
	}
	return overrides
}
