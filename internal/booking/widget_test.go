package booking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/internal/embed"
)

type fakeBackend struct {
	mu                sync.Mutex
	requests          int
	appointments      [][]byte
	appointmentStatus int
	appointmentBody   string
	stylistStatus     int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		appointmentStatus: http.StatusCreated,
		appointmentBody:   `{"id": 9}`,
		stylistStatus:     http.StatusOK,
	}
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests++
		b.mu.Unlock()
		switch r.URL.Path {
		case "/public/salon/acme-salon/services/":
			_, _ = w.Write([]byte(`{"services":[{"id":1,"name":"Cut","duration_minutes":45}]}`))
		case "/public/salon/acme-salon/stylists/":
			if b.stylistStatus != http.StatusOK {
				w.WriteHeader(b.stylistStatus)
				return
			}
			_, _ = w.Write([]byte(`{"stylists":[{"id":2,"name":"Sam"}]}`))
		case "/public/salon/acme-salon/appointments/":
			body, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.appointments = append(b.appointments, body)
			b.mu.Unlock()
			w.WriteHeader(b.appointmentStatus)
			_, _ = w.Write([]byte(b.appointmentBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func mountWidget(t *testing.T, apiBase string) *Widget {
	t.Helper()
	doc := dom.NewDocument("https://host.example/booking")
	script := dom.Build("script", dom.Attrs{
		"data-slug":     "acme-salon",
		"data-api-base": apiBase,
	})
	doc.Append(doc.Body(), script)

	w := New(Deps{})
	require.NoError(t, w.Mount(context.Background(), doc, script))
	return w
}

func TestMountLoadsCatalogsAndSubmits(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	require.Len(t, w.Services(), 1)
	require.Len(t, w.Stylists(), 1)

	w.SelectService(1)
	w.SelectStylist(2)
	w.SetStartInput("25-12-2024 02:30 PM")
	w.SetCustomerName("Ada")
	w.SetCustomerPhone("+15550001111")

	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, backend.appointments, 1)
	var payload struct {
		CustomerName string `json:"customer_name"`
		ServiceID    int    `json:"service_id"`
		StylistID    int    `json:"stylist_id"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
	}
	require.NoError(t, json.Unmarshal(backend.appointments[0], &payload))
	assert.Equal(t, "Ada", payload.CustomerName)
	assert.Equal(t, 1, payload.ServiceID)
	assert.Equal(t, "2024-12-25T14:30", payload.StartTime)
	assert.Equal(t, "2024-12-25T15:15", payload.EndTime)

	assert.Equal(t, successMessage, w.StatusText())
	assert.Equal(t, PhaseIdle, w.Phase())

	// The form reset: an immediate resubmission is incomplete.
	assert.ErrorIs(t, w.Submit(context.Background()), ErrIncompleteForm)
}

func TestForbiddenRemapsToBookingsClosed(t *testing.T) {
	backend := newFakeBackend()
	backend.appointmentStatus = http.StatusForbidden
	backend.appointmentBody = `{"error": "forbidden for this key"}`
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	w.SelectService(1)
	w.SetStartInput("2024-12-25T14:30")
	w.SetCustomerName("Ada")
	w.SetCustomerPhone("+15550001111")

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, BookingsClosedMessage, w.StatusText())
	assert.Equal(t, PhaseRejected, w.Phase())

	// The next user edit drops the machine back to Idle and clears
	// the stale banner.
	w.SetCustomerName("Beth")
	assert.Equal(t, PhaseIdle, w.Phase())
	assert.Empty(t, w.StatusText())
}

func TestStylistFailureDoesNotBlockServices(t *testing.T) {
	backend := newFakeBackend()
	backend.stylistStatus = http.StatusInternalServerError
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	assert.Len(t, w.Services(), 1)
	assert.Empty(t, w.Stylists())
	assert.Contains(t, dom.TextContent(w.Root()), stylistsLoadError)
}

func TestMissingSlugTouchesNothing(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	doc := dom.NewDocument("https://host.example/booking")
	script := dom.Build("script", dom.Attrs{"data-api-base": server.URL})
	doc.Append(doc.Body(), script)

	w := New(Deps{})
	require.ErrorIs(t, w.Mount(context.Background(), doc, script), embed.ErrMissingSlug)
	assert.Zero(t, requests)
	assert.Nil(t, script.NextSibling, "no container may be synthesized")
	assert.Same(t, script, doc.Body().FirstChild)
	assert.Same(t, script, doc.Body().LastChild)
}

func TestQueryOverridesBeatScriptAttributes(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	page := "https://host.example/booking?slug=acme-salon&api_base=" + url.QueryEscape(server.URL)
	doc := dom.NewDocument(page)
	script := dom.Build("script", dom.Attrs{
		"data-slug":     "stale-tenant",
		"data-api-base": "http://unreachable.invalid",
	})
	doc.Append(doc.Body(), script)

	w := New(Deps{})
	require.NoError(t, w.Mount(context.Background(), doc, script))
	assert.Len(t, w.Services(), 1, "catalogs must load via the query-provided base and slug")
}
