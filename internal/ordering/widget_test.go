package ordering

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/internal/widget"
)

type fakeBackend struct {
	mu            sync.Mutex
	orders        [][]byte
	productStatus int
	orderStarted  chan struct{}
	orderRelease  chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{productStatus: http.StatusOK}
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/retail/acme-mart/products/":
			if b.productStatus != http.StatusOK {
				w.WriteHeader(b.productStatus)
				return
			}
			_, _ = w.Write([]byte(`{"products":[{"id":7,"name":"Widget","price":9.5,"in_stock":true},{"id":8,"name":"Gadget","in_stock":true}]}`))
		case "/public/retail/acme-mart/orders/":
			if b.orderStarted != nil {
				close(b.orderStarted)
			}
			if b.orderRelease != nil {
				<-b.orderRelease
			}
			body, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.orders = append(b.orders, body)
			b.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 31}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func mountWidget(t *testing.T, apiBase string) *Widget {
	t.Helper()
	doc := dom.NewDocument("https://host.example/shop")
	script := dom.Build("script", dom.Attrs{
		"data-slug":     "acme-mart",
		"data-api-base": apiBase,
	})
	doc.Append(doc.Body(), script)

	w := New(Deps{})
	require.NoError(t, w.Mount(context.Background(), doc, script))
	return w
}

func TestCartAggregationThroughTheWidget(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	require.Len(t, w.Products(), 2)

	w.AddToCart(7)
	w.AddToCart(7)
	lines := w.Cart().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	w.SetQuantityInput(8, "not a number")
	w.AddToCart(8)
	lines = w.Cart().Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Quantity)

	// Unknown products never reach the cart.
	w.AddToCart(99)
	assert.Equal(t, 2, w.Cart().Len())

	w.RemoveLine(0)
	lines = w.Cart().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 8, lines[0].ProductID)
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	w.SetQuantityInput(7, "2")
	w.AddToCart(7)
	w.SetCustomerName("Ada")
	w.SetCustomerPhone("+15550001111")
	w.SetCustomerAddress("1 Main St")

	require.NoError(t, w.Submit(context.Background()))

	require.Len(t, backend.orders, 1)
	var payload struct {
		Customer struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		} `json:"customer"`
		Items []struct {
			ProductID int `json:"product_id"`
			Quantity  int `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(backend.orders[0], &payload))
	assert.Equal(t, "Ada", payload.Customer.Name)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, 7, payload.Items[0].ProductID)
	assert.Equal(t, 2, payload.Items[0].Quantity)

	assert.Zero(t, w.Cart().Len())
	assert.Equal(t, successMessage, w.StatusText())

	// Resubmitting the now-empty cart is rejected before any network
	// call.
	assert.ErrorIs(t, w.Submit(context.Background()), ErrEmptyCart)
	assert.Len(t, backend.orders, 1)
	assert.Equal(t, emptyCartError, w.StatusText())
}

func TestProductLoadFailureKeepsWidgetUsable(t *testing.T) {
	backend := newFakeBackend()
	backend.productStatus = http.StatusInternalServerError
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	assert.Empty(t, w.Products())
	assert.Contains(t, dom.TextContent(w.Root()), productsLoadError)

	// The cart and contact controls still work.
	w.SetCustomerName("Ada")
	w.SetCustomerPhone("+15550001111")
	assert.ErrorIs(t, w.Submit(context.Background()), ErrEmptyCart)
}

func TestOverlappingSubmissionsAreRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.orderStarted = make(chan struct{})
	backend.orderRelease = make(chan struct{})
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	w := mountWidget(t, server.URL)
	w.AddToCart(7)
	w.SetCustomerName("Ada")
	w.SetCustomerPhone("+15550001111")

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- w.Submit(context.Background())
	}()

	// Once the backend has the first request, the guard is held.
	<-backend.orderStarted
	assert.ErrorIs(t, w.Submit(context.Background()), widget.ErrSubmissionInFlight)

	close(backend.orderRelease)
	require.NoError(t, <-firstDone)
	assert.Len(t, backend.orders, 1)
}
