// Package ordering implements the public ordering widget: a product
// catalog, an in-memory cart, and a gated order submission to the
// retail vertical's public API.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/underdog7S/zenith-widgets/internal/captcha"
	"github.com/underdog7S/zenith-widgets/internal/cart"
	"github.com/underdog7S/zenith-widgets/internal/catalog"
	"github.com/underdog7S/zenith-widgets/internal/dom"
	"github.com/underdog7S/zenith-widgets/internal/embed"
	"github.com/underdog7S/zenith-widgets/internal/observability/metrics"
	"github.com/underdog7S/zenith-widgets/internal/submit"
	"github.com/underdog7S/zenith-widgets/internal/widget"
	"github.com/underdog7S/zenith-widgets/pkg/logging"
)

const (
	widgetName = "ordering"

	productsLoadError = "Failed to load products"
	emptyCartError    = "Your cart is empty."
	contactError      = "Please provide your name and phone number."
	successMessage    = "Order placed successfully!"
)

// ErrEmptyCart rejects a submission before any network call when the
// cart has no lines.
var ErrEmptyCart = errors.New("ordering: cart is empty")

// ErrIncompleteForm is returned when the customer contact is missing.
var ErrIncompleteForm = errors.New("ordering: customer name and phone are required")

// Deps are the widget's injected collaborators.
type Deps struct {
	Logger     *logging.Logger
	Metrics    *metrics.WidgetMetrics
	HTTPClient *http.Client
}

// Widget is one ordering widget instance on a host page.
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

	productList *html.Node
	productNote *html.Node
	cartList    *html.Node
	products    []catalog.Product

	cart      *cart.Cart
	qtyInputs map[int]string

	customerName    string
	customerPhone   string
	customerAddress string
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
		cart:       cart.New(),
		qtyInputs:  make(map[int]string),
	}
}

// Mount resolves configuration, builds the UI, and loads the product
// catalog. A missing tenant slug aborts before any DOM write or
// network call.
func (w *Widget) Mount(ctx context.Context, doc *dom.Document, script *html.Node) error {
	cfg, err := embed.Resolve(script, doc.URL)
	if err != nil {
		w.logger.Error("ordering widget: missing tenant slug, not rendering")
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
	w.loadProducts(ctx)
	return nil
}

func (w *Widget) buildUI(container *html.Node) {
	w.root = container
	w.status = widget.NewStatusArea()
	w.productList = dom.Build("ul", nil)
	w.productNote = dom.Build("div", dom.Attrs{"style": map[string]string{"color": "#991b1b"}})
	w.cartList = dom.Build("ul", nil)

	form := dom.Build("div", dom.Attrs{"style": map[string]string{"max-width": "480px"}},
		dom.Build("h3", dom.Attrs{"text": "Order"}),
		w.status.Node(),
		dom.Build("h4", dom.Attrs{"text": "Products"}),
		w.productList,
		w.productNote,
		dom.Build("h4", dom.Attrs{"text": "Cart"}),
		w.cartList,
		dom.Build("input", dom.Attrs{"name": "customer_name", "placeholder": "Name"}),
		dom.Build("input", dom.Attrs{"name": "customer_phone", "type": "tel", "placeholder": "Phone"}),
		dom.Build("input", dom.Attrs{"name": "customer_address", "placeholder": "Delivery address"}),
		dom.Build("button", dom.Attrs{"type": "button", "text": "Place order"}),
	)
	dom.ClearChildren(container)
	container.AppendChild(form)
	w.renderProducts()
	w.renderCart()
}

// loadProducts replaces the product list wholesale on success. On
// failure the previous list stays, an inline message appears, and the
// cart and other controls remain usable.
func (w *Widget) loadProducts(ctx context.Context) {
	products, err := w.loader.LoadProducts(ctx, w.cfg.TenantSlug)
	if err != nil {
		w.logger.Warn("product catalog load failed", "error", err)
		w.metrics.ObserveCatalogFailure(widgetName, "products")
		dom.SetText(w.productNote, productsLoadError)
		return
	}
	w.products = products
	dom.ClearChildren(w.productNote)
	w.renderProducts()
}

func (w *Widget) renderProducts() {
	dom.ClearChildren(w.productList)
	for _, p := range w.products {
		item := dom.Build("li", nil,
			dom.Build("span", dom.Attrs{"text": p.Name}),
			dom.Build("input", dom.Attrs{"type": "number", "min": "1", "value": "1"}),
			dom.Build("button", dom.Attrs{"type": "button", "text": "Add"}),
		)
		w.productList.AppendChild(item)
	}
}

// renderCart rebuilds the cart list; there is no subscription model, so
// every mutation re-renders.
func (w *Widget) renderCart() {
	dom.ClearChildren(w.cartList)
	for _, line := range w.cart.Lines() {
		item := dom.Build("li", nil,
			dom.Build("span", dom.Attrs{"text": fmt.Sprintf("%s x%d", line.Name, line.Quantity)}),
			dom.Build("button", dom.Attrs{"type": "button", "text": "Remove"}),
		)
		w.cartList.AppendChild(item)
	}
}

// SetQuantityInput records the raw text of the numeric input next to a
// product; AddToCart parses it defensively.
func (w *Widget) SetQuantityInput(productID int, raw string) {
	w.qtyInputs[productID] = raw
}

// AddToCart merges the product into the cart using the adjacent
// quantity input, defaulting to 1 for missing or invalid values.
func (w *Widget) AddToCart(productID int) {
	var name string
	found := false
	for _, p := range w.products {
		if p.ID == productID {
			name = p.Name
			found = true
			break
		}
	}
	if !found {
		return
	}
	w.cart.Add(productID, name, cart.ParseQuantity(w.qtyInputs[productID]))
	w.renderCart()
}

// RemoveLine removes a cart line by render-order index.
func (w *Widget) RemoveLine(index int) {
	if w.cart.Remove(index) {
		w.renderCart()
	}
}

// SetCustomerName records the customer's name.
func (w *Widget) SetCustomerName(v string) { w.customerName = v }

// SetCustomerPhone records the customer's phone.
func (w *Widget) SetCustomerPhone(v string) { w.customerPhone = v }

// SetCustomerAddress records the delivery address.
func (w *Widget) SetCustomerAddress(v string) { w.customerAddress = v }

// Cart returns the widget's cart model.
func (w *Widget) Cart() *cart.Cart { return w.cart }

// Products returns the currently loaded product list.
func (w *Widget) Products() []catalog.Product { return w.products }

// Root returns the widget's rendered container.
func (w *Widget) Root() *html.Node { return w.root }

// StatusText exposes the feedback region's visible text.
func (w *Widget) StatusText() string { return w.status.Text() }

// Submit validates the cart and contact fields, obtains an anti-abuse
// token, and posts the order. Success clears the cart; overlapping
// calls are rejected.
func (w *Widget) Submit(ctx context.Context) error {
	if w.pipeline == nil {
		return errors.New("ordering: widget not mounted")
	}
	if !w.inflight.Begin() {
		return widget.ErrSubmissionInFlight
	}
	defer w.inflight.End()

	if w.cart.Len() == 0 {
		w.status.ShowError(emptyCartError)
		return ErrEmptyCart
	}
	if strings.TrimSpace(w.customerName) == "" || strings.TrimSpace(w.customerPhone) == "" {
		w.status.ShowError(contactError)
		return ErrIncompleteForm
	}

	token, err := w.gate.Token(ctx, "order_submit")
	if err != nil {
		return err
	}

	type orderItem struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	items := make([]orderItem, 0, w.cart.Len())
	for _, line := range w.cart.Lines() {
		items = append(items, orderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	payload := struct {
		Customer struct {
			Name    string `json:"name"`
			Phone   string `json:"phone"`
			Address string `json:"address,omitempty"`
		} `json:"customer"`
		Items []orderItem `json:"items"`
	}{}
	payload.Customer.Name = w.customerName
	payload.Customer.Phone = w.customerPhone
	payload.Customer.Address = w.customerAddress
	payload.Items = items

	res := w.pipeline.Submit(ctx, fmt.Sprintf("/public/retail/%s/orders/", w.cfg.TenantSlug), payload, token)
	w.metrics.ObserveSubmission(widgetName, res.Outcome.String())
	switch res.Outcome {
	case submit.OutcomeSuccess:
		w.cart.Clear()
		w.renderCart()
		w.resetForm()
		w.status.ShowSuccess(successMessage)
	default:
		w.status.ShowError(res.Message)
	}
	return nil
}

func (w *Widget) resetForm() {
	w.customerName = ""
	w.customerPhone = ""
	w.customerAddress = ""
}
