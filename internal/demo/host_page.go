// Package demo serves a simulated third-party host page that embeds
// all three public widgets via the documented script-tag contract.
// Useful for manual testing against a local backend.
package demo

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HostPageHandler serves the demo host page.
// URL parameters:
//   - slug: tenant slug the embedded widgets point at (default "demo-tenant")
type HostPageHandler struct{}

func NewHostPageHandler() *HostPageHandler {
	return &HostPageHandler{}
}

func (h *HostPageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleHostPage)
	return r
}

func (h *HostPageHandler) HandleHostPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(demoHostHTML))
}

const demoHostHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Acme Host Site — widget embed demo</title>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; background: #f9fafb; color: #1f2937; }
    header { background: #4f46e5; color: #fff; padding: 16px 24px; }
    main { max-width: 960px; margin: 24px auto; display: grid; gap: 24px; }
    section { background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px; }
    h2 { margin-top: 0; font-size: 18px; }
  </style>
</head>
<body>
  <header><strong>Acme Salon &amp; Store</strong> — an arbitrary host page the tenant does not control</header>
  <main>
    <section>
      <h2>Book an appointment</h2>
      <div id="booking-slot"></div>
      <script src="/widgets/booking.js"
              data-slug="demo-tenant"
              data-target="booking-slot"
              data-recaptcha-site-key=""></script>
    </section>
    <section>
      <h2>Order products</h2>
      <script src="/widgets/ordering.js"
              data-slug="demo-tenant"></script>
    </section>
    <section>
      <h2>Apply for admission</h2>
      <script src="/widgets/admission.js"
              data-slug="demo-tenant"></script>
    </section>
  </main>
</body>
</html>
`
