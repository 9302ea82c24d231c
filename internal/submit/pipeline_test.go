package submit

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewPipelineValidation(t *testing.T) {
	if _, err := NewPipeline(Config{}); err == nil {
		t.Fatal("expected base URL validation error")
	}
	p, err := NewPipeline(Config{BaseURL: "https://api.example/api/"})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if p.baseURL != "https://api.example/api" {
		t.Fatalf("base url = %q", p.baseURL)
	}
}

func TestSubmitSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %q", got)
		}
		if got := r.Header.Get("X-API-Key"); got != "key-1" {
			t.Fatalf("api key = %q", got)
		}
		if got := r.Header.Get("X-Recaptcha-Token"); got != "tok-1" {
			t.Fatalf("token header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"name"`) {
			t.Fatalf("body = %s", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 12}`))
	}))
	defer server.Close()

	p, _ := NewPipeline(Config{BaseURL: server.URL, APIKey: "key-1"})
	res := p.Submit(context.Background(), "/public/education/acme/admissions/", map[string]string{"name": "Ada"}, "tok-1")
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if res.Status != http.StatusCreated {
		t.Fatalf("status = %d", res.Status)
	}
	if !strings.Contains(string(res.Body), `"id"`) {
		t.Fatalf("body = %s", res.Body)
	}
}

func TestSubmitOmitsTokenHeaderWhenNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, present := r.Header["X-Recaptcha-Token"]; present {
			t.Fatal("token header should be absent for a null token")
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	p, _ := NewPipeline(Config{BaseURL: server.URL})
	res := p.Submit(context.Background(), "/public/retail/acme/orders/", map[string]int{"x": 1}, "")
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v", res.Outcome)
	}
}

func TestSubmitDomainRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "No seats left in this class"}`))
	}))
	defer server.Close()

	p, _ := NewPipeline(Config{BaseURL: server.URL})
	res := p.Submit(context.Background(), "/public/education/acme/admissions/", map[string]string{}, "")
	if res.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if res.Status != http.StatusBadRequest {
		t.Fatalf("status = %d", res.Status)
	}
	if res.Message != "No seats left in this class" {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestSubmitRejectionWithoutStructuredBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	p, _ := NewPipeline(Config{BaseURL: server.URL})
	res := p.Submit(context.Background(), "/public/retail/acme/orders/", map[string]string{}, "")
	if res.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if !strings.Contains(res.Message, "502") {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestSubmitNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p, _ := NewPipeline(Config{BaseURL: server.URL})
	res := p.Submit(context.Background(), "/public/retail/acme/orders/", map[string]string{}, "")
	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if res.Message != GenericFailureMessage {
		t.Fatalf("message = %q", res.Message)
	}
}
