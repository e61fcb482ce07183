package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Stream {
			t.Fatalf("expected non-streaming request")
		}
		if req.Model != "llama-test" || req.Prompt != "plan" {
			t.Fatalf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(generateResponse{Response: `{"name":"Trip"}`, Done: true})
	}))
	defer srv.Close()

	p := New("", "llama-test", time.Second)
	// override base URL for test
	p.client.SetBaseURL(srv.URL)

	out, err := p.Generate(context.Background(), "plan")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if out != `{"name":"Trip"}` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGenerate_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "nope", time.Second).Generate(context.Background(), "plan")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest"}]}`))
	}))
	defer srv.Close()

	host := srv.URL[len("http://"):]
	if err := New(host, "llama3.1", time.Second).HealthPing(context.Background()); err != nil {
		t.Fatalf("expected healthy: %v", err)
	}
	if err := New(host, "mistral", time.Second).HealthPing(context.Background()); err == nil {
		t.Fatalf("expected missing model error")
	}
}
