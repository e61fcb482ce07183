package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
)

type captured struct {
	method, path, query, authz string
	body                       map[string]interface{}
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method, got.path, got.query = r.Method, r.URL.Path, r.URL.RawQuery
		got.authz = r.Header.Get("Authorization")
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &got.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCreate(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"id":"t1"}`, &got)
	var out bytes.Buffer
	err := runCreate(context.Background(), newAPIClient(srv.URL, "tok"), createOptions{
		Country: "Japan", NumberOfDays: 3, TravelStyle: "Relaxed",
		Interests: []string{"food"}, Budget: "Luxury", GroupType: "Solo",
	}, &out)
	if err != nil {
		t.Fatalf("runCreate: %v", err)
	}
	if got.method != http.MethodPost || got.path != "/api/create-trip" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.authz != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", got.authz)
	}
	if got.body["country"] != "Japan" || got.body["numberOfDays"] != float64(3) {
		t.Fatalf("unexpected body %v", got.body)
	}
	if _, ok := got.body["userId"]; ok {
		t.Fatalf("empty userId should be omitted: %v", got.body)
	}
	if !strings.Contains(out.String(), `"id": "t1"`) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunList_Query(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"trips":[],"total":0}`, &got)
	if err := runList(context.Background(), newAPIClient(srv.URL, ""), "u1", 5, 10, io.Discard); err != nil {
		t.Fatalf("runList: %v", err)
	}
	if got.path != "/api/trips" {
		t.Fatalf("unexpected path %s", got.path)
	}
	for _, want := range []string{"userId=u1", "limit=5", "offset=10"} {
		if !strings.Contains(got.query, want) {
			t.Fatalf("query %q missing %q", got.query, want)
		}
	}
	if got.authz != "" {
		t.Fatalf("no token expected, got %q", got.authz)
	}
}

func TestRunSearch_Errors(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusForbidden, `{"error":"forbidden","code":403}`, &got)
	if err := runSearch(context.Background(), newAPIClient(srv.URL, ""), "", 5, io.Discard); err == nil {
		t.Fatal("expected empty query error")
	}
	err := runSearch(context.Background(), newAPIClient(srv.URL, ""), "kyoto", 5, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "http 403") {
		t.Fatalf("expected http 403 error, got %v", err)
	}
}

func TestRunDownload_Raw(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, "id,userId\nt1,u1\n", &got)
	var out bytes.Buffer
	if err := runDownload(context.Background(), newAPIClient(srv.URL, ""), "/api/admin/trips/export.csv", nil, &out); err != nil {
		t.Fatalf("runDownload: %v", err)
	}
	if out.String() != "id,userId\nt1,u1\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunToken(t *testing.T) {
	var out bytes.Buffer
	if err := runToken("s3cret", "alice", "admin", time.Hour, time.Now(), &out); err != nil {
		t.Fatalf("runToken: %v", err)
	}
	id, err := auth.NewJWTAuthorizer("s3cret").Authenticate(context.Background(), strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if id.UserID != "alice" || !id.IsAdmin() {
		t.Fatalf("unexpected identity %+v", id)
	}

	if err := runToken("", "alice", "user", time.Hour, time.Now(), io.Discard); err == nil {
		t.Fatal("expected missing secret error")
	}
	if err := runToken("s", "alice", "root", time.Hour, time.Now(), io.Discard); err == nil {
		t.Fatal("expected bad role error")
	}
}
