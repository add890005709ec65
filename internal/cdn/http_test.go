package cdn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPInvalidatorPostsPurge(t *testing.T) {
	var gotPath string
	var gotBody invalidationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	inv := NewHTTPInvalidator(srv.URL)
	if err := inv.Invalidate(context.Background(), "E123ABC", "/*"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if gotPath != "/distributions/E123ABC/invalidations" {
		t.Fatalf("request path = %q", gotPath)
	}
	if len(gotBody.Paths) != 1 || gotBody.Paths[0] != "/*" {
		t.Fatalf("request body = %+v", gotBody)
	}
}

func TestHTTPInvalidatorSurfacesRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "distribution not found", http.StatusNotFound)
	}))
	defer srv.Close()

	inv := NewHTTPInvalidator(srv.URL)
	err := inv.Invalidate(context.Background(), "E999", "/*")
	if err == nil {
		t.Fatal("expected error for rejected invalidation")
	}
	if !strings.Contains(err.Error(), "distribution not found") {
		t.Fatalf("underlying message lost: %v", err)
	}
}

func TestMockInvalidatorRecordsCalls(t *testing.T) {
	m := NewMockInvalidator()
	_ = m.Invalidate(context.Background(), "E1", "/*")
	_ = m.Invalidate(context.Background(), "E1", "/guides/*")
	calls := m.Calls()
	if len(calls) != 2 || calls[1].Pattern != "/guides/*" {
		t.Fatalf("recorded calls wrong: %+v", calls)
	}
}
