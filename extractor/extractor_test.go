package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPClientReconstruct(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"html": "<h1>Doc</h1><p>body</p>"})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	html, err := c.Reconstruct(context.Background(), Request{
		Data:       []byte("payload"),
		MimeType:   "text/plain",
		TargetHint: "pdf",
	})
	if err != nil {
		t.Fatal(err)
	}
	if html != "<h1>Doc</h1><p>body</p>" {
		t.Fatalf("html = %q", html)
	}
	if got.MimeType != "text/plain" || got.TargetHint != "pdf" {
		t.Fatalf("request not forwarded: %+v", got)
	}
	if string(got.Data) != "payload" {
		t.Fatalf("data not forwarded: %q", got.Data)
	}
}

func TestHTTPClientServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "malformed input"})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := c.Reconstruct(context.Background(), Request{Data: []byte("x")})
	if err == nil {
		t.Fatal("expected error")
	}
	// Service-supplied reason is surfaced verbatim.
	if !strings.Contains(err.Error(), "malformed input") {
		t.Fatalf("error = %v", err)
	}
}

func TestHTTPClientEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"html": "   "})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := c.Reconstruct(context.Background(), Request{Data: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "empty content") {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestHTTPClientUnreachable(t *testing.T) {
	c := NewHTTPClient(HTTPConfig{Endpoint: "http://127.0.0.1:1"})
	_, err := c.Reconstruct(context.Background(), Request{Data: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("expected unreachable error, got %v", err)
	}
}

func TestHTTPClientMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{Endpoint: srv.URL})
	_, err := c.Reconstruct(context.Background(), Request{Data: []byte("x")})
	if err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}
