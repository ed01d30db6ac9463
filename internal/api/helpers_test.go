package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteJSON_EncodeFailureLeavesBodyClean(t *testing.T) {
	w := httptest.NewRecorder()
	// Channels are not JSON-encodable.
	writeJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want the already-sent %d", w.Code, http.StatusOK)
	}
	if strings.Contains(w.Body.String(), "failed to encode") {
		t.Errorf("error text leaked into the response body: %q", w.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, http.StatusNotFound, "unknown stream: nope")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["error"] != "unknown stream: nope" {
		t.Errorf("error = %q", body["error"])
	}
}
