package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serveCORS(origins []string, method, origin string) *httptest.ResponseRecorder {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/v1/todos", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
		if method == http.MethodOptions {
			req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	app := []string{"https://app.example.com"}

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"nothing configured denies cross-origin", nil, http.MethodGet, "https://app.example.com", 200, ""},
		{"exact origin allowed", app, http.MethodGet, "https://app.example.com", 200, "https://app.example.com"},
		{"configured origin is case-insensitive", []string{"HTTPS://APP.EXAMPLE.COM"}, http.MethodGet, "https://app.example.com", 200, "https://app.example.com"},
		{"other origin passes through without headers", app, http.MethodPost, "https://evil.test", 200, ""},
		{"other origin preflight forbidden", app, http.MethodOptions, "https://evil.test", 403, ""},
		{"allowed preflight answers 204", app, http.MethodOptions, "https://app.example.com", 204, "https://app.example.com"},
		{"wildcard matches subdomain", []string{"*.example.com"}, http.MethodDelete, "https://todo.example.com", 200, "https://todo.example.com"},
		{"wildcard rejects lookalike", []string{"*.example.com"}, http.MethodGet, "https://notexample.com", 200, ""},
		{"same-origin request untouched", app, http.MethodGet, "", 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveCORS(tt.origins, tt.method, tt.origin)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	rec := serveCORS([]string{"https://app.example.com"}, http.MethodOptions, "https://app.example.com")

	h := rec.Header()
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete} {
		if !strings.Contains(h.Get("Access-Control-Allow-Methods"), method) {
			t.Errorf("Access-Control-Allow-Methods = %q, missing %s", h.Get("Access-Control-Allow-Methods"), method)
		}
	}
	if !strings.Contains(h.Get("Access-Control-Allow-Headers"), "Content-Type") {
		t.Errorf("Access-Control-Allow-Headers = %q, missing Content-Type", h.Get("Access-Control-Allow-Headers"))
	}
	if got := h.Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want 86400", got)
	}
	if got := h.Get("Access-Control-Expose-Headers"); !strings.Contains(got, RequestIDHeader) {
		t.Errorf("Access-Control-Expose-Headers = %q, want %s", got, RequestIDHeader)
	}
	if got := h.Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want Origin", got)
	}
}

func TestCORSCredentials(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	cfg.AllowCredentials = true

	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
	}
}
