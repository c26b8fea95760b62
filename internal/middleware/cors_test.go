package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// apiCORS mirrors the service defaults: any origin, the session-editing
// verbs, and the request-id header the API echoes.
func apiCORS() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         300,
	}
}

func TestCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		config      CORSConfig
		origin      string
		method      string
		wantOrigin  string
		wantMethods string
		wantHeaders string
		wantMaxAge  string
		wantStatus  int
	}{
		{
			name:        "wildcard origin echoes the caller",
			config:      apiCORS(),
			origin:      "https://dashboard.internal",
			method:      http.MethodPost,
			wantOrigin:  "https://dashboard.internal",
			wantMethods: "GET, POST, PATCH, DELETE, OPTIONS",
			wantHeaders: "Content-Type, Authorization, X-Request-ID",
			wantMaxAge:  "300",
			wantStatus:  http.StatusOK,
		},
		{
			name: "exact origin match",
			config: CORSConfig{
				AllowedOrigins: []string{"https://console.filterdeck.io"},
				AllowedMethods: []string{"GET", "POST"},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         600,
			},
			origin:      "https://console.filterdeck.io",
			method:      http.MethodGet,
			wantOrigin:  "https://console.filterdeck.io",
			wantMethods: "GET, POST",
			wantHeaders: "Content-Type",
			wantMaxAge:  "600",
			wantStatus:  http.StatusOK,
		},
		{
			name: "subdomain wildcard match",
			config: CORSConfig{
				AllowedOrigins: []string{"*.filterdeck.io"},
				AllowedMethods: []string{"GET"},
				AllowedHeaders: []string{"Content-Type"},
			},
			origin:      "https://staging.filterdeck.io",
			method:      http.MethodGet,
			wantOrigin:  "https://staging.filterdeck.io",
			wantMethods: "GET",
			wantHeaders: "Content-Type",
			wantMaxAge:  "300",
			wantStatus:  http.StatusOK,
		},
		{
			name: "origin outside the allow list",
			config: CORSConfig{
				AllowedOrigins: []string{"https://console.filterdeck.io"},
				AllowedMethods: []string{"GET"},
				AllowedHeaders: []string{"Content-Type"},
			},
			origin:      "https://evil.example",
			method:      http.MethodGet,
			wantOrigin:  "",
			wantMethods: "GET",
			wantHeaders: "Content-Type",
			wantMaxAge:  "300",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "preflight short-circuits without reaching the handler",
			config:      apiCORS(),
			origin:      "https://dashboard.internal",
			method:      http.MethodOptions,
			wantOrigin:  "https://dashboard.internal",
			wantMethods: "GET, POST, PATCH, DELETE, OPTIONS",
			wantHeaders: "Content-Type, Authorization, X-Request-ID",
			wantMaxAge:  "300",
			wantStatus:  http.StatusNoContent,
		},
		{
			name: "zero max age falls back to 300",
			config: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET"},
				AllowedHeaders: []string{"Content-Type"},
			},
			origin:      "https://dashboard.internal",
			method:      http.MethodGet,
			wantOrigin:  "https://dashboard.internal",
			wantMethods: "GET",
			wantHeaders: "Content-Type",
			wantMaxAge:  "300",
			wantStatus:  http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			CORS(tt.config)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected Allow-Origin %q, got %q", tt.wantOrigin, got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("Expected Allow-Methods %q, got %q", tt.wantMethods, got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Headers"); got != tt.wantHeaders {
				t.Errorf("Expected Allow-Headers %q, got %q", tt.wantHeaders, got)
			}
			if got := rec.Header().Get("Access-Control-Max-Age"); got != tt.wantMaxAge {
				t.Errorf("Expected Max-Age %q, got %q", tt.wantMaxAge, got)
			}
		})
	}
}

func TestCORSNoOriginHeader(t *testing.T) {
	handler := CORS(apiCORS())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no Allow-Origin for a same-origin request, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestCORSCredentials(t *testing.T) {
	config := apiCORS()
	config.AllowCredentials = true
	handler := CORS(config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "https://dashboard.internal")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Expected Allow-Credentials true, got %q", got)
	}
}
