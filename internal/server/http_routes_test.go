package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobmatcher/internal/errors"
)

func testServer(t *testing.T, apiKeys map[string]bool) *Server {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return &Server{
		APIKeys: apiKeys,
		Logger:  logger,
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		apiKeys        map[string]bool
		header         string
		headerValue    string
		expectedStatus int
	}{
		{
			name:           "no keys configured skips auth",
			apiKeys:        map[string]bool{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid X-API-Key",
			apiKeys:        map[string]bool{"secret-key-12345": true},
			header:         "X-API-Key",
			headerValue:    "secret-key-12345",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid bearer token",
			apiKeys:        map[string]bool{"secret-key-12345": true},
			header:         "Authorization",
			headerValue:    "Bearer secret-key-12345",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing key",
			apiKeys:        map[string]bool{"secret-key-12345": true},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid key",
			apiKeys:        map[string]bool{"secret-key-12345": true},
			header:         "X-API-Key",
			headerValue:    "wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, tt.apiKeys)

			handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/match", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.headerValue)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
		})
	}
}

func TestLimitRequestBody(t *testing.T) {
	s := testServer(t, nil)
	s.MaxRequestSize = 16

	handler := s.limitRequestBody(func(w http.ResponseWriter, r *http.Request) {
		var buf [64]byte
		if _, err := r.Body.Read(buf[:]); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "short key fully masked", key: "short", expected: "****"},
		{name: "exactly 8 chars fully masked", key: "12345678", expected: "****"},
		{name: "long key shows prefix", key: "secret-key-12345", expected: "secret-k****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskAPIKey(tt.key); got != tt.expected {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestIsMultipartRequest(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{name: "multipart with boundary", contentType: "multipart/form-data; boundary=xyz", expected: true},
		{name: "json", contentType: "application/json", expected: false},
		{name: "empty", contentType: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/match", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if got := isMultipartRequest(req); got != tt.expected {
				t.Errorf("isMultipartRequest = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseJSONRequest(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/match",
			strings.NewReader(`{"resumeText": "Go engineer", "jobs": ["Go role"]}`))
		req.Header.Set("Content-Type", "application/json")

		var body MatchRequest
		if err := parseJSONRequest(req, &body); err != nil {
			t.Fatalf("parseJSONRequest returned error: %v", err)
		}
		if body.ResumeText != "Go engineer" {
			t.Errorf("ResumeText = %q, want %q", body.ResumeText, "Go engineer")
		}
		if len(body.Jobs) != 1 || body.Jobs[0] != "Go role" {
			t.Errorf("Jobs = %v, want [Go role]", body.Jobs)
		}
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")

		var body MatchRequest
		if err := parseJSONRequest(req, &body); err == nil {
			t.Error("expected error for non-JSON content type")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/match", strings.NewReader(`{broken`))
		req.Header.Set("Content-Type", "application/json")

		var body MatchRequest
		if err := parseJSONRequest(req, &body); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}
