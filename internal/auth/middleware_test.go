package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testTokens(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService([]byte("test-secret-key-32bytes-long!!"), 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestAuthMiddleware_PassThrough(t *testing.T) {
	mw := AuthMiddleware(testTokens(t))

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/api/v1/health", "/api/v1/ws/alerts"} {
		t.Run(path, func(t *testing.T) {
			called := false
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
			if !called {
				t.Errorf("handler should have been called for %s", path)
			}
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	ts := testTokens(t)
	other, _ := NewTokenService([]byte("a-different-secret"), time.Minute)
	foreign, _ := other.IssueAccessToken("u1", "mallory", "admin")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreign},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := AuthMiddleware(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			req := httptest.NewRequest("GET", "/api/v1/printers", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if called {
				t.Error("handler should NOT have been called")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q, want application/problem+json", ct)
			}
		})
	}
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	ts := testTokens(t)
	token, err := ts.IssueAccessToken("u1", "alice", "admin")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	var got *Claims
	handler := AuthMiddleware(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
	}))
	req := httptest.NewRequest("GET", "/api/v1/printers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("claims missing from context")
	}
	if got.Username != "alice" || got.UserID != "u1" {
		t.Errorf("claims = %+v", got)
	}
}
