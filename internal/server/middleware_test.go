package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"assigned", ""},
		{"propagated", "trace-from-proxy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = RequestID(r.Context())
			}))
			req := httptest.NewRequest("GET", "/api/v1/printers", http.NoBody)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if seen == "" {
				t.Fatal("request ID missing from context")
			}
			if tt.incoming != "" && seen != tt.incoming {
				t.Errorf("context ID = %q, want %q", seen, tt.incoming)
			}
			if got := w.Header().Get("X-Request-ID"); got != seen {
				t.Errorf("response header = %q, want %q", got, seen)
			}
		})
	}
}

func TestLoggingMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel zapcore.Level
		wantLogs  int
	}{
		{"success", "/api/v1/printers", http.StatusOK, zapcore.InfoLevel, 1},
		{"bad gateway", "/api/v1/printers/p1/details", http.StatusBadGateway, zapcore.WarnLevel, 1},
		{"quiet path", "/healthz", http.StatusOK, zapcore.InfoLevel, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := LoggingMiddleware(zap.New(core), []string{"/healthz"})(statusHandler(tt.status))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", tt.path, http.NoBody))

			entries := logs.All()
			if len(entries) != tt.wantLogs {
				t.Fatalf("log entries = %d, want %d", len(entries), tt.wantLogs)
			}
			if tt.wantLogs == 0 {
				return
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.wantLevel)
			}
			if got := entries[0].ContextMap()["status"]; got != int64(tt.status) {
				t.Errorf("status field = %v, want %d", got, tt.status)
			}
		})
	}
}

func TestMetricRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/printers", "/api/v1/printers"},
		{"/api/v1/printers/", "/api/v1/printers/"},
		{"/api/v1/printers/7f3c", "/api/v1/printers/{id}"},
		{"/api/v1/printers/7f3c/details", "/api/v1/printers/{id}/details"},
		{"/api/v1/printers/7f3c/alerts", "/api/v1/printers/{id}/alerts"},
		{"/api/v1/printers/test-connection", "/api/v1/printers/test-connection"},
		{"/api/v1/monitor/alerts/a-1/acknowledge", "/api/v1/monitor/alerts/{id}/acknowledge"},
		{"/api/v1/monitor/alerts/acknowledge-all", "/api/v1/monitor/alerts/acknowledge-all"},
		{"/healthz", "/healthz"},
	}
	for _, tt := range tests {
		if got := metricRoute(tt.path); got != tt.want {
			t.Errorf("metricRoute(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeadersMiddleware(statusHandler(http.StatusOK)).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/printers", http.NoBody))

	for header, want := range securityHeaders {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestVersionHeaderMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	VersionHeaderMiddleware(statusHandler(http.StatusOK)).ServeHTTP(w, httptest.NewRequest("GET", "/", http.NoBody))

	if w.Header().Get("X-PrintWatch-Version") == "" {
		t.Error("X-PrintWatch-Version not set")
	}
}

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("nil snapshot")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/printers/p1/details", http.NoBody))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content-type = %q, want application/problem+json", ct)
	}
	if n := logs.FilterMessage("panic recovered").Len(); n != 1 {
		t.Errorf("panic log entries = %d, want 1", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(0.001, 2, []string{"/healthz"})(statusHandler(http.StatusOK))

	serve := func(path, remote string) int {
		req := httptest.NewRequest("GET", path, http.NoBody)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := serve("/api/v1/printers", "10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d within burst: status = %d", i, code)
		}
	}
	if code := serve("/api/v1/printers", "10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("over burst: status = %d, want 429", code)
	}
	if code := serve("/api/v1/printers", "10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", code)
	}
	for i := 0; i < 5; i++ {
		if code := serve("/healthz", "10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("exempt path: status = %d, want 200", code)
		}
	}
}

func TestProbeRateLimitMiddleware(t *testing.T) {
	handler := ProbeRateLimitMiddleware(0.001, 1)(statusHandler(http.StatusOK))

	tests := []struct {
		name        string
		path        string
		wantLimited bool
	}{
		{"details", "/api/v1/printers/abc/details", true},
		{"test connection", "/api/v1/printers/test-connection", true},
		{"monitor check", "/api/v1/monitor/check", true},
		{"list printers", "/api/v1/printers", false},
		{"alerts", "/api/v1/monitor/alerts", false},
		{"non api", "/details", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			req.RemoteAddr = "10.0.0.3:9999"

			var last int
			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				last = w.Code
			}

			limited := last == http.StatusTooManyRequests
			if limited != tt.wantLimited {
				t.Errorf("limited = %v, want %v (last status %d)", limited, tt.wantLimited, last)
			}
		})
	}
}

func TestClientLimiters_EvictsIdle(t *testing.T) {
	l := newClientLimiters(1, 1)
	start := time.Now()
	l.allow("stale", start)

	// Force the eviction path with a full table.
	for i := len(l.buckets); i < maxTrackedClients; i++ {
		l.buckets[time.Duration(i).String()] = &clientBucket{lastSeen: start.Add(clientIdleTTL)}
	}
	l.allow("fresh", start.Add(clientIdleTTL+time.Second))

	if _, ok := l.buckets["stale"]; ok {
		t.Error("idle client was not evicted")
	}
	if _, ok := l.buckets["fresh"]; !ok {
		t.Error("new client was not tracked")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"remote addr", "192.168.1.100:12345", "", "192.168.1.100"},
		{"forwarded", "127.0.0.1:12345", "203.0.113.50, 70.41.3.18", "203.0.113.50"},
		{"blank forwarded", "192.168.1.7:80", " ", "192.168.1.7"},
		{"no port", "printwatch-test", "", "printwatch-test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordingWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &recordingWriter{ResponseWriter: rec, status: http.StatusOK}

	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"id":"p1"}`))

	if w.status != http.StatusCreated {
		t.Errorf("status = %d, want first code %d", w.status, http.StatusCreated)
	}
	if w.bytes != 11 {
		t.Errorf("bytes = %d, want 11", w.bytes)
	}
	if w.Unwrap() != rec {
		t.Error("Unwrap should return the wrapped writer")
	}
	if _, _, err := w.Hijack(); err == nil {
		t.Error("expected error when the wrapped writer cannot hijack")
	}
}
