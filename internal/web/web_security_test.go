package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLocalhostOnly(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		host string
		want int
	}{
		{"localhost:4078", http.StatusOK},
		{"127.0.0.1:4078", http.StatusOK},
		{"[::1]:4078", http.StatusOK},
		{"localhost", http.StatusOK},
		{"evil.com:4078", http.StatusForbidden},
		{"docs.attacker.example:4078", http.StatusForbidden},
		{"192.168.1.1:4078", http.StatusForbidden},
		{"169.254.169.254", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Host = tt.host
			rr := httptest.NewRecorder()
			srv.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("host %q: status %d, want %d", tt.host, rr.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeaders_OnAPIResponses(t *testing.T) {
	rr := get(t, newTestServer(t), "/api/tree", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected a Content-Security-Policy header")
	}
}

func TestHandleDoc_RejectsHiddenSegments(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/docs/.git/config",
		"/api/docs/A_Intro/.hidden",
		"/api/docs/%2E%2E/secret",
	} {
		t.Run(path, func(t *testing.T) {
			rr := get(t, srv, path, nil)
			if rr.Code == http.StatusOK {
				t.Errorf("expected %s to be rejected, got 200", path)
			}
		})
	}
}
