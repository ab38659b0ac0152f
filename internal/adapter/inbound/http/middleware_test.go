package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates ID when absent", func(t *testing.T) {
		var seen string
		h := RequestIDMiddleware(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = w.Header().Get("X-Request-ID")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if seen == "" {
			t.Error("no X-Request-ID generated")
		}
		if rec.Header().Get("X-Request-ID") != seen {
			t.Error("X-Request-ID not echoed to client")
		}
	})

	t.Run("preserves caller ID", func(t *testing.T) {
		h := RequestIDMiddleware(slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "caller-id-7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "caller-id-7" {
			t.Errorf("X-Request-ID = %q, want caller-id-7", got)
		}
	})
}

func TestRealIPMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr fallback",
			remoteAddr: "192.0.2.10:43210",
			want:       "192.0.2.10",
		},
		{
			name:       "x-forwarded-for first entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			want:       "203.0.113.5",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "198.51.100.2",
		},
		{
			name:       "forwarded-for wins over real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.5",
				"X-Real-IP":       "198.51.100.2",
			},
			want: "203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIPFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("client IP = %q, want %q", got, tt.want)
			}
		})
	}
}
