package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSOptions(t *testing.T) {
	tests := []struct {
		name            string
		origins         []string
		wantOrigins     []string
		wantCredentials bool
	}{
		{name: "explicit origins", origins: []string{"http://localhost:3000"}, wantOrigins: []string{"http://localhost:3000"}, wantCredentials: true},
		{name: "wildcard", origins: []string{"http://a.test", "*"}, wantOrigins: []string{"*"}},
		{name: "empty", origins: nil, wantOrigins: []string{"*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := corsOptions(tt.origins)
			if len(opts.AllowedOrigins) != len(tt.wantOrigins) || opts.AllowedOrigins[0] != tt.wantOrigins[0] {
				t.Errorf("AllowedOrigins = %v, want %v", opts.AllowedOrigins, tt.wantOrigins)
			}
			if opts.AllowCredentials != tt.wantCredentials {
				t.Errorf("AllowCredentials = %v, want %v", opts.AllowCredentials, tt.wantCredentials)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/dashboard/", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("http://localhost:3000")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	rec = preflight("http://evil.test")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q for unknown origin", got)
	}
}
