package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	foliohttp "github.com/sagarc03/folio/http"
	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"extra spaces", "Bearer    abc123  ", "abc123"},
		{"basic auth", "Basic dXNlcjpwdw==", ""},
		{"scheme only", "Bearer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, foliohttp.BearerToken(req))
		})
	}
}

func TestRequireToken_Missing(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	wrapped := foliohttp.RequireToken(handler)

	req := httptest.NewRequest("GET", "/api/me", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireToken_StoresToken(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = foliohttp.TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := foliohttp.RequireToken(handler)

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc123", seen)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	req := httptest.NewRequest("GET", "/x", nil)
	rec := httptest.NewRecorder()

	foliohttp.RequestLogger(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
