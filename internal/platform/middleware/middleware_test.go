// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-identity/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-identity/internal/platform/middleware"
)

type corsConfig struct {
	development bool
	origins     []string
}

func (c corsConfig) IsDevelopment() bool      { return c.development }
func (c corsConfig) AllowedOrigins() []string { return c.origins }

/*
TestRequestID_GeneratesAndEchoes verifies the correlation header round-trip.
*/
func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	// 1. Generated when absent
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	// 2. Propagated when supplied
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "upstream-id")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "upstream-id", seen)
}

/*
TestStructuredLogger_LogsAccount verifies the access log line carries the account set by the gate.
*/
func TestStructuredLogger_LogsAccount(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	issuer := newIssuer(t)
	token, err := issuer.IssueAccess("acc-7")
	require.NoError(t, err)

	chain := middleware.StructuredLogger(logger)(
		middleware.RequireAccessToken(issuer)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})),
	)

	request := httptest.NewRequest(http.MethodGet, "/profile", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	chain.ServeHTTP(httptest.NewRecorder(), request)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	assert.Equal(t, "http_request_finished", entry["msg"])
	assert.Equal(t, "acc-7", entry["account_id"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
}

/*
TestPanicRecovery_Returns500 verifies a panicking handler yields a generic error body.
*/
func TestPanicRecovery_Returns500(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/profile", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "nil map")
}

/*
TestCORS_Origins verifies development is open and production honours the list.
*/
func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name    string
		cfg     corsConfig
		origin  string
		allowed bool
	}{
		{"dev_any", corsConfig{development: true}, "http://localhost:3000", true},
		{"prod_listed", corsConfig{origins: []string{"https://yomira.app"}}, "https://yomira.app", true},
		{"prod_unlisted", corsConfig{origins: []string{"https://yomira.app"}}, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(tt.cfg)(okHandler())

			request := httptest.NewRequest(http.MethodOptions, "/login", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, recorder.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

/*
TestRealIP verifies the socket address is used and client headers are ignored.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	request.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))
}

/*
TestTrustedProxies verifies forwarded headers count only when the peer is a listed proxy.
*/
func TestTrustedProxies(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name       string
		prefixes   []netip.Prefix
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"no_proxies_configured", nil, "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.1.2.3"},
		{"untrusted_peer", proxies, "192.0.2.1:4000", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "192.0.2.1"},
		{"trusted_forwarded_for", proxies, "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "203.0.113.5,10.0.0.1"}, "203.0.113.5"},
		{"trusted_real_ip", proxies, "10.1.2.3:4000", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"trusted_garbage_header", proxies, "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.1.2.3"},
		{"trusted_without_header", proxies, "10.1.2.3:4000", nil, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := middleware.TrustedProxies(tt.prefixes)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
				got = middleware.RealIP(request)
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				request.Header.Set(key, value)
			}

			handler.ServeHTTP(httptest.NewRecorder(), request)
			assert.Equal(t, tt.want, got)
		})
	}
}
