package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/config"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.FromEnv()
	cfg.Env = trailhead.Testing

	ls := logger.NewLogger(logger.WithLevel(logger.LogLevelError))
	rules := filter.Rules{"id": {Filter: filter.Int}}

	srv := httptest.NewServer(newHandler(cfg, ls, rules, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)

	return srv
}

func TestHandleEcho(t *testing.T) {
	// Arrange
	srv := newTestServer(t)

	tcs := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		status      int
		id          string
	}{
		{"Query", http.MethodGet, "/echo?id=7", "", "", http.StatusOK, "7"},
		{"Form-Wins", http.MethodPost, "/echo/stations?id=7", "application/x-www-form-urlencoded", "id=8", http.StatusOK, "8"},
		{"JSON", http.MethodPut, "/echo", "application/json", `{"id": 9}`, http.StatusOK, "9"},
		{"Invalid", http.MethodGet, "/echo?id=seven", "", "", http.StatusUnprocessableEntity, "false"},
		{"Unsupported-Media-Type", http.MethodPost, "/echo", "application/x-unknown", "abc", http.StatusUnsupportedMediaType, ""},
		{"Not-Found", http.MethodGet, "/nope", "", "", http.StatusNotFound, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
			require.Nil(t, err)
			if tc.contentType != "" {
				r.Header.Set("Content-Type", tc.contentType)
			}

			// Act
			resp, err := srv.Client().Do(r)
			require.Nil(t, err)
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			require.Nil(t, err)

			// Assert
			require.Equal(t, tc.status, resp.StatusCode)
			require.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
			if tc.id != "" {
				require.Equal(t, tc.id, gjson.GetBytes(b, "data.fields.id").Raw)
			}
		})
	}
}

func TestHandleEchoForwarded(t *testing.T) {
	// Arrange
	srv := newTestServer(t)

	r, err := http.NewRequest(http.MethodGet, srv.URL+"/echo", nil)
	require.Nil(t, err)
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("X-Forwarded-Host", "stations.example.com")

	// Act
	resp, err := srv.Client().Do(r)
	require.Nil(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.Nil(t, err)

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "https", gjson.GetBytes(b, "data.scheme").String())
	require.Equal(t, "stations.example.com", gjson.GetBytes(b, "data.host").String())
}

func TestMetricsRoute(t *testing.T) {
	// Arrange
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/echo?id=seven")
	require.Nil(t, err)
	resp.Body.Close()

	// Act
	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.Nil(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.Nil(t, err)

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(b), `trailhead_requests_total{code="422",method="GET"} 1`)
	require.Contains(t, string(b), `trailhead_invalid_fields_total{field="id"} 1`)
}

func TestServeRateLimit(t *testing.T) {
	// Arrange
	cfg := config.FromEnv()
	cfg.Env = trailhead.Testing
	cfg.RateLimit = 1
	cfg.RateBurst = 1

	ls := logger.NewLogger(logger.WithLevel(logger.LogLevelError))
	srv := httptest.NewServer(newHandler(cfg, ls, filter.Rules{}, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)

	// Act
	first, err := srv.Client().Get(srv.URL + "/echo")
	require.Nil(t, err)
	first.Body.Close()

	second, err := srv.Client().Get(srv.URL + "/echo")
	require.Nil(t, err)
	second.Body.Close()

	// Assert
	require.Equal(t, http.StatusOK, first.StatusCode)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}
