package logger_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/logger"
)

func TestLogContextMarshalText(t *testing.T) {
	// Arrange
	lc := logger.LogContext{}

	// Act
	b, err := lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, []byte("{}"), b)

	// Arrange
	lc = logger.LogContext{Data: map[string]any{"test": "data"}, Error: errors.New("test")}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	require.Equal(t, `{"data":{"test":"data"},"error":"test"}`, string(b))

	// Arrange
	expected := map[string]any{
		"request": map[string]any{
			"method": http.MethodPut,
			"url":    "https://example.com/users/1?limit=10",
			"header": map[string]any{
				"Cookie":       []any{"xxxxxx"},
				"Content-Type": []any{"application/json"},
			},
		},
	}

	r := httptest.NewRequest(http.MethodPut, "https://example.com/users/1?limit=10", nil)
	r.Header.Set("Cookie", "session=secret")
	r.Header.Set("Content-Type", "application/json")
	lc = logger.LogContext{Request: r}

	// Act
	b, err = lc.MarshalText()

	// Assert
	require.Nil(t, err)
	m := make(map[string]any)
	require.Nil(t, json.Unmarshal(b, &m))
	require.Equal(t, expected, m)
	require.Equal(t, "session=secret", r.Header.Get("Cookie"))
}

func TestLogContextString(t *testing.T) {
	// Arrange
	lc := logger.LogContext{Data: map[string]any{"bad": make(chan int)}}

	// Act
	actual := lc.String()

	// Assert
	require.Contains(t, actual, `"error"`)
}
