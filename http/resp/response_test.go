package resp

import (
	"bytes"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/logger"
)

// testLogger writes only messages, so tests can compare them.
type testLogger struct{ bytes.Buffer }

func newLogger() *testLogger { return new(testLogger) }

func (l *testLogger) Debug(msg string, _ *logger.LogContext) { l.WriteString(msg) }
func (l *testLogger) Error(msg string, _ *logger.LogContext) { l.WriteString(msg) }
func (l *testLogger) Fatal(msg string, _ *logger.LogContext) { l.WriteString(msg) }
func (l *testLogger) Info(msg string, _ *logger.LogContext)  { l.WriteString(msg) }
func (l *testLogger) Warn(msg string, _ *logger.LogContext)  { l.WriteString(msg) }
func (l *testLogger) LogLevel() logger.LogLevel              { return logger.LogLevelDebug }

func TestCode(t *testing.T) {
	tcs := []struct {
		name string
		code int
	}{
		{"Min-Int32", math.MinInt32},
		{"200", http.StatusOK},
		{"Max-Int32", math.MaxInt32},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			d := Responder{}
			r := &Response{}

			// Act
			err := Code(tc.code)(d, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.code, r.code)
		})
	}
}

func TestData(t *testing.T) {
	tcs := []struct {
		name string
		data map[string]any
	}{
		{"Zero-Value", make(map[string]any)},
		{"Data", map[string]any{"station": "vostok"}},
		{"Nil", nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			d := Responder{}
			r := &Response{}

			// Act
			err := Data(tc.data)(d, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.data, r.data)
		})
	}
}

func TestErr(t *testing.T) {
	tcs := []struct {
		name string
		err  error
	}{
		{name: "Zero-Value", err: nil},
		{name: "Error", err: ErrNotFound},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			l := newLogger()
			d := Responder{logger: l}
			r := &Response{r: httptest.NewRequest(http.MethodGet, "http://example.com", nil)}

			// Act
			err := Err(tc.err)(d, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, http.StatusInternalServerError, r.code)
			if tc.err != nil {
				require.Equal(t, tc.err.Error(), l.String())
			}
		})
	}
}

func TestValidated(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		// Act
		err := Validated(nil)(Responder{}, &Response{})

		// Assert
		require.ErrorIs(t, err, trailhead.ErrMissingData)
	})

	tcs := []struct {
		name     string
		query    req.Params
		code     int
		expected []req.ValidationError
	}{
		{"All-Valid", req.Params{"id": "7"}, 0, nil},
		{"Absent", req.Params{}, 0, nil},
		{
			"Invalid",
			req.Params{"id": "seven"},
			http.StatusUnprocessableEntity,
			[]req.ValidationError{{Field: "id", Got: "seven", Rule: "int"}},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			nr, err := req.New(
				req.Server{req.KeyRequestMethod: http.MethodGet},
				req.WithQuery(tc.query),
				req.WithRules(filter.Rules{"id": {Filter: filter.Int}}),
			)
			require.Nil(t, err)

			r := &Response{}

			// Act
			err = Validated(nr)(Responder{}, r)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.code, r.code)
			require.Equal(t, tc.expected, r.errs)
		})
	}
}
