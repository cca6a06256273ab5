package req

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead/filter"
)

func TestMergeSources(t *testing.T) {
	tcs := []struct {
		name     string
		sources  []map[string]any
		expected map[string]any
	}{
		{"none", nil, map[string]any{}},
		{"nil-source", []map[string]any{nil, {"a": "1"}}, map[string]any{"a": "1"}},
		{
			"first-wins",
			[]map[string]any{{"a": "cookie"}, {"a": "body", "b": "body"}, {"a": "query", "b": "query", "c": "query"}},
			map[string]any{"a": "cookie", "b": "body", "c": "query"},
		},
		{"nil-value-wins", []map[string]any{{"a": nil}, {"a": "later"}}, map[string]any{"a": nil}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual := mergeSources(tc.sources...)

			// Assert
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestRequestMerged(t *testing.T) {
	// Arrange
	r := &Request{
		cookies:     Params{"a": "cookie"},
		body:        Params{"a": "body", "b": "body"},
		queryParams: Params{"b": "query", "c": "query"},
		headers:     map[string]string{"c": "header", "d": "header"},
		fields: map[string]field{
			"d": {result: filter.Valid("prior")},
			"e": {result: filter.Valid(5), raw: "5"},
			"f": {result: filter.Invalid, raw: "bad"},
			"g": {result: filter.Absent},
		},
	}

	// Act
	actual := r.merged()

	// Assert
	require.Equal(t, map[string]any{
		"a": "cookie",
		"b": "body",
		"c": "query",
		"d": "header",
		"e": 5,
		"f": "bad",
	}, actual)
}
