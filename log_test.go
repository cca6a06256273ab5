package trailhead_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
)

func TestMask(t *testing.T) {
	for _, tc := range []struct {
		name string
		vals url.Values
		key  string
		want url.Values
	}{
		{"zero", url.Values{}, "", url.Values{}},
		{
			"mismatch",
			url.Values{"password": []string{"hunter2"}},
			"passwrod",
			url.Values{"password": []string{"hunter2"}},
		},
		{
			"match",
			url.Values{"password": []string{"hunter2"}},
			"password",
			url.Values{"password": []string{trailhead.LogMaskVal}},
		},
		{
			"squash-multiple",
			url.Values{"password": []string{"hunter2", "hunter3"}},
			"password",
			url.Values{"password": []string{trailhead.LogMaskVal}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			trailhead.Mask(tc.vals, tc.key)
			require.Equal(t, tc.want, tc.vals)
		})
	}
}

func TestMaskAll(t *testing.T) {
	// Arrange
	vals := url.Values{
		"limit":        []string{"10"},
		"New_Password": []string{"hunter2"},
		"api_token":    []string{"abc", "def"},
	}

	// Act
	trailhead.MaskAll(vals)

	// Assert
	require.Equal(t, url.Values{
		"limit":        []string{"10"},
		"New_Password": []string{trailhead.LogMaskVal},
		"api_token":    []string{trailhead.LogMaskVal},
	}, vals)
}
