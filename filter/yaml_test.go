package filter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
)

func TestLoadRules(t *testing.T) {
	// Arrange
	doc := `
id: int
name: {filter: default, flags: [require_sequence]}
age:
  filter: int
  options: {min: 0, max: 150}
`

	// Act
	actual, err := filter.LoadRules(strings.NewReader(doc))

	// Assert
	require.Nil(t, err)
	require.Equal(t, filter.Rules{
		"id":   {Filter: filter.Int},
		"name": {Filter: filter.Default, Flags: filter.RequireSequence},
		"age":  {Filter: filter.Int, Options: filter.Options{"min": 0, "max": 150}},
	}, actual)

	// Act
	compiled, err := filter.NewRegistry().Compile(actual)

	// Assert
	require.Nil(t, err)
	require.Equal(t, filter.Options{"min": float64(0), "max": float64(150)}, compiled["age"].Options)
}

func TestLoadRulesErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		err  error
	}{
		{"Empty", "", nil},
		{"Unknown-Flag", "name: {filter: default, flags: [sideways]}", trailhead.ErrBadConfig},
		{"Sequence-Rule", "name: [int]", trailhead.ErrBadFormat},
		{"Not-A-Mapping", "- id", trailhead.ErrBadFormat},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := filter.LoadRules(strings.NewReader(tc.doc))
			if tc.err == nil {
				require.Nil(t, err)
				require.Empty(t, actual)
				return
			}

			require.ErrorIs(t, err, tc.err)
		})
	}
}
