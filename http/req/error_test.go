package req_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/req"
)

func TestValidationErrorsError(t *testing.T) {
	// Arrange
	var v req.ValidationErrors

	// Act
	actual := v.Error()

	// Assert
	require.Zero(t, actual)

	// Arrange
	v = append(
		v,
		req.ValidationError{
			Field: "id",
			Rule:  "int",
		},
		req.ValidationError{
			Field: "name",
			Got:   "Dome Fuji",
			Rule:  "string; require_sequence",
		},
	)

	expected := strings.Join([]string{
		`field="id" rule="int" got="<nil>"`,
		`field="name" rule="string; require_sequence" got="Dome Fuji"`,
	}, "\n")

	// Act
	actual = v.Error()

	// Assert
	require.Equal(t, expected, actual)
	require.Equal(t, []string{"id", "name"}, v.Fields())
}

func TestValidationErrorsMarshalJSON(t *testing.T) {
	// Arrange
	var v req.ValidationErrors

	// Act
	actual, err := json.Marshal(v)

	// Assert
	require.Nil(t, err)
	require.Equal(t, "{}", string(actual))

	// Arrange
	v = append(v, req.ValidationError{
		Field: "limit",
		Rule:  "int",
		Got:   "ten",
	})

	expected := `{"validationErrors":[{"field":"limit","got":"ten","rule":"int"}]}`

	// Act
	actual, err = json.Marshal(v)

	// Assert
	require.Nil(t, err)
	require.Equal(t, expected, string(actual))
}

func TestValidationErrorsUnwrap(t *testing.T) {
	require.ErrorIs(t, req.ValidationErrors{}, trailhead.ErrNotValid)
}
