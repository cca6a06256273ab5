package req_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/req"
)

type station string

func (s station) String() string { return string(s) }
func (s station) Valid() error {
	if s == "Vostok" || s == "Dome Fuji" {
		return nil
	}
	return errors.New("unknown station")
}

func TestRequestBind(t *testing.T) {
	// Arrange
	r, err := req.New(
		req.Server{"REQUEST_METHOD": "PATCH", "HTTP_CONTENT_TYPE": "application/json"},
		req.WithRawBody([]byte(`{"id":"123","name":["Vostok","Dome Fuji"],"extra":"x"}`)),
		req.WithRules(filter.Rules{
			"id":   {Filter: filter.Int},
			"name": {Filter: filter.String, Flags: filter.RequireSequence},
		}),
	)
	require.NoError(t, err)
	require.NoError(t, r.Set("site", map[string]any{"elevation": 3488.5}))

	type target struct {
		ID   int       `schema:"id" validate:"gt=100"`
		Name []station `schema:"name" validate:"enum"`
		Site struct {
			Elevation float64 `schema:"elevation"`
		} `schema:"site"`
		Skip string `schema:"-"`
	}

	var actual target

	// Act
	err = r.Bind(&actual)

	// Assert
	require.NoError(t, err)
	require.Equal(t, 123, actual.ID)
	require.Equal(t, []station{"Vostok", "Dome Fuji"}, actual.Name)
	require.Equal(t, 3488.5, actual.Site.Elevation)
	require.Zero(t, actual.Skip)
}

func TestRequestBindErrors(t *testing.T) {
	// Arrange
	r, err := req.New(req.Server{"REQUEST_URI": "/?id=5&name=Palmer"}, req.WithRules(filter.Rules{
		"id":   {Filter: filter.Int},
		"name": {Filter: filter.String},
	}))
	require.NoError(t, err)

	// Act
	err = r.Bind(struct{}{})

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadAny)

	// Act
	err = r.Bind((*struct{})(nil))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadAny)

	// Act
	err = r.Bind(new(struct {
		ID struct{} `schema:"id"`
	}))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotImplemented)

	// Act
	err = r.Bind(new(struct {
		Name bool `schema:"name"`
	}))

	// Assert
	var conv req.ValidationErrors
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.ErrorAs(t, err, &conv)
	require.Equal(t, req.ValidationErrors{{Field: "name", Got: "bad value at index 0", Rule: "must be bool"}}, conv)

	// Arrange
	type test struct {
		ID   int     `schema:"id" validate:"gt=10"`
		Name station `schema:"name" validate:"enum"`
		Note string  `schema:"note" validate:"required"`
	}

	// Act
	err = r.Bind(new(test))

	// Assert
	var actual req.ValidationErrors
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, req.ValidationErrors{
		{Field: "id", Got: 5, Rule: "gt=10; int"},
		{Field: "name", Got: station("Palmer"), Rule: "enum; req_test.station"},
		{Field: "note", Got: "", Rule: "required; string"},
	}, actual)
}
