package trailhead_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/logger"
)

func TestEnvironmentValid(t *testing.T) {
	require.Nil(t, trailhead.Testing.Valid())
	require.ErrorIs(t, trailhead.Environment("LOCAL").Valid(), trailhead.ErrNotValid)
}

func TestEnvVarOrEnv(t *testing.T) {
	// Arrange
	t.Setenv("TRAILHEAD_TEST_ENV", "staging")

	// Act
	actual := trailhead.EnvVarOrEnv("TRAILHEAD_TEST_ENV", trailhead.Development)

	// Assert
	require.Equal(t, trailhead.Staging, actual)

	// Arrange
	t.Setenv("TRAILHEAD_TEST_ENV", "nope")

	// Act
	actual = trailhead.EnvVarOrEnv("TRAILHEAD_TEST_ENV", trailhead.Development)

	// Assert
	require.Equal(t, trailhead.Development, actual)
}

func TestEnvVarOr(t *testing.T) {
	t.Setenv("TRAILHEAD_TEST_BOOL", "TRUE")
	t.Setenv("TRAILHEAD_TEST_DURATION", "3s")
	t.Setenv("TRAILHEAD_TEST_INT", "12")
	t.Setenv("TRAILHEAD_TEST_INT64", "not-a-number")
	t.Setenv("TRAILHEAD_TEST_LEVEL", "warn")
	t.Setenv("TRAILHEAD_TEST_STRING", "")

	require.True(t, trailhead.EnvVarOrBool("TRAILHEAD_TEST_BOOL", false))
	require.Equal(t, 3*time.Second, trailhead.EnvVarOrDuration("TRAILHEAD_TEST_DURATION", time.Second))
	require.Equal(t, 12, trailhead.EnvVarOrInt("TRAILHEAD_TEST_INT", 1))
	require.Equal(t, int64(7), trailhead.EnvVarOrInt64("TRAILHEAD_TEST_INT64", 7))
	require.Equal(t, logger.LogLevelWarn, trailhead.EnvVarOrLogLevel("TRAILHEAD_TEST_LEVEL", logger.LogLevelInfo))
	require.Equal(t, "def", trailhead.EnvVarOrString("TRAILHEAD_TEST_STRING", "def"))
}
