package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("outer: %w", Wrap("location_not_found", "Unable to fetch location coordinates.", cause))

	require.True(t, IsCode(err, "location_not_found"))
	require.False(t, IsCode(err, "air_quality_unavailable"))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "Unable to fetch location coordinates.", UserMessage(err))
}

func TestUserMessagePlainError(t *testing.T) {
	require.Equal(t, "boom", UserMessage(errors.New("boom")))
	require.Equal(t, "", UserMessage(nil))
}
