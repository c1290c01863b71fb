package fetcherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrFatal, "yt-dlp exited with code 1. Stderr: nope", cause)

	require.ErrorIs(t, err, ErrFatal)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrRetryable)
	require.Equal(t, "yt-dlp exited with code 1. Stderr: nope", err.Error())
}

func TestMessage_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("job abc: %w", New(ErrResolution, "No downloadable videos found."))
	require.Equal(t, "No downloadable videos found.", Message(err))
	require.ErrorIs(t, err, ErrResolution)
	require.False(t, IsClient(err))

	require.True(t, IsClient(New(ErrClientInput, "Missing mediaUrl")))
	require.Equal(t, "plain", Message(errors.New("plain")))
	require.Equal(t, "", Message(nil))
}

func TestError_FallsBackToKind(t *testing.T) {
	require.Equal(t, "not found", (&Error{Kind: ErrNotFound}).Error())
}
