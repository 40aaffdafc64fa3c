package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingError_Retryable(t *testing.T) {
	cases := []struct {
		errType   ProcessingErrorType
		retryable bool
	}{
		{errType: ErrorDownloadFailed, retryable: true},
		{errType: ErrorFFmpegFailed, retryable: true},
		{errType: ErrorUploadFailed, retryable: true},
		{errType: ErrorDatabase, retryable: true},
		{errType: ErrorInvalidAudio, retryable: false},
	}

	for _, tc := range cases {
		t.Run(string(tc.errType), func(t *testing.T) {
			e := NewProcessingError(tc.errType, "b", "step", "msg", nil)
			assert.Equal(t, tc.retryable, e.Retryable())
		})
	}
}

func TestProcessingError_Unwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	e := NewProcessingError(ErrorFFmpegFailed, "b", "transcode", "mp3 rendition", cause)

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "FFMPEG_FAILED")
	assert.Contains(t, e.Error(), "transcode")
	assert.Contains(t, e.Error(), "exit status 1")
}

func TestAsProcessingError(t *testing.T) {
	inner := NewProcessingError(ErrorInvalidAudio, "b", "validate", "no audio streams", nil)
	wrapped := fmt.Errorf("handler: %w", inner)

	got, ok := AsProcessingError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorInvalidAudio, got.Type)

	_, ok = AsProcessingError(errors.New("plain"))
	assert.False(t, ok)
}
