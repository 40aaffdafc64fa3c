package models

import (
	"errors"
	"fmt"
)

type ProcessingErrorType string

const (
	ErrorDownloadFailed ProcessingErrorType = "DOWNLOAD_FAILED"
	ErrorInvalidAudio   ProcessingErrorType = "INVALID_AUDIO"
	ErrorFFmpegFailed   ProcessingErrorType = "FFMPEG_FAILED"
	ErrorUploadFailed   ProcessingErrorType = "UPLOAD_FAILED"
	ErrorDatabase       ProcessingErrorType = "DATABASE_ERROR"
)

// ProcessingError is the unit of failure reporting inside the pipeline.
// It is raised and logged, never persisted as a row.
type ProcessingError struct {
	Type    ProcessingErrorType
	Message string
	BickID  string
	Step    string
	Err     error
}

func NewProcessingError(t ProcessingErrorType, bickID, step, message string, cause error) *ProcessingError {
	return &ProcessingError{
		Type:    t,
		Message: message,
		BickID:  bickID,
		Step:    step,
		Err:     cause,
	}
}

func (e *ProcessingError) Error() string {
	msg := fmt.Sprintf("%s [%s]: %s", e.Type, e.Step, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the queue should re-attempt the job.
// Invalid audio content will not become valid on a second pass.
func (e *ProcessingError) Retryable() bool {
	return e.Type != ErrorInvalidAudio
}

// AsProcessingError unwraps err into a *ProcessingError when one is in the chain.
func AsProcessingError(err error) (*ProcessingError, bool) {
	var perr *ProcessingError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
