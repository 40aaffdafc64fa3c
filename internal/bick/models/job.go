package models

import (
	"fmt"
	"strings"
)

// ProcessingJob is the queue payload. All three fields are required; the
// job's queue identity is derived from BickID alone, so re-submitting work
// for the same bick lands on the same queue slot.
type ProcessingJob struct {
	BickID           string `json:"bickId"`
	StorageKey       string `json:"storageKey"`
	OriginalFilename string `json:"originalFilename"`
}

// Validate rejects payloads that must never reach the queue backend.
func (j ProcessingJob) Validate() error {
	if strings.TrimSpace(j.BickID) == "" {
		return fmt.Errorf("%w: bickId is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(j.StorageKey) == "" {
		return fmt.Errorf("%w: storageKey is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(j.OriginalFilename) == "" {
		return fmt.Errorf("%w: originalFilename is required", ErrInvalidArgument)
	}
	return nil
}
