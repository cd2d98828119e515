package model

import (
	"time"

	"github.com/oncall-lab/argus/pkg/domain/types"
)

// APIKeyRecord is a managed reference to a user-supplied provider secret.
// The raw secret is write-only: it is submitted once at creation and never
// carried by this record.
type APIKeyRecord struct {
	ID       types.APIKeyID `json:"id"`
	Provider types.Provider `json:"provider"`
	KeyName  string         `json:"key_name"`

	IsValid         bool       `json:"is_valid"`
	ValidationError string     `json:"validation_error,omitempty"`
	LastValidated   *time.Time `json:"last_validated,omitempty"`

	TotalRequests int64      `json:"total_requests"`
	TotalTokens   int64      `json:"total_tokens"`
	LastUsed      *time.Time `json:"last_used,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Clone returns a deep copy of the record
func (x *APIKeyRecord) Clone() *APIKeyRecord {
	if x == nil {
		return nil
	}
	c := *x
	if x.LastValidated != nil {
		t := *x.LastValidated
		c.LastValidated = &t
	}
	if x.LastUsed != nil {
		t := *x.LastUsed
		c.LastUsed = &t
	}
	return &c
}

// MarkValidated records the outcome of a validation attempt. A successful
// validation clears any previous validation error; ValidationError is present
// only while IsValid is false.
func (x *APIKeyRecord) MarkValidated(valid bool, message string, now time.Time) {
	x.IsValid = valid
	t := now
	x.LastValidated = &t
	if valid {
		x.ValidationError = ""
	} else {
		x.ValidationError = message
	}
}

// RecordUsage accumulates usage counters for the key
func (x *APIKeyRecord) RecordUsage(requests, tokens int64, now time.Time) {
	x.TotalRequests += requests
	x.TotalTokens += tokens
	t := now
	x.LastUsed = &t
}
