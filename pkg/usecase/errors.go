package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrIncidentNotFound = errors.New("incident not found")
	ErrAPIKeyNotFound   = errors.New("API key not found")

	// Lifecycle errors
	ErrActionNotAllowed = errors.New("action not allowed in current status")
	ErrUpdateInFlight   = errors.New("another update is still in flight")
	ErrViewClosed       = errors.New("incident view is closed")
)

// Context keys for error values
const (
	IncidentIDKey = "incident_id"
	ActionKey     = "action"
	APIKeyIDKey   = "api_key_id"
)
