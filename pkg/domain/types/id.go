package types

import "github.com/google/uuid"

// IncidentID identifies an incident
type IncidentID string

// NewIncidentID generates a new incident ID
func NewIncidentID() IncidentID {
	return IncidentID(uuid.New().String())
}

func (id IncidentID) String() string {
	return string(id)
}

// APIKeyID identifies a managed API key record
type APIKeyID string

// NewAPIKeyID generates a new API key ID
func NewAPIKeyID() APIKeyID {
	return APIKeyID(uuid.New().String())
}

func (id APIKeyID) String() string {
	return string(id)
}
