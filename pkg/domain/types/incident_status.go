package types

import "fmt"

// IncidentStatus represents the lifecycle status of an incident
type IncidentStatus string

const (
	IncidentStatusOpen         IncidentStatus = "open"
	IncidentStatusAcknowledged IncidentStatus = "acknowledged"
	IncidentStatusResolved     IncidentStatus = "resolved"
	IncidentStatusClosed       IncidentStatus = "closed"
)

// AllIncidentStatuses returns all valid incident statuses
func AllIncidentStatuses() []IncidentStatus {
	return []IncidentStatus{
		IncidentStatusOpen,
		IncidentStatusAcknowledged,
		IncidentStatusResolved,
		IncidentStatusClosed,
	}
}

// IsValid checks if the incident status is valid
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusOpen,
		IncidentStatusAcknowledged,
		IncidentStatusResolved,
		IncidentStatusClosed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status admits no further console actions.
// Closed incidents are only reachable by external administrative processes.
func (s IncidentStatus) IsTerminal() bool {
	return s == IncidentStatusClosed
}

// IsActive reports whether the incident still counts toward live SLA tracking
func (s IncidentStatus) IsActive() bool {
	return s == IncidentStatusOpen || s == IncidentStatusAcknowledged
}

// String returns the string representation of the incident status
func (s IncidentStatus) String() string {
	return string(s)
}

// ParseIncidentStatus parses a string into an IncidentStatus
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	status := IncidentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid incident status: %s", s)
	}
	return status, nil
}
