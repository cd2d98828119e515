package types

// NotifyLevel represents the severity of a notification event
type NotifyLevel string

const (
	NotifyLevelSuccess NotifyLevel = "success"
	NotifyLevelWarning NotifyLevel = "warning"
	NotifyLevelError   NotifyLevel = "error"
	NotifyLevelInfo    NotifyLevel = "info"
)

// IsValid checks if the notify level is valid
func (l NotifyLevel) IsValid() bool {
	switch l {
	case NotifyLevelSuccess, NotifyLevelWarning, NotifyLevelError, NotifyLevelInfo:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notify level
func (l NotifyLevel) String() string {
	return string(l)
}
