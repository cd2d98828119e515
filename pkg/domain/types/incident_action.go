package types

import "fmt"

// IncidentAction represents a user-triggered lifecycle action
type IncidentAction string

const (
	ActionAcknowledge IncidentAction = "acknowledge"
	ActionResolve     IncidentAction = "resolve"
	ActionReopen      IncidentAction = "reopen"
)

// ActionSpec is a pure data record describing a lifecycle action: the label
// shown to the user, the status it transitions to, and the level of the
// notification it emits.
type ActionSpec struct {
	Action IncidentAction
	Label  string
	Target IncidentStatus
	Level  NotifyLevel
}

// actionTable maps each status to the ordered set of actions offered from it.
// Closed is terminal and offers nothing.
var actionTable = map[IncidentStatus][]ActionSpec{
	IncidentStatusOpen: {
		{Action: ActionAcknowledge, Label: "Acknowledge", Target: IncidentStatusAcknowledged, Level: NotifyLevelSuccess},
		{Action: ActionResolve, Label: "Resolve", Target: IncidentStatusResolved, Level: NotifyLevelSuccess},
	},
	IncidentStatusAcknowledged: {
		{Action: ActionResolve, Label: "Resolve", Target: IncidentStatusResolved, Level: NotifyLevelSuccess},
	},
	IncidentStatusResolved: {
		{Action: ActionReopen, Label: "Reopen", Target: IncidentStatusOpen, Level: NotifyLevelWarning},
	},
	IncidentStatusClosed: {},
}

// ActionsFor returns the ordered set of actions offered for the given status.
// The offered set is a pure function of status.
func ActionsFor(s IncidentStatus) []ActionSpec {
	specs, ok := actionTable[s]
	if !ok {
		return nil
	}
	out := make([]ActionSpec, len(specs))
	copy(out, specs)
	return out
}

// SpecFor returns the action spec for the given action from the given status.
// It reports false when the action is not offered for the status.
func SpecFor(s IncidentStatus, a IncidentAction) (ActionSpec, bool) {
	for _, spec := range actionTable[s] {
		if spec.Action == a {
			return spec, true
		}
	}
	return ActionSpec{}, false
}

// Allows reports whether the action is offered for the status
func (s IncidentStatus) Allows(a IncidentAction) bool {
	_, ok := SpecFor(s, a)
	return ok
}

// String returns the string representation of the incident action
func (a IncidentAction) String() string {
	return string(a)
}

// ParseIncidentAction parses a string into an IncidentAction
func ParseIncidentAction(s string) (IncidentAction, error) {
	switch a := IncidentAction(s); a {
	case ActionAcknowledge, ActionResolve, ActionReopen:
		return a, nil
	default:
		return "", fmt.Errorf("invalid incident action: %s", s)
	}
}
