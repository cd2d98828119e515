package config

import (
	"time"

	"github.com/oncall-lab/argus/pkg/domain/types"
)

// SLAThreshold holds the response-time targets for one severity
type SLAThreshold struct {
	Severity    types.Severity
	Acknowledge time.Duration
	Resolve     time.Duration
}

// SLAConfig holds the SLA policy for all severities
type SLAConfig struct {
	Thresholds []SLAThreshold
}

// ThresholdsFor returns the thresholds for the given severity. The second
// return value is false when the policy has no entry for it.
func (c *SLAConfig) ThresholdsFor(sv types.Severity) (SLAThreshold, bool) {
	for _, th := range c.Thresholds {
		if th.Severity == sv {
			return th, true
		}
	}
	return SLAThreshold{}, false
}

// DefaultSLAConfig returns the built-in SLA policy used when no policy file
// is provided.
func DefaultSLAConfig() *SLAConfig {
	return &SLAConfig{
		Thresholds: []SLAThreshold{
			{Severity: types.SeverityLow, Acknowledge: time.Hour, Resolve: 24 * time.Hour},
			{Severity: types.SeverityMedium, Acknowledge: 30 * time.Minute, Resolve: 8 * time.Hour},
			{Severity: types.SeverityHigh, Acknowledge: 15 * time.Minute, Resolve: 4 * time.Hour},
			{Severity: types.SeverityCritical, Acknowledge: 5 * time.Minute, Resolve: time.Hour},
		},
	}
}
