package sla

import (
	"fmt"
	"time"

	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/model/config"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

// Compliance is the SLA state of one lifecycle milestone
type Compliance string

const (
	ComplianceMet      Compliance = "met"
	ComplianceAtRisk   Compliance = "at_risk"
	ComplianceBreached Compliance = "breached"
)

// Milestone holds the derived SLA figures for one milestone (acknowledge or
// resolve). Remaining may be negative to signal breach; Progress is clamped
// to [0, 1] for progress-bar rendering.
type Milestone struct {
	Threshold time.Duration
	Elapsed   time.Duration
	Remaining time.Duration
	Progress  float64
	Status    Compliance
}

// Report is the full derived view of an incident's timings
type Report struct {
	TimeToAcknowledge *time.Duration
	TimeToResolve     *time.Duration
	TotalDuration     time.Duration
	Acknowledge       Milestone
	Resolution        Milestone
}

// Calculator derives duration and compliance figures from incident
// timestamps. It is a pure function of the incident and the given time; the
// recurring evaluation cadence belongs to Monitor.
type Calculator struct {
	cfg *config.SLAConfig
}

func NewCalculator(cfg *config.SLAConfig) *Calculator {
	if cfg == nil {
		cfg = config.DefaultSLAConfig()
	}
	return &Calculator{cfg: cfg}
}

// Assess computes the report for the incident as of now
func (c *Calculator) Assess(incident *model.Incident, now time.Time) *Report {
	report := &Report{}

	if incident.AcknowledgedAt != nil {
		d := incident.AcknowledgedAt.Sub(incident.CreatedAt)
		report.TimeToAcknowledge = &d
	}
	if incident.ResolvedAt != nil {
		d := incident.ResolvedAt.Sub(incident.CreatedAt)
		report.TimeToResolve = &d
	}

	if incident.Status == types.IncidentStatusResolved && report.TimeToResolve != nil {
		report.TotalDuration = *report.TimeToResolve
	} else {
		report.TotalDuration = clampNonNegative(now.Sub(incident.CreatedAt))
	}

	thresholds, ok := c.cfg.ThresholdsFor(incident.Severity)
	if !ok {
		// No policy for this severity: report durations only
		return report
	}

	report.Acknowledge = milestone(thresholds.Acknowledge, report.TimeToAcknowledge, incident.CreatedAt, now)

	done := report.TimeToResolve
	if incident.Status != types.IncidentStatusResolved && !incident.Status.IsTerminal() {
		// A reopened incident is active again: the milestone keeps counting
		// from creation even though resolved_at remains set.
		done = nil
	}
	report.Resolution = milestone(thresholds.Resolve, done, incident.CreatedAt, now)

	return report
}

// milestone derives the figures for one threshold. done is the achieved
// duration when the milestone has been reached, nil while still pending.
func milestone(threshold time.Duration, done *time.Duration, createdAt, now time.Time) Milestone {
	m := Milestone{Threshold: threshold}

	if done != nil {
		m.Elapsed = clampNonNegative(*done)
		m.Remaining = threshold - m.Elapsed
		m.Progress = progress(m.Elapsed, threshold)
		if *done <= threshold {
			m.Status = ComplianceMet
		} else {
			m.Status = ComplianceBreached
		}
		return m
	}

	m.Elapsed = clampNonNegative(now.Sub(createdAt))
	m.Remaining = threshold - m.Elapsed
	m.Progress = progress(m.Elapsed, threshold)
	if m.Elapsed > threshold {
		m.Status = ComplianceBreached
	} else {
		m.Status = ComplianceAtRisk
	}
	return m
}

func progress(elapsed, threshold time.Duration) float64 {
	if threshold <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(threshold)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func clampNonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// Format renders a duration as "2h 15m" or "5m 23s". Negative inputs are
// clamped to zero: elapsed figures never display as negative.
func Format(d time.Duration) string {
	d = clampNonNegative(d).Truncate(time.Second)

	if d >= time.Hour {
		h := d / time.Hour
		m := (d % time.Hour) / time.Minute
		return fmt.Sprintf("%dh %dm", h, m)
	}

	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%dm %ds", m, s)
}
