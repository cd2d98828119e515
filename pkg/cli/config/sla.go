package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	modelconfig "github.com/oncall-lab/argus/pkg/domain/model/config"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

type SLA struct {
	policyPath string
}

func (x *SLA) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sla-policy",
			Usage:       "Path to SLA policy TOML file (built-in defaults when omitted)",
			Category:    "SLA",
			Sources:     cli.EnvVars("ARGUS_SLA_POLICY"),
			Destination: &x.policyPath,
		},
	}
}

func (x SLA) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("policy", x.policyPath),
	)
}

// Configure loads SLA thresholds from the policy file, falling back to the
// built-in defaults when no path is given.
func (x *SLA) Configure() (*modelconfig.SLAConfig, error) {
	if x.policyPath == "" {
		return modelconfig.DefaultSLAConfig(), nil
	}
	return LoadSLAPolicy(x.policyPath)
}

type slaPolicyEntry struct {
	Severity    string `toml:"severity"`
	Acknowledge string `toml:"acknowledge"`
	Resolve     string `toml:"resolve"`
}

type slaPolicyFile struct {
	SLA []slaPolicyEntry `toml:"sla"`
}

// LoadSLAPolicy reads a TOML policy file of the form:
//
//	[[sla]]
//	severity = "critical"
//	acknowledge = "5m"
//	resolve = "1h"
func LoadSLAPolicy(path string) (*modelconfig.SLAConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read SLA policy file", goerr.V("path", path))
	}

	var file slaPolicyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse SLA policy file", goerr.V("path", path))
	}
	if len(file.SLA) == 0 {
		return nil, goerr.New("SLA policy file has no [[sla]] entries", goerr.V("path", path))
	}

	seen := map[types.Severity]bool{}
	cfg := &modelconfig.SLAConfig{}
	for _, entry := range file.SLA {
		severity := types.Severity(entry.Severity)
		if !severity.IsValid() {
			return nil, goerr.New("invalid severity in SLA policy",
				goerr.V("severity", entry.Severity))
		}
		if seen[severity] {
			return nil, goerr.New("duplicate severity in SLA policy",
				goerr.V("severity", severity))
		}
		seen[severity] = true

		acknowledge, err := time.ParseDuration(entry.Acknowledge)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid acknowledge duration",
				goerr.V("severity", severity))
		}
		resolve, err := time.ParseDuration(entry.Resolve)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid resolve duration",
				goerr.V("severity", severity))
		}
		if acknowledge <= 0 || resolve <= 0 {
			return nil, goerr.New("SLA durations must be positive",
				goerr.V("severity", severity))
		}
		if acknowledge > resolve {
			return nil, goerr.New("acknowledge threshold exceeds resolve threshold",
				goerr.V("severity", severity),
				goerr.V("acknowledge", acknowledge),
				goerr.V("resolve", resolve))
		}

		cfg.Thresholds = append(cfg.Thresholds, modelconfig.SLAThreshold{
			Severity:    severity,
			Acknowledge: acknowledge,
			Resolve:     resolve,
		})
	}

	return cfg, nil
}
