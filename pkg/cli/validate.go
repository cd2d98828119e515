package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/cli/config"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/service/sla"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var slaCfg config.SLA

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the SLA policy file",
		Flags:   slaCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			policy, err := slaCfg.Configure()
			if err != nil {
				color.New(color.FgRed).Printf("✗ SLA policy is invalid: %v\n", err)
				return goerr.Wrap(err, "SLA policy validation failed")
			}

			green := color.New(color.FgGreen)
			yellow := color.New(color.FgYellow)

			for _, severity := range types.AllSeverities() {
				threshold, ok := policy.ThresholdsFor(severity)
				if !ok {
					yellow.Printf("! %-8s no thresholds (SLA tracking disabled)\n", severity)
					continue
				}
				green.Printf("✓ %-8s acknowledge %s, resolve %s\n",
					severity,
					sla.Format(threshold.Acknowledge),
					sla.Format(threshold.Resolve),
				)
			}

			green.Println("SLA policy is valid")
			return nil
		},
	}
}
