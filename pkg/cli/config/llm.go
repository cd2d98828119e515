package config

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

type LLM struct {
	probe bool
}

func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "llm-probe",
			Usage:       "Probe provider APIs when validating keys (format check only when disabled)",
			Category:    "LLM",
			Value:       true,
			Sources:     cli.EnvVars("ARGUS_LLM_PROBE"),
			Destination: &x.probe,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("probe", x.probe),
	)
}

// Configure returns the credential verifier. With probing disabled the
// verifier only rejects empty secrets, which is useful for offline
// development.
func (x *LLM) Configure() interfaces.CredentialVerifier {
	if !x.probe {
		return interfaces.VerifierFunc(func(ctx context.Context, provider types.Provider, secret string) error {
			if strings.TrimSpace(secret) == "" {
				return goerr.New("secret is empty")
			}
			if !provider.IsValid() {
				return goerr.New("unknown provider", goerr.V("provider", provider))
			}
			return nil
		})
	}
	return llm.NewVerifier()
}
