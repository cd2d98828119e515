package llm

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

const probeTimeout = 15 * time.Second

// Verifier checks provider API keys by performing one minimal generation
// round trip against the provider. Gemini keys authenticate via GCP project
// credentials rather than a bare secret, so they (and "other" keys) only get
// a format check.
type Verifier struct {
	timeout time.Duration
}

var _ interfaces.CredentialVerifier = &Verifier{}

func NewVerifier() *Verifier {
	return &Verifier{timeout: probeTimeout}
}

func (v *Verifier) Verify(ctx context.Context, provider types.Provider, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return goerr.New("secret is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	switch provider {
	case types.ProviderOpenAI:
		client, err := openai.New(ctx, secret)
		if err != nil {
			return goerr.Wrap(err, "failed to build OpenAI client")
		}
		return probe(ctx, client)

	case types.ProviderClaude:
		client, err := claude.New(ctx, secret)
		if err != nil {
			return goerr.Wrap(err, "failed to build Claude client")
		}
		return probe(ctx, client)

	case types.ProviderGemini, types.ProviderOther:
		return nil

	default:
		return goerr.New("unknown provider", goerr.V("provider", provider))
	}
}

func probe(ctx context.Context, client gollem.LLMClient) error {
	session, err := client.NewSession(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to open session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text("ping"))
	if err != nil {
		return goerr.Wrap(err, "generation probe failed")
	}
	if len(resp.Texts) == 0 {
		return goerr.New("empty probe response")
	}

	return nil
}
