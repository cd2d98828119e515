package interfaces

import (
	"context"

	"github.com/oncall-lab/argus/pkg/domain/types"
)

// CredentialVerifier checks whether a raw provider secret is usable.
// A nil error means the secret authenticated successfully.
type CredentialVerifier interface {
	Verify(ctx context.Context, provider types.Provider, secret string) error
}

// VerifierFunc adapts a function to the CredentialVerifier interface
type VerifierFunc func(ctx context.Context, provider types.Provider, secret string) error

func (f VerifierFunc) Verify(ctx context.Context, provider types.Provider, secret string) error {
	return f(ctx, provider, secret)
}
