package memory

import (
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
)

// Client is an in-memory backend used for tests and local development
type Client struct {
	incidents *incidentStore
	apiKeys   *apiKeyStore
}

var _ interfaces.Backend = &Client{}

type Option func(*Client)

// WithVerifier sets the credential verifier used by Validate. Without it,
// every validation attempt fails.
func WithVerifier(v interfaces.CredentialVerifier) Option {
	return func(c *Client) {
		c.apiKeys.verifier = v
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		incidents: newIncidentStore(),
		apiKeys:   newAPIKeyStore(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) Incident() interfaces.IncidentBackend {
	return c.incidents
}

func (c *Client) APIKey() interfaces.APIKeyBackend {
	return c.apiKeys
}

func (c *Client) Close() error {
	return nil
}
