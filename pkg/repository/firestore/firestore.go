package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
)

// Client is a Firestore-backed implementation of interfaces.Backend
type Client struct {
	client    *firestore.Client
	incidents *incidentStore
	apiKeys   *apiKeyStore
}

var _ interfaces.Backend = &Client{}

type Option func(*Client)

// WithCollectionPrefix namespaces all collections, mainly for tests sharing
// a project.
func WithCollectionPrefix(prefix string) Option {
	return func(c *Client) {
		c.incidents.collectionPrefix = prefix
		c.apiKeys.collectionPrefix = prefix
	}
}

// WithVerifier sets the credential verifier used by Validate
func WithVerifier(v interfaces.CredentialVerifier) Option {
	return func(c *Client) {
		c.apiKeys.verifier = v
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	c := &Client{
		client:    client,
		incidents: newIncidentStore(client),
		apiKeys:   newAPIKeyStore(client),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Incident() interfaces.IncidentBackend {
	return c.incidents
}

func (c *Client) APIKey() interfaces.APIKeyBackend {
	return c.apiKeys
}

func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
