package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/interfaces"
	"github.com/oncall-lab/argus/pkg/repository/firestore"
	"github.com/oncall-lab/argus/pkg/repository/memory"
	"github.com/oncall-lab/argus/pkg/repository/remote"
	"github.com/urfave/cli/v3"
)

type Backend struct {
	backend          string
	projectID        string
	collectionPrefix string
	remoteURL        string
	remoteToken      string
}

func (x *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "Backend type (memory, firestore, remote)",
			Category:    "Backend",
			Value:       "memory",
			Sources:     cli.EnvVars("ARGUS_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required for firestore backend)",
			Category:    "Backend",
			Sources:     cli.EnvVars("ARGUS_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix for Firestore collection names",
			Category:    "Backend",
			Sources:     cli.EnvVars("ARGUS_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &x.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "remote-url",
			Usage:       "Base URL of a remote console API (required for remote backend)",
			Category:    "Backend",
			Sources:     cli.EnvVars("ARGUS_REMOTE_URL"),
			Destination: &x.remoteURL,
		},
		&cli.StringFlag{
			Name:        "remote-token",
			Usage:       "Static bearer token for the remote console API",
			Category:    "Backend",
			Sources:     cli.EnvVars("ARGUS_REMOTE_TOKEN"),
			Destination: &x.remoteToken,
		},
	}
}

func (x Backend) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", x.backend),
		slog.String("firestore-project-id", x.projectID),
		slog.String("firestore-collection-prefix", x.collectionPrefix),
		slog.String("remote-url", x.remoteURL),
		slog.Int("remote-token.len", len(x.remoteToken)),
	)
}

// Configure builds the store backend. The verifier is handed to local
// backends so key validation can reach the provider; the remote backend
// delegates validation to the server it talks to.
func (x *Backend) Configure(ctx context.Context, verifier interfaces.CredentialVerifier) (interfaces.Backend, error) {
	switch x.backend {
	case "memory":
		return memory.New(memory.WithVerifier(verifier)), nil

	case "firestore":
		if x.projectID == "" {
			return nil, goerr.New("firestore-project-id is required for firestore backend")
		}
		opts := []firestore.Option{firestore.WithVerifier(verifier)}
		if x.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(x.collectionPrefix))
		}
		return firestore.New(ctx, x.projectID, opts...)

	case "remote":
		if x.remoteURL == "" {
			return nil, goerr.New("remote-url is required for remote backend")
		}
		var opts []remote.Option
		if x.remoteToken != "" {
			opts = append(opts, remote.WithToken(x.remoteToken))
		}
		return remote.New(x.remoteURL, opts...)

	default:
		return nil, goerr.New("unknown backend type", goerr.V("backend", x.backend))
	}
}
