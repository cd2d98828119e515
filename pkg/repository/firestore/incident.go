package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type incidentStore struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIncidentStore(client *firestore.Client) *incidentStore {
	return &incidentStore{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *incidentStore) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_incidents"
	}
	return "incidents"
}

func (r *incidentStore) Create(ctx context.Context, incident *model.Incident) error {
	if incident.ID == "" {
		return goerr.New("incident ID is required")
	}

	stored := incident.Clone()
	if stored.CreatedAt.IsZero() {
		now := time.Now().UTC()
		stored.CreatedAt = now
		stored.UpdatedAt = now
	}

	docRef := r.client.Collection(r.collection()).Doc(string(stored.ID))
	if _, err := docRef.Create(ctx, stored); err != nil {
		return goerr.Wrap(err, "failed to create incident", goerr.V("id", stored.ID))
	}

	return nil
}

func (r *incidentStore) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	docSnap, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get incident", goerr.V("id", id))
	}

	var incident model.Incident
	if err := docSnap.DataTo(&incident); err != nil {
		return nil, goerr.Wrap(err, "failed to decode incident", goerr.V("id", id))
	}

	return &incident, nil
}

func (r *incidentStore) List(ctx context.Context) ([]*model.Incident, error) {
	iter := r.client.Collection(r.collection()).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var incidents []*model.Incident
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate incidents")
		}

		var incident model.Incident
		if err := docSnap.DataTo(&incident); err != nil {
			return nil, goerr.Wrap(err, "failed to decode incident", goerr.V("doc_id", docSnap.Ref.ID))
		}

		incidents = append(incidents, &incident)
	}

	return incidents, nil
}

func (r *incidentStore) Patch(ctx context.Context, id types.IncidentID, patch model.IncidentPatch) (*model.Incident, error) {
	docRef := r.client.Collection(r.collection()).Doc(string(id))

	var result *model.Incident
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "incident not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get incident", goerr.V("id", id))
		}

		var incident model.Incident
		if err := docSnap.DataTo(&incident); err != nil {
			return goerr.Wrap(err, "failed to decode incident", goerr.V("id", id))
		}

		if patch.Status != nil {
			incident.Status = *patch.Status
		}
		if patch.Severity != nil {
			incident.Severity = *patch.Severity
		}
		if patch.AssigneeID != nil {
			incident.AssigneeID = *patch.AssigneeID
		}
		if patch.AssigneeName != nil {
			incident.AssigneeName = *patch.AssigneeName
		}
		if patch.AcknowledgedAt != nil {
			t := *patch.AcknowledgedAt
			incident.AcknowledgedAt = &t
		}
		if patch.ResolvedAt != nil {
			t := *patch.ResolvedAt
			incident.ResolvedAt = &t
		}
		incident.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, &incident); err != nil {
			return goerr.Wrap(err, "failed to update incident", goerr.V("id", id))
		}

		result = &incident
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
