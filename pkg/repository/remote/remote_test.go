package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/model/auth"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/repository/remote"
)

func TestRemoteIncident_Patch(t *testing.T) {
	var gotAuth string
	var gotPatch model.IncidentPatch

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPatch)
		gt.Value(t, r.URL.Path).Equal("/api/incidents/inc-1")
		gotAuth = r.Header.Get("Authorization")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&gotPatch))

		status := *gotPatch.Status
		resp := model.Incident{ID: "inc-1", Title: "remote", Status: status}
		gt.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client, err := remote.New(srv.URL)
	gt.NoError(t, err).Required()

	// The credential forwarded upstream is the one the session presented,
	// not a derived claim like the subject
	ctx := auth.ContextWithToken(context.Background(), &auth.Token{
		Sub: "user-123",
		Raw: "signed-session-token",
	})
	status := types.IncidentStatusAcknowledged
	updated, err := client.Incident().Patch(ctx, "inc-1", model.IncidentPatch{Status: &status})
	gt.NoError(t, err).Required()

	gt.Value(t, updated.Status).Equal(types.IncidentStatusAcknowledged)
	gt.Value(t, gotAuth).Equal("Bearer signed-session-token")
	gt.Value(t, *gotPatch.Status).Equal(types.IncidentStatusAcknowledged)
}

func TestRemoteIncident_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such incident", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := remote.New(srv.URL)
	gt.NoError(t, err).Required()

	_, err = client.Incident().Get(context.Background(), "missing")
	gt.Bool(t, errors.Is(err, remote.ErrNotFound)).True()
}

func TestRemoteAPIKey_Create(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/api/keys")

		var req struct {
			Provider types.Provider `json:"provider"`
			KeyName  string         `json:"key_name"`
			Secret   string         `json:"secret"`
		}
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gt.Value(t, req.Secret).Equal("sk-test")

		resp := model.APIKeyRecord{ID: "key-1", Provider: req.Provider, KeyName: req.KeyName}
		gt.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	client, err := remote.New(srv.URL, remote.WithToken("static-token"))
	gt.NoError(t, err).Required()

	rec, err := client.APIKey().Create(context.Background(), types.ProviderOpenAI, "prod", "sk-test")
	gt.NoError(t, err).Required()
	gt.Value(t, rec.ID).Equal(types.APIKeyID("key-1"))
	gt.Value(t, rec.KeyName).Equal("prod")
}
