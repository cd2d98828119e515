package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/utils/errutil"
)

func (s *Server) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.Credential.List(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, records)
}

func (s *Server) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider types.Provider `json:"provider"`
		KeyName  string         `json:"key_name"`
		Secret   string         `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	rec, err := s.uc.Credential.Create(r.Context(), req.Provider, req.KeyName, req.Secret)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, r, http.StatusCreated, rec)
}

func (s *Server) validateAPIKey(w http.ResponseWriter, r *http.Request) {
	id := types.APIKeyID(chi.URLParam(r, "keyID"))

	rec, err := s.uc.Credential.Validate(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, r, http.StatusOK, rec)
}

func (s *Server) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	id := types.APIKeyID(chi.URLParam(r, "keyID"))

	if err := s.uc.Credential.Delete(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) revalidateAPIKeys(w http.ResponseWriter, r *http.Request) {
	records, err := s.uc.Credential.RevalidateAll(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, records)
}
