package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/domain/model"
	"github.com/oncall-lab/argus/pkg/domain/types"
	"github.com/oncall-lab/argus/pkg/service/sla"
	"github.com/oncall-lab/argus/pkg/usecase"
	"github.com/oncall-lab/argus/pkg/utils/errutil"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrIncidentNotFound), errors.Is(err, usecase.ErrAPIKeyNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrActionNotAllowed),
		errors.Is(err, usecase.ErrUpdateInFlight),
		errors.Is(err, usecase.ErrViewClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) listIncidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := s.uc.ListIncidents(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, r, http.StatusOK, incidents)
}

func (s *Server) createIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string         `json:"title"`
		Description string         `json:"description"`
		Severity    types.Severity `json:"severity"`
		Tags        []string       `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	incident, err := s.uc.CreateIncident(r.Context(), usecase.CreateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Tags:        req.Tags,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, r, http.StatusCreated, incident)
}

func (s *Server) getIncident(w http.ResponseWriter, r *http.Request) {
	id := types.IncidentID(chi.URLParam(r, "incidentID"))

	incident, err := s.uc.GetIncident(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, r, http.StatusOK, incident)
}

// patchIncident applies field changes directly to the store. This is the
// endpoint remote console instances call to persist their optimistic
// updates.
func (s *Server) patchIncident(w http.ResponseWriter, r *http.Request) {
	id := types.IncidentID(chi.URLParam(r, "incidentID"))

	var patch model.IncidentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	incident, err := s.uc.PatchIncident(r.Context(), id, patch)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	respondJSON(w, r, http.StatusOK, incident)
}

// withView runs one view mutation and responds with the confirmed incident
func (s *Server) withView(w http.ResponseWriter, r *http.Request, mutate func(view *usecase.IncidentView) error) {
	id := types.IncidentID(chi.URLParam(r, "incidentID"))

	view, err := s.uc.OpenView(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}
	defer view.Close()

	var result usecase.UpdateResult
	view.SetOnResult(func(res usecase.UpdateResult) {
		result = res
	})

	if err := mutate(view); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}
	view.Wait()

	if result.Err != nil {
		errutil.HandleHTTP(r.Context(), w, result.Err, http.StatusBadGateway)
		return
	}

	respondJSON(w, r, http.StatusOK, view.Incident())
}

func (s *Server) applyAction(w http.ResponseWriter, r *http.Request) {
	action, err := types.ParseIncidentAction(chi.URLParam(r, "action"))
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	s.withView(w, r, func(view *usecase.IncidentView) error {
		return view.Apply(r.Context(), action)
	})
}

func (s *Server) setSeverity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Severity types.Severity `json:"severity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	s.withView(w, r, func(view *usecase.IncidentView) error {
		return view.SetSeverity(r.Context(), req.Severity)
	})
}

func (s *Server) assignIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssigneeID   string `json:"assignee_id"`
		AssigneeName string `json:"assignee_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	s.withView(w, r, func(view *usecase.IncidentView) error {
		return view.Assign(r.Context(), req.AssigneeID, req.AssigneeName)
	})
}

func (s *Server) escalateIncident(w http.ResponseWriter, r *http.Request) {
	s.withView(w, r, func(view *usecase.IncidentView) error {
		return view.Escalate(r.Context())
	})
}

func (s *Server) incidentSLA(w http.ResponseWriter, r *http.Request) {
	id := types.IncidentID(chi.URLParam(r, "incidentID"))

	incident, err := s.uc.GetIncident(r.Context(), id)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
		return
	}

	calc := sla.NewCalculator(s.uc.SLAConfig())
	report := calc.Assess(incident, time.Now().UTC())

	type milestoneResponse struct {
		Threshold string         `json:"threshold"`
		Elapsed   string         `json:"elapsed"`
		Remaining string         `json:"remaining"`
		Breached  bool           `json:"breached"`
		Progress  float64        `json:"progress"`
		Status    sla.Compliance `json:"status"`
	}
	toResponse := func(m sla.Milestone) milestoneResponse {
		return milestoneResponse{
			Threshold: sla.Format(m.Threshold),
			Elapsed:   sla.Format(m.Elapsed),
			Remaining: sla.Format(m.Remaining),
			Breached:  m.Remaining < 0,
			Progress:  m.Progress,
			Status:    m.Status,
		}
	}

	resp := struct {
		TotalDuration string            `json:"total_duration"`
		Acknowledge   milestoneResponse `json:"acknowledge"`
		Resolution    milestoneResponse `json:"resolution"`
	}{
		TotalDuration: sla.Format(report.TotalDuration),
		Acknowledge:   toResponse(report.Acknowledge),
		Resolution:    toResponse(report.Resolution),
	}

	respondJSON(w, r, http.StatusOK, resp)
}
