package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncall-lab/argus/pkg/usecase"
	"github.com/oncall-lab/argus/pkg/utils/errutil"
	"github.com/oncall-lab/argus/pkg/utils/safe"
)

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	signingSecret string
}

type Options func(*Server)

// WithAuthSecret enables bearer authentication with the given HS256 signing
// secret. Without it the server runs in no-auth mode.
func WithAuthSecret(secret string) Options {
	return func(s *Server) {
		s.signingSecret = secret
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("use cases are required")
	}

	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.signingSecret))

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", s.listIncidents)
			r.Post("/", s.createIncident)

			r.Route("/{incidentID}", func(r chi.Router) {
				r.Get("/", s.getIncident)
				r.Patch("/", s.patchIncident)
				r.Get("/sla", s.incidentSLA)
				r.Put("/severity", s.setSeverity)
				r.Put("/assignee", s.assignIncident)
				r.Post("/escalate", s.escalateIncident)
				r.Post("/{action}", s.applyAction)
			})
		})

		r.Route("/keys", func(r chi.Router) {
			r.Get("/", s.listAPIKeys)
			r.Post("/", s.createAPIKey)
			r.Post("/revalidate", s.revalidateAPIKeys)
			r.Post("/{keyID}/validate", s.validateAPIKey)
			r.Delete("/{keyID}", s.deleteAPIKey)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
