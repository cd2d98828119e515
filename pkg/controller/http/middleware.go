package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/oncall-lab/argus/pkg/domain/model/auth"
	"github.com/oncall-lab/argus/pkg/utils/logging"
)

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// authMiddleware validates the bearer token on protected requests. With an
// empty signing secret the server runs in no-auth mode and every request
// acts as the anonymous user.
func authMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if signingSecret == "" {
				ctx := auth.ContextWithToken(r.Context(), auth.NewAnonymousUser())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			parsed, err := jwt.Parse([]byte(raw),
				jwt.WithKey(jwa.HS256, []byte(signingSecret)),
				jwt.WithValidate(true),
			)
			if err != nil {
				http.Error(w, "Invalid authentication token", http.StatusUnauthorized)
				return
			}

			token := &auth.Token{
				Sub:       parsed.Subject(),
				Raw:       raw,
				ExpiresAt: parsed.Expiration(),
			}
			if v, ok := parsed.Get("email"); ok {
				if email, ok := v.(string); ok {
					token.Email = email
				}
			}
			if v, ok := parsed.Get("name"); ok {
				if name, ok := v.(string); ok {
					token.Name = name
				}
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
