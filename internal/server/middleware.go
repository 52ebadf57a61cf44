package server

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"kisansarathi/internal/auth"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyIdentity contextKey = "identity"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// CORS lets the configured browser origins call the API with credentials and
// answers preflight requests before routing.
func (s *Service) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !slices.Contains(s.config.CORSAllowedOrigins, origin) {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth resolves the caller from a bearer token, falling back to the
// session cookie, and adds the identity to the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			token, ok = s.sessionToken(r)
		}
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		identity, err := s.deps.Verifier.Verify(r.Context(), token)
		if err != nil {
			if auth.IsUnauthorized(err) {
				s.logger.WithError(err).Debug("rejected access token")
				s.writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			s.logger.WithError(err).Error("failed to verify access token")
			s.writeError(w, http.StatusServiceUnavailable, "Authentication is temporarily unavailable")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": identity.UserID,
			"email":   identity.Email,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.identityFromContext(r.Context())
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		if !identity.InGroup(s.config.CognitoAdminGroup) {
			s.writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return "", false
	}

	var accessToken string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &accessToken); err != nil {
		s.logger.WithError(err).Debug("failed to decrypt session cookie")
		return "", false
	}

	return accessToken, accessToken != ""
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusPermanentRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}
