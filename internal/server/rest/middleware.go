package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// sessionCredential returns the session cookie value, or "" without one.
func sessionCredential(r *http.Request) string {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// RequireRole verifies the session cookie and puts the principal on the
// request context. With no roles any verified principal passes.
func (h *Handler) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := h.verifier.Verify(r.Context(), sessionCredential(r), roles...)
			if err != nil {
				h.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(l logging.Logger) func(http.Handler) http.Handler {
	l = l.With("module", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			l.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", statusOf(ww),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

// AllowRoles narrows a route already behind RequireRole to roles.
func (h *Handler) AllowRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				h.fail(w, r, common.ErrNoSession)
				return
			}
			if !auth.Allows(p.Role, roles...) {
				h.fail(w, r, common.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
