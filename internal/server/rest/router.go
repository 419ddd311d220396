package rest

import (
	"net/http"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps are the parts NewRouter assembles.
type RouterDeps struct {
	Handler     *Handler
	Gate        *Gate
	Limiter     *RateLimiter
	Metrics     *Metrics
	Notifier    *Notifier
	CORSOrigins []string
	// Pages mounts the HTML pages.
	Pages  func(r chi.Router)
	Logger logging.Logger
}

// NewRouter builds the full HTTP surface: health and metrics, the JSON API
// under /api and the HTML pages, all behind the access gate.
func NewRouter(d RouterDeps) http.Handler {
	h := d.Handler

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(d.Metrics.Middleware)
	// The gate runs before routing so that unrouted /dashboard paths and
	// any method are redirected too. Other paths pass straight through.
	r.Use(d.Gate.Middleware)

	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Route("/auth", func(r chi.Router) {
			// The gate calls verify on every dashboard page, so it is not
			// rate limited.
			r.Get("/verify", h.Verify)
			r.Post("/signout", h.SignOut)

			r.Group(func(r chi.Router) {
				r.Use(d.Limiter.Middleware)
				r.Post("/signup", h.SignUp)
				r.Post("/signin", h.SignIn)
				r.Post("/token", h.Token)
			})
		})

		r.With(d.Limiter.Middleware).Post("/contact", h.Contact)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequireRole(auth.StaffRoles...))
			r.Get("/", h.ListUsers)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Patch("/", h.UpdateUser)
				r.Put("/", h.SetUserStatus)
				r.With(h.AllowRoles(models.RoleAdministrator)).Delete("/", h.DeleteUser)
				r.Get("/profile-image", h.ProfileImage)
				r.Post("/profile-image", h.CreateProfileImageUpload)
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(h.RequireRole(auth.StaffRoles...))
			r.Get("/", h.ListMessages)
			r.Get("/unread", h.UnreadCount)
			r.Method(http.MethodGet, "/live", d.Notifier)
			r.Patch("/{messageID}", h.UpdateMessage)
			r.Delete("/{messageID}", h.DeleteMessage)
		})

		r.With(h.RequireRole(auth.StaffRoles...)).Get("/system/dependencies", h.Dependencies)
	})

	if d.Pages != nil {
		d.Pages(r)
	}

	return r
}
