// Package web renders the HTML pages: the public site and the staff
// dashboard. Pages talk to the JSON API from the browser; the dashboard
// pages also read through the services to render their first view.
package web

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/go-chi/chi/v5"
	. "maragu.dev/gomponents"
)

type SessionVerifier interface {
	Verify(ctx context.Context, credential string, allowed ...models.Role) (*models.Principal, error)
}

type UserLister interface {
	List(ctx context.Context) ([]*models.Principal, error)
}

type MessageLister interface {
	List(ctx context.Context, view string) ([]*models.Message, error)
	UnreadCount(ctx context.Context) (int, error)
}

type DependencyReporter interface {
	Report(ctx context.Context) (*models.DependencyReport, error)
}

// Pages renders the public site and the dashboard.
type Pages struct {
	verifier SessionVerifier
	users    UserLister
	messages MessageLister
	deps     DependencyReporter
	logger   logging.Logger
}

// NewPages builds the page handlers.
func NewPages(v SessionVerifier, users UserLister, messages MessageLister, deps DependencyReporter, l logging.Logger) *Pages {
	return &Pages{verifier: v, users: users, messages: messages, deps: deps, logger: l.With("module", "web")}
}

// Mount registers every page on r.
func (p *Pages) Mount(r chi.Router) {
	r.Get("/", p.Home)
	r.Get("/signin", p.SignIn)
	r.Get("/signup", p.SignUp)
	r.Get("/contact", p.Contact)

	r.Get("/dashboard", p.Dashboard)
	r.Get("/dashboard/users", p.Users)
	r.Get("/dashboard/inbox", p.Inbox)
	r.Get("/dashboard/system", p.System)
}

func renderHTML(w http.ResponseWriter, status int, node Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

// staff resolves the signed-in staff principal. The gate has already let
// the request through; this re-check covers a session revoked in between.
func (p *Pages) staff(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	var credential string
	if c, err := r.Cookie(common.SessionCookieName); err == nil {
		credential = c.Value
	}

	pr, err := p.verifier.Verify(r.Context(), credential, auth.StaffRoles...)
	if err != nil {
		p.logger.Debug(r.Context(), "dashboard page refused", "path", r.URL.Path, "error", err)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return nil, false
	}
	return pr, true
}

func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, homePage())
}

func (p *Pages) SignIn(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, signInPage())
}

func (p *Pages) SignUp(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, signUpPage())
}

func (p *Pages) Contact(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, contactPage())
}

// Dashboard renders the overview with user and inbox counts.
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	pr, ok := p.staff(w, r)
	if !ok {
		return
	}

	users, err := p.users.List(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	unread, err := p.messages.UnreadCount(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, overviewPage(pr, len(users), unread))
}

func (p *Pages) Users(w http.ResponseWriter, r *http.Request) {
	pr, ok := p.staff(w, r)
	if !ok {
		return
	}

	users, err := p.users.List(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, usersPage(pr, users))
}

func (p *Pages) Inbox(w http.ResponseWriter, r *http.Request) {
	pr, ok := p.staff(w, r)
	if !ok {
		return
	}

	view, err := models.ParseMessageView(r.URL.Query().Get("view"))
	if err != nil {
		view = models.ViewAll
	}
	list, err := p.messages.List(r.Context(), string(view))
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, inboxPage(pr, view, list))
}

func (p *Pages) System(w http.ResponseWriter, r *http.Request) {
	pr, ok := p.staff(w, r)
	if !ok {
		return
	}

	rep, err := p.deps.Report(r.Context())
	if err != nil {
		p.serverError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, systemPage(pr, rep))
}

func (p *Pages) serverError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error(r.Context(), "page render failed", "path", r.URL.Path, "error", err)
	renderHTML(w, http.StatusInternalServerError, errorPage("Something went wrong. Please try again later."))
}
