package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
)

// AuthService provisions principals and opens sessions.
type AuthService interface {
	SignUp(ctx context.Context, in services.SignUpInput) error
	SignIn(ctx context.Context, email, bearer string) (*services.SignInResult, error)
	IssueIDToken(ctx context.Context, email, password string) (*identity.IssuedToken, error)
}

// UserService administers user records.
type UserService interface {
	List(ctx context.Context) ([]*models.Principal, error)
	Get(ctx context.Context, id string) (*models.Principal, error)
	Update(ctx context.Context, id string, u models.PrincipalUpdate) (*models.Principal, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*models.Principal, error)
	SetProfileImage(ctx context.Context, id, key string) (*models.Principal, error)
	Delete(ctx context.Context, id string) error
}

// MessageService stores contact messages and manages the inbox.
type MessageService interface {
	Submit(ctx context.Context, in services.ContactInput) (*models.Message, error)
	List(ctx context.Context, view string) ([]*models.Message, error)
	Update(ctx context.Context, id string, u models.MessageUpdate) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	UnreadCount(ctx context.Context) (int, error)
}

// ProfileImageService presigns profile image uploads and downloads.
type ProfileImageService interface {
	CreateUpload(ctx context.Context, uid string) (*services.ProfileImageUpload, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// DependencyService reports tracked module versions.
type DependencyService interface {
	Report(ctx context.Context) (*models.DependencyReport, error)
}

// SessionVerifier resolves a session credential to a principal.
type SessionVerifier interface {
	Verify(ctx context.Context, credential string, allowed ...models.Role) (*models.Principal, error)
}

// SessionCookies writes and clears the session cookie.
type SessionCookies interface {
	Attach(w http.ResponseWriter, credential string)
	Clear(w http.ResponseWriter)
}

// Handler serves the JSON API.
type Handler struct {
	auth     AuthService
	users    UserService
	messages MessageService
	images   ProfileImageService
	deps     DependencyService
	verifier SessionVerifier
	cookies  SessionCookies
	logger   logging.Logger
}

// HandlerDeps are the collaborators of a Handler.
type HandlerDeps struct {
	Auth          AuthService
	Users         UserService
	Messages      MessageService
	ProfileImages ProfileImageService
	Dependencies  DependencyService
	Verifier      SessionVerifier
	Cookies       SessionCookies
}

// NewHandler builds the JSON API handler.
func NewHandler(d HandlerDeps, l logging.Logger) *Handler {
	return &Handler{
		auth:     d.Auth,
		users:    d.Users,
		messages: d.Messages,
		images:   d.ProfileImages,
		deps:     d.Dependencies,
		verifier: d.Verifier,
		cookies:  d.Cookies,
		logger:   l.With("module", "api"),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}
