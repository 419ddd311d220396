package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/auth"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type fakeVerifier struct {
	sessions map[string]*models.Principal
	err      error
}

func (f *fakeVerifier) Verify(_ context.Context, credential string, allowed ...models.Role) (*models.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if credential == "" {
		return nil, common.ErrNoSession
	}
	p, ok := f.sessions[credential]
	if !ok {
		return nil, fmt.Errorf("%w: bad signature", common.ErrInvalidSession)
	}
	if !auth.Allows(p.Role, allowed...) {
		return nil, common.ErrForbidden
	}
	cp := *p
	return &cp, nil
}

type fakeAuth struct {
	signUps []services.SignUpInput
	err     error
	result  *services.SignInResult
	bearer  string
}

func (f *fakeAuth) SignUp(_ context.Context, in services.SignUpInput) error {
	if f.err != nil {
		return f.err
	}
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	f.signUps = append(f.signUps, in)
	return nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, bearer string) (*services.SignInResult, error) {
	f.bearer = bearer
	if f.err != nil {
		return nil, f.err
	}
	if bearer == "" {
		return nil, fmt.Errorf("%w: no token provided", common.ErrUnauthorized)
	}
	return f.result, nil
}

func (f *fakeAuth) IssueIDToken(_ context.Context, email, password string) (*identity.IssuedToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &identity.IssuedToken{IDToken: "id-" + email, ExpiresIn: time.Hour}, nil
}

type fakeUsers struct {
	records    map[string]*models.Principal
	lastUpdate models.PrincipalUpdate
	deleted    []string
}

func (f *fakeUsers) List(context.Context) ([]*models.Principal, error) {
	out := []*models.Principal{}
	for _, p := range f.records {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeUsers) Get(_ context.Context, id string) (*models.Principal, error) {
	p, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	return p, nil
}

func (f *fakeUsers) Update(ctx context.Context, id string, u models.PrincipalUpdate) (*models.Principal, error) {
	f.lastUpdate = u
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	return p, nil
}

func (f *fakeUsers) SetDisabled(ctx context.Context, id string, disabled bool) (*models.Principal, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Disabled = disabled
	return p, nil
}

func (f *fakeUsers) SetProfileImage(ctx context.Context, id, key string) (*models.Principal, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ProfileImage = key
	return p, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.records, id)
	return nil
}

type fakeMessages struct {
	submitted []services.ContactInput
	view      string
	unread    int
}

func (f *fakeMessages) Submit(_ context.Context, in services.ContactInput) (*models.Message, error) {
	if in.Email == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	f.submitted = append(f.submitted, in)
	return &models.Message{ID: "m1"}, nil
}

func (f *fakeMessages) List(_ context.Context, view string) ([]*models.Message, error) {
	f.view = view
	if _, err := models.ParseMessageView(view); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return []*models.Message{{ID: "m1", Status: models.MessageNew}}, nil
}

func (f *fakeMessages) Update(_ context.Context, id string, u models.MessageUpdate) (*models.Message, error) {
	if id != "m1" {
		return nil, common.ErrNotFound
	}
	m := &models.Message{ID: id, Status: models.MessageNew}
	if u.Status != nil {
		m.Status = *u.Status
	}
	return m, nil
}

func (f *fakeMessages) Delete(_ context.Context, id string) error {
	if id != "m1" {
		return common.ErrNotFound
	}
	return nil
}

func (f *fakeMessages) UnreadCount(context.Context) (int, error) { return f.unread, nil }

type fakeImages struct{}

func (fakeImages) CreateUpload(_ context.Context, uid string) (*services.ProfileImageUpload, error) {
	return &services.ProfileImageUpload{Key: "profiles/" + uid + "/k", UploadURL: "https://s3.test/put"}, nil
}

func (fakeImages) DownloadURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", common.ErrNotFound
	}
	return "https://s3.test/get/" + key, nil
}

type fakeDeps struct{}

func (fakeDeps) Report(context.Context) (*models.DependencyReport, error) {
	return &models.DependencyReport{Dependencies: []models.DependencyStatus{{Module: "example.com/a", Current: "v1.0.0"}}}, nil
}

// testAPI wires a router with fakes. Credentials "user", "mod" and "admin"
// map to principals of the matching role.
type testAPI struct {
	router   http.Handler
	auth     *fakeAuth
	users    *fakeUsers
	messages *fakeMessages
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	verifier := &fakeVerifier{sessions: map[string]*models.Principal{
		"user":  {ID: "u1", Email: "user@x.io", Role: models.RoleUser},
		"mod":   {ID: "u2", Email: "mod@x.io", Role: models.RoleModerator},
		"admin": {ID: "u3", Email: "admin@x.io", Role: models.RoleAdministrator},
	}}
	api := &testAPI{
		auth: &fakeAuth{result: &services.SignInResult{Credential: "cred", Role: models.RoleAdministrator, RedirectURL: "/"}},
		users: &fakeUsers{records: map[string]*models.Principal{
			"u1": {ID: "u1", Email: "user@x.io", Role: models.RoleUser},
		}},
		messages: &fakeMessages{unread: 3},
	}

	l := logging.Discard()
	h := NewHandler(HandlerDeps{
		Auth:          api.auth,
		Users:         api.users,
		Messages:      api.messages,
		ProfileImages: fakeImages{},
		Dependencies:  fakeDeps{},
		Verifier:      verifier,
		Cookies:       auth.NewCodec(auth.CodecConfig{Secret: []byte("k"), Issuer: "test"}, nil),
	}, l)
	metrics := NewMetrics()
	api.router = NewRouter(RouterDeps{
		Handler:     h,
		Gate:        NewGate(&fakeChecker{}, metrics, l),
		Limiter:     NewRateLimiter(600, 100, l),
		Metrics:     metrics,
		Notifier:    NewNotifier(api.messages, nil, metrics, l),
		CORSOrigins: []string{"http://localhost:8080"},
		Pages: func(r chi.Router) {
			r.Get("/dashboard", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("dashboard")) })
			r.Get("/signin", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("signin")) })
		},
		Logger: l,
	})
	return api
}

func (a *testAPI) do(method, target, body, credential string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: credential})
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type fakeChecker struct {
	err   error
	calls int
	got   *http.Cookie
}

func (f *fakeChecker) Check(_ context.Context, c *http.Cookie) error {
	f.calls++
	f.got = c
	return f.err
}
