package admin

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/config"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/services"
)

var errBoom = errors.New("boom")

type fakeAccounts struct {
	signedUp []services.SignUpInput
	err      error
}

func (f *fakeAccounts) SignUp(ctx context.Context, in services.SignUpInput) error {
	if f.err != nil {
		return f.err
	}
	f.signedUp = append(f.signedUp, in)
	return nil
}

type fakeDirectory map[string]string

func (f fakeDirectory) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	uid, ok := f[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &models.Account{UID: uid, Email: email}, nil
}

type fakeUsers struct {
	updates  map[string]models.PrincipalUpdate
	disabled map[string]bool
	images   map[string]string
	err      error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		updates:  map[string]models.PrincipalUpdate{},
		disabled: map[string]bool{},
		images:   map[string]string{},
	}
}

func (f *fakeUsers) Update(ctx context.Context, id string, u models.PrincipalUpdate) (*models.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updates[id] = u
	p := &models.Principal{ID: id, Email: id + "@example.com"}
	if u.Role != nil {
		p.Role = *u.Role
	}
	return p, nil
}

func (f *fakeUsers) SetDisabled(ctx context.Context, id string, disabled bool) (*models.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.disabled[id] = disabled
	return &models.Principal{ID: id, Disabled: disabled}, nil
}

func (f *fakeUsers) SetProfileImage(ctx context.Context, id, key string) (*models.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.images[id] = key
	return &models.Principal{ID: id, ProfileImage: key}, nil
}

type fakeUploads struct {
	url string
	err error
}

func (f *fakeUploads) CreateUpload(ctx context.Context, uid string) (*services.ProfileImageUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.ProfileImageUpload{Key: "profiles/" + uid + "/k1", UploadURL: f.url}, nil
}

type testEnv struct {
	accounts  *fakeAccounts
	directory fakeDirectory
	users     *fakeUsers
	uploads   *fakeUploads
	closed    int
	cfg       *config.Config
	openErr   error
}

func newTestEnv() *testEnv {
	return &testEnv{
		accounts:  &fakeAccounts{},
		directory: fakeDirectory{"admin@example.com": "uid-admin"},
		users:     newFakeUsers(),
		uploads:   &fakeUploads{},
	}
}

func (te *testEnv) open(ctx context.Context, cfg *config.Config) (*Env, error) {
	te.cfg = cfg
	if te.openErr != nil {
		return nil, te.openErr
	}
	return &Env{
		Accounts:   te.accounts,
		Directory:  te.directory,
		Users:      te.users,
		Uploads:    te.uploads,
		HTTPClient: http.DefaultClient,
		close: func() error {
			te.closed++
			return nil
		},
	}, nil
}

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(pw), nil
	}
}

func execute(root *cobra.Command, out *bytes.Buffer, args ...string) error {
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}
