package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/dbx"
	"github.com/dmitrijs2005/rabetweb/internal/server/identity"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/messages"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/principals"
)

var errBoom = errors.New("boom")

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- repositories ---

type fakePrincipals struct {
	mu      sync.Mutex
	records map[string]*models.Principal

	createErr error
	getErr    error
	updateErr error
	touchErr  error
	deleteErr error
	touched   map[string]time.Time
}

func newFakePrincipals(ps ...*models.Principal) *fakePrincipals {
	f := &fakePrincipals{records: map[string]*models.Principal{}, touched: map[string]time.Time{}}
	for _, p := range ps {
		f.records[p.ID] = p
	}
	return f
}

func (f *fakePrincipals) Create(_ context.Context, p *models.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.records[p.ID] = p
	return nil
}

func (f *fakePrincipals) GetByID(_ context.Context, id string) (*models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrincipals) List(context.Context) ([]*models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := []*models.Principal{}
	for _, p := range f.records {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePrincipals) Update(_ context.Context, id string, u models.PrincipalUpdate, at time.Time) (*models.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.FirstName, u.FirstName)
	set(&p.LastName, u.LastName)
	set(&p.Email, u.Email)
	set(&p.Username, u.Username)
	set(&p.PhoneNumber, u.PhoneNumber)
	set(&p.Bio, u.Bio)
	set(&p.Website, u.Website)
	set(&p.ProfileImage, u.ProfileImage)
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.Disabled != nil {
		p.Disabled = *u.Disabled
	}
	p.UpdatedAt = at
	cp := *p
	return &cp, nil
}

func (f *fakePrincipals) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched[id] = at
	return nil
}

func (f *fakePrincipals) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.records[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

type fakeMessages struct {
	mu   sync.Mutex
	list []*models.Message

	err      error
	lastView models.MessageView
}

func (f *fakeMessages) Create(_ context.Context, m *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cp := *m
	cp.ID = fmt.Sprintf("m%d", len(f.list)+1)
	cp.CreatedAt = fixedNow
	f.list = append(f.list, &cp)
	return &cp, nil
}

func (f *fakeMessages) find(id string) *models.Message {
	for _, m := range f.list {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (f *fakeMessages) GetByID(_ context.Context, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m := f.find(id); m != nil {
		return m, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeMessages) List(_ context.Context, view models.MessageView) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastView = view
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeMessages) Update(_ context.Context, id string, u models.MessageUpdate) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m := f.find(id)
	if m == nil {
		return nil, common.ErrNotFound
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	if u.IsArchived != nil {
		m.IsArchived = *u.IsArchived
	}
	return m, nil
}

func (f *fakeMessages) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, m := range f.list {
		if m.ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeMessages) CountUnread(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, m := range f.list {
		if m.Status == models.MessageNew && !m.IsArchived {
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct {
	p *fakePrincipals
	m *fakeMessages
}

func (r *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (r *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return nil }
func (r *fakeRepoManager) Principals(dbx.DBTX) principals.Repository    { return r.p }
func (r *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return r.m }

// --- identity ---

type fakeIdP struct {
	accounts map[string]*models.Account
	tokens   map[string]string // raw token -> uid

	createErr error
	getErr    error
	updateErr error
	deleteErr error
	verifyErr error
	signInErr error

	deleted []string
	updates []identity.AccountUpdate
}

func newFakeIdP(accts ...*models.Account) *fakeIdP {
	f := &fakeIdP{accounts: map[string]*models.Account{}, tokens: map[string]string{}}
	for _, a := range accts {
		f.accounts[a.UID] = a
	}
	return f
}

func (f *fakeIdP) CreateUser(_ context.Context, in identity.NewAccount) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	a := &models.Account{UID: "uid-" + in.Email, Email: in.Email, DisplayName: in.DisplayName}
	f.accounts[a.UID] = a
	return a, nil
}

func (f *fakeIdP) GetUser(_ context.Context, uid string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.accounts[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	return a, nil
}

func (f *fakeIdP) GetUserByEmail(_ context.Context, email string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeIdP) UpdateUser(_ context.Context, uid string, u identity.AccountUpdate) (*models.Account, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a, ok := f.accounts[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	f.updates = append(f.updates, u)
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.Disabled != nil {
		a.Disabled = *u.Disabled
	}
	return a, nil
}

func (f *fakeIdP) DeleteUser(_ context.Context, uid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.accounts[uid]; !ok {
		return common.ErrNotFound
	}
	delete(f.accounts, uid)
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeIdP) VerifyIDToken(_ context.Context, raw string) (*identity.Token, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	uid, ok := f.tokens[raw]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return &identity.Token{UID: uid, Subject: uid}, nil
}

func (f *fakeIdP) SignInWithPassword(_ context.Context, email, password string) (*identity.IssuedToken, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &identity.IssuedToken{IDToken: "tok-" + email, ExpiresIn: time.Hour}, nil
}

type fakeMinter struct {
	err error
}

func (f fakeMinter) Mint(_ context.Context, idToken string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "session-for-" + idToken, nil
}
