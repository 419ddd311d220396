package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/google/uuid"
)

// fakeAccounts is an in-memory accounts.Repository.
type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]*models.Account
	err  error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*models.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, a.Email) {
			return nil, common.ErrAlreadyExists
		}
	}
	if a.UID == "" {
		a.UID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.byID[a.UID] = &cp
	return a, nil
}

func (f *fakeAccounts) GetByID(_ context.Context, uid string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[uid]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAccounts) Update(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[a.UID]; !ok {
		return nil, common.ErrNotFound
	}
	for id, existing := range f.byID {
		if id != a.UID && strings.EqualFold(existing.Email, a.Email) {
			return nil, common.ErrAlreadyExists
		}
	}
	cp := *a
	f.byID[a.UID] = &cp
	return a, nil
}

func (f *fakeAccounts) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[uid]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, uid)
	return nil
}
