// Package accounts stores identity provider accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/rabetweb/internal/server/models"
)

// Repository persists identity accounts.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, uid string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, uid string) error
}
