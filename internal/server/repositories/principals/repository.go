// Package principals is the document store for user records.
package principals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rabetweb/internal/server/models"
)

// Repository persists user records.
type Repository interface {
	Create(ctx context.Context, p *models.Principal) error
	GetByID(ctx context.Context, id string) (*models.Principal, error)
	List(ctx context.Context) ([]*models.Principal, error)
	Update(ctx context.Context, id string, u models.PrincipalUpdate, at time.Time) (*models.Principal, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
