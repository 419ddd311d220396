// Package messages stores contact-form submissions.
package messages

import (
	"context"

	"github.com/dmitrijs2005/rabetweb/internal/server/models"
)

// Repository persists contact messages.
type Repository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	List(ctx context.Context, view models.MessageView) ([]*models.Message, error)
	Update(ctx context.Context, id string, u models.MessageUpdate) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context) (int, error)
}
