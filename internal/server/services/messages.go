package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/rabetweb/internal/common"
	"github.com/dmitrijs2005/rabetweb/internal/logging"
	"github.com/dmitrijs2005/rabetweb/internal/server/models"
	"github.com/dmitrijs2005/rabetweb/internal/server/repositories/repomanager"
)

// UnreadListener is told the new unread count after every inbox change.
type UnreadListener interface {
	UnreadChanged(ctx context.Context, count int)
}

// ContactInput is the public contact form.
type ContactInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// MessageService is the contact form inbox.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	mu        sync.RWMutex
	listeners []UnreadListener
}

// NewMessageService builds a MessageService.
func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *MessageService {
	return &MessageService{db: db, repomanager: m, logger: logger.With("module", "messages")}
}

// OnUnreadChanged registers l to be told the unread count after changes.
func (s *MessageService) OnUnreadChanged(l UnreadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Submit validates and stores a contact message with status new.
func (s *MessageService) Submit(ctx context.Context, in ContactInput) (*models.Message, error) {
	m := &models.Message{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Subject:  strings.TrimSpace(in.Subject),
		Body:     strings.TrimSpace(in.Message),
		Status:   models.MessageNew,
	}
	if m.FullName == "" || m.Email == "" || m.Subject == "" || m.Body == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	if !strings.Contains(m.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrValidation)
	}

	created, err := s.repomanager.Messages(s.db).Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	s.logger.Info(ctx, "contact message received", "id", created.ID)
	s.notify(ctx)
	return created, nil
}

// List returns messages for view (all, archived or a status).
func (s *MessageService) List(ctx context.Context, view string) ([]*models.Message, error) {
	v, err := models.ParseMessageView(view)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	list, err := s.repomanager.Messages(s.db).List(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	return list, nil
}

// Update changes status and archive flag.
func (s *MessageService) Update(ctx context.Context, id string, u models.MessageUpdate) (*models.Message, error) {
	if u.Status == nil && u.IsArchived == nil {
		return nil, fmt.Errorf("%w: no fields to update", common.ErrValidation)
	}
	if u.Status != nil {
		if _, err := models.ParseMessageStatus(string(*u.Status)); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
	}

	m, err := s.repomanager.Messages(s.db).Update(ctx, id, u)
	if err != nil {
		return nil, notFoundOr(err, "message not found")
	}
	s.notify(ctx)
	return m, nil
}

// Delete removes a message.
func (s *MessageService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Messages(s.db).Delete(ctx, id); err != nil {
		return notFoundOr(err, "message not found")
	}
	s.notify(ctx)
	return nil
}

// UnreadCount counts new messages that are not archived.
func (s *MessageService) UnreadCount(ctx context.Context) (int, error) {
	n, err := s.repomanager.Messages(s.db).CountUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	return n, nil
}

func (s *MessageService) notify(ctx context.Context) {
	s.mu.RLock()
	listeners := append([]UnreadListener(nil), s.listeners...)
	s.mu.RUnlock()
	if len(listeners) == 0 {
		return
	}

	n, err := s.UnreadCount(ctx)
	if err != nil {
		s.logger.Warn(ctx, "unread count unavailable", "error", err)
		return
	}
	for _, l := range listeners {
		l.UnreadChanged(ctx, n)
	}
}
