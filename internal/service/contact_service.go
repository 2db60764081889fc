package service

import (
	"context"
	"fmt"
	"time"

	"macrame-store/internal/domain"
	"macrame-store/internal/notification"
	"macrame-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactService stores contact messages and newsletter leads. The
// database write is the source of truth; email and form-relay delivery
// are secondary paths that never fail a submission.
type ContactService interface {
	SubmitMessage(ctx context.Context, name, email, message string) (*domain.ContactMessage, error)
	SubscribeLead(ctx context.Context, email string) (*domain.Lead, error)
	ListMessages(ctx context.Context) ([]*domain.ContactMessage, error)
}

type contactService struct {
	contactRepo repository.ContactRepository
	mailer      notification.Mailer
	relay       *notification.FormRelay
	contactTo   string
	logger      *zap.Logger
}

// NewContactService creates a new instance of ContactService
func NewContactService(
	contactRepo repository.ContactRepository,
	mailer notification.Mailer,
	relay *notification.FormRelay,
	contactTo string,
	logger *zap.Logger,
) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		mailer:      mailer,
		relay:       relay,
		contactTo:   contactTo,
		logger:      logger,
	}
}

// SubmitMessage stores the message, then forwards it to the shop inbox
// and the form relay. Delivery failures are logged and swallowed.
func (s *contactService) SubmitMessage(ctx context.Context, name, email, message string) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.contactRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store contact message: %w", err)
	}

	if err := s.mailer.Send(ctx, notification.TemplateContactRelay, s.contactTo, map[string]string{
		"name":    name,
		"email":   email,
		"message": message,
	}); err != nil {
		s.logger.Warn("Contact email forward failed",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
	}

	if err := s.relay.Submit(ctx, map[string]string{
		"name":    name,
		"email":   email,
		"message": message,
	}); err != nil {
		s.logger.Warn("Contact form relay failed",
			zap.String("message_id", msg.ID.String()),
			zap.Error(err),
		)
	}

	return msg, nil
}

// SubscribeLead records a newsletter signup.
func (s *contactService) SubscribeLead(ctx context.Context, email string) (*domain.Lead, error) {
	lead := &domain.Lead{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: time.Now(),
	}

	if err := s.contactRepo.CreateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to store lead: %w", err)
	}

	return lead, nil
}

// ListMessages returns stored contact messages for the admin panel.
func (s *contactService) ListMessages(ctx context.Context) ([]*domain.ContactMessage, error) {
	return s.contactRepo.ListMessages(ctx)
}
