package repository

import (
	"context"
	"database/sql"
	"fmt"

	"macrame-store/internal/domain"
)

// ContactRepository stores contact form messages and newsletter leads.
type ContactRepository interface {
	CreateMessage(ctx context.Context, msg *domain.ContactMessage) error
	CreateLead(ctx context.Context, lead *domain.Lead) error
	ListMessages(ctx context.Context) ([]*domain.ContactMessage, error)
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// CreateMessage inserts a contact form submission.
func (r *contactRepository) CreateMessage(ctx context.Context, msg *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.Name, msg.Email, msg.Message, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

// CreateLead inserts a newsletter lead. Duplicate emails are accepted;
// deduplication is a back-office concern.
func (r *contactRepository) CreateLead(ctx context.Context, lead *domain.Lead) error {
	query := `
		INSERT INTO leads (id, email, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, lead.ID, lead.Email, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// ListMessages returns all contact messages, newest first.
func (r *contactRepository) ListMessages(ctx context.Context) ([]*domain.ContactMessage, error) {
	query := `
		SELECT id, name, email, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.ContactMessage{}
	for rows.Next() {
		msg := &domain.ContactMessage{}
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}

	return messages, nil
}
