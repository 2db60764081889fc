package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"macrame-store/internal/domain"
)

var (
	ErrResetTokenNotFound = errors.New("password reset token not found")
	ErrResetTokenUsed     = errors.New("password reset token already used")
)

// ResetTokenRepository defines the interface for password reset token data access
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string) error
}

type resetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new instance of ResetTokenRepository
func NewResetTokenRepository(db *sql.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create inserts a new password reset token using parameterized queries
func (r *resetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

// FindByToken retrieves a reset token; used tokens surface as
// ErrResetTokenUsed.
func (r *resetTokenRepository) FindByToken(ctx context.Context, tokenString string) (*domain.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	token := &domain.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, tokenString).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.Used,
		&token.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}

	if token.Used {
		return nil, ErrResetTokenUsed
	}

	return token, nil
}

// MarkUsed consumes a reset token.
func (r *resetTokenRepository) MarkUsed(ctx context.Context, tokenString string) error {
	query := `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1
	`

	result, err := r.db.ExecContext(ctx, query, tokenString)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrResetTokenNotFound
	}

	return nil
}
