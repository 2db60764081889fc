package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile with this email already exists")
)

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	List(ctx context.Context) ([]*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new instance of ProfileRepository
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, email, password_hash, full_name, phone, role, created_at, updated_at`

func scanProfile(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Profile, error) {
	profile := &domain.Profile{}
	var role string

	err := scanner.Scan(
		&profile.ID,
		&profile.Email,
		&profile.PasswordHash,
		&profile.FullName,
		&profile.Phone,
		&role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Role strings live only at the storage boundary.
	profile.Role = domain.ParseRole(role)
	return profile, nil
}

// Create inserts a new profile into the database using parameterized queries
func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, full_name, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.Email,
		profile.PasswordHash,
		profile.FullName,
		profile.Phone,
		string(profile.Role),
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "profiles_email_key") {
			return ErrProfileAlreadyExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// FindByEmail retrieves a profile by email using parameterized queries
func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email = $1`, profileColumns)

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	return profile, nil
}

// FindByID retrieves a profile by ID using parameterized queries
func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}

	return profile, nil
}

// List retrieves all profiles ordered by creation time. Used by the
// master admin user management screen.
func (r *profileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles ORDER BY created_at DESC`, profileColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*domain.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// Update writes name, phone and role for an existing profile.
func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET full_name = $2, phone = $3, role = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.FullName,
		profile.Phone,
		string(profile.Role),
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// UpdatePassword overwrites the stored password hash.
func (r *profileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE profiles
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// Delete removes a profile.
func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProfileNotFound
	}

	return nil
}
