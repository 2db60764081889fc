package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"macrame-store/internal/domain"
	"macrame-store/internal/notification"
	"macrame-store/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// MaxPasswordLength is the longest accepted password in bytes.
	// bcrypt only hashes the first 72 bytes of its input, so anything
	// longer is rejected up front instead of being silently truncated.
	MaxPasswordLength = 72

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
	ResetTokenExpiration   = 1 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrPasswordTooLong    = errors.New("password exceeds the maximum length")
)

// UserService defines the interface for account business logic
type UserService interface {
	Register(ctx context.Context, email, password, fullName, phone string) (*domain.Profile, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, profile *domain.Profile, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	// Master-admin user management.
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	DeleteProfile(ctx context.Context, userID uuid.UUID) error
}

// Claims represents the JWT claims
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type userService struct {
	profileRepo      repository.ProfileRepository
	refreshTokenRepo repository.RefreshTokenRepository
	resetTokenRepo   repository.ResetTokenRepository
	mailer           notification.Mailer
	jwtSecret        string
	logger           *zap.Logger
}

// NewUserService creates a new instance of UserService
func NewUserService(
	profileRepo repository.ProfileRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	resetTokenRepo repository.ResetTokenRepository,
	mailer notification.Mailer,
	jwtSecret string,
	logger *zap.Logger,
) UserService {
	return &userService{
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetTokenRepo:   resetTokenRepo,
		mailer:           mailer,
		jwtSecret:        jwtSecret,
		logger:           logger,
	}
}

// Register creates a new customer profile with a hashed password.
func (s *userService) Register(ctx context.Context, email, password, fullName, phone string) (*domain.Profile, error) {
	existing, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrProfileAlreadyExists
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &domain.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     fullName,
		Phone:        phone,
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// Login authenticates a profile and returns JWT tokens.
func (s *userService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, profile *domain.Profile, err error) {
	profile, err = s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.generateAccessToken(profile)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, profile)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, profile, nil
}

// Logout invalidates the refresh token. An unknown token counts as
// already logged out.
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token from a valid refresh token.
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	profile, err := s.profileRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find profile: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(profile)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetProfile retrieves a profile by ID.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// RequestPasswordReset creates a single-use reset token and mails it.
// An unknown email is treated as success so the endpoint does not leak
// which addresses have accounts.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	profile, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find profile: %w", err)
	}

	token := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    profile.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(ResetTokenExpiration),
		CreatedAt: time.Now(),
	}

	if err := s.resetTokenRepo.Create(ctx, token); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if err := s.mailer.Send(ctx, notification.TemplatePasswordReset, profile.Email, map[string]string{
		"reset_token": token.Token,
		"full_name":   profile.FullName,
	}); err != nil {
		s.logger.Warn("Password reset email failed",
			zap.String("user_id", profile.ID.String()),
			zap.Error(err),
		)
	}

	return nil
}

// ResetPassword consumes a reset token and writes the new password.
func (s *userService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	token, err := s.resetTokenRepo.FindByToken(ctx, tokenString)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) || errors.Is(err, repository.ErrResetTokenUsed) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	if time.Now().After(token.ExpiresAt) {
		return ErrTokenExpired
	}

	hashedPassword, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profileRepo.UpdatePassword(ctx, token.UserID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetTokenRepo.MarkUsed(ctx, tokenString); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	return nil
}

// ListProfiles returns every profile for the user management screen.
func (s *userService) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	return s.profileRepo.List(ctx)
}

// UpdateProfile writes name, phone and role.
func (s *userService) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	profile.UpdatedAt = time.Now()
	return s.profileRepo.Update(ctx, profile)
}

// DeleteProfile removes an account.
func (s *userService) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	return s.profileRepo.Delete(ctx, userID)
}

// hashPassword hashes a password using bcrypt
func (s *userService) hashPassword(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// generateAccessToken generates a JWT access token with user ID and role claims
func (s *userService) generateAccessToken(profile *domain.Profile) (string, error) {
	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &Claims{
		UserID: profile.ID,
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *userService) generateRefreshToken(ctx context.Context, profile *domain.Profile) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    profile.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(RefreshTokenExpiration),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
