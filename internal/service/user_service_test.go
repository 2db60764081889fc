package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"macrame-store/internal/domain"
	"macrame-store/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeProfileRepository is an in-memory ProfileRepository.
type fakeProfileRepository struct {
	profiles map[uuid.UUID]*domain.Profile
}

func newFakeProfileRepository() *fakeProfileRepository {
	return &fakeProfileRepository{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (f *fakeProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	for _, p := range f.profiles {
		if p.Email == profile.Email {
			return repository.ErrProfileAlreadyExists
		}
	}
	clone := *profile
	f.profiles[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepository) FindByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	out := []*domain.Profile{}
	for _, p := range f.profiles {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	if _, ok := f.profiles[profile.ID]; !ok {
		return repository.ErrProfileNotFound
	}
	clone := *profile
	f.profiles[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	p, ok := f.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.PasswordHash = passwordHash
	return nil
}

func (f *fakeProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.profiles[id]; !ok {
		return repository.ErrProfileNotFound
	}
	delete(f.profiles, id)
	return nil
}

// fakeRefreshTokenRepository is an in-memory RefreshTokenRepository.
type fakeRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newFakeRefreshTokenRepository() *fakeRefreshTokenRepository {
	return &fakeRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (f *fakeRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	clone := *token
	f.tokens[token.Token] = &clone
	return nil
}

func (f *fakeRefreshTokenRepository) FindByToken(ctx context.Context, tokenString string) (*domain.RefreshToken, error) {
	t, ok := f.tokens[tokenString]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if t.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	clone := *t
	return &clone, nil
}

func (f *fakeRefreshTokenRepository) Revoke(ctx context.Context, tokenString string) error {
	t, ok := f.tokens[tokenString]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	t.Revoked = true
	return nil
}

// fakeResetTokenRepository is an in-memory ResetTokenRepository.
type fakeResetTokenRepository struct {
	tokens map[string]*domain.PasswordResetToken
}

func newFakeResetTokenRepository() *fakeResetTokenRepository {
	return &fakeResetTokenRepository{tokens: make(map[string]*domain.PasswordResetToken)}
}

func (f *fakeResetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	clone := *token
	f.tokens[token.Token] = &clone
	return nil
}

func (f *fakeResetTokenRepository) FindByToken(ctx context.Context, tokenString string) (*domain.PasswordResetToken, error) {
	t, ok := f.tokens[tokenString]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}
	if t.Used {
		return nil, repository.ErrResetTokenUsed
	}
	clone := *t
	return &clone, nil
}

func (f *fakeResetTokenRepository) MarkUsed(ctx context.Context, tokenString string) error {
	t, ok := f.tokens[tokenString]
	if !ok {
		return repository.ErrResetTokenNotFound
	}
	t.Used = true
	return nil
}

type userServiceFixture struct {
	svc      UserService
	profiles *fakeProfileRepository
	refresh  *fakeRefreshTokenRepository
	reset    *fakeResetTokenRepository
	mailer   *fakeMailer
}

func newUserServiceFixture() *userServiceFixture {
	profiles := newFakeProfileRepository()
	refresh := newFakeRefreshTokenRepository()
	reset := newFakeResetTokenRepository()
	mailer := &fakeMailer{}
	logger, _ := zap.NewDevelopment()

	return &userServiceFixture{
		svc:      NewUserService(profiles, refresh, reset, mailer, "test-secret", logger),
		profiles: profiles,
		refresh:  refresh,
		reset:    reset,
		mailer:   mailer,
	}
}

func TestProperty_RegisteredPasswordsAreHashed(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stored hash verifies against the original password and is never the password itself", prop.ForAll(
		func(password string) bool {
			f := newUserServiceFixture()
			profile, err := f.svc.Register(context.Background(), "user@example.com", password, "Test User", "")
			if err != nil {
				return false
			}

			if profile.PasswordHash == password {
				return false
			}

			return bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) == nil
		},
		// Passwords inside the accepted range: 8 up to the bcrypt
		// input limit of 72 bytes.
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,72}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegisterRejectsOverlongPassword(t *testing.T) {
	f := newUserServiceFixture()

	tooLong := strings.Repeat("a", MaxPasswordLength+1)
	_, err := f.svc.Register(context.Background(), "user@example.com", tooLong, "Test User", "")
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Expected ErrPasswordTooLong, got %v", err)
	}

	// Nothing was stored for the rejected registration.
	if _, err := f.profiles.FindByEmail(context.Background(), "user@example.com"); !errors.Is(err, repository.ErrProfileNotFound) {
		t.Errorf("Rejected registration should not create a profile, got %v", err)
	}
}

func TestPasswordAtTheLengthLimitIsAccepted(t *testing.T) {
	f := newUserServiceFixture()

	limit := strings.Repeat("a", MaxPasswordLength)
	profile, err := f.svc.Register(context.Background(), "user@example.com", limit, "Test User", "")
	if err != nil {
		t.Fatalf("Register at the length limit failed: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(limit)); err != nil {
		t.Errorf("Stored hash does not verify: %v", err)
	}
}

func TestResetPasswordRejectsOverlongPassword(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "user@example.com", "password123", "Test User", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := f.svc.RequestPasswordReset(ctx, "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}

	var token string
	for _, rt := range f.reset.tokens {
		token = rt.Token
	}
	if token == "" {
		t.Fatal("No reset token was stored")
	}

	tooLong := strings.Repeat("a", MaxPasswordLength+1)
	if err := f.svc.ResetPassword(ctx, token, tooLong); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Expected ErrPasswordTooLong, got %v", err)
	}

	// The old password still works after the rejected reset.
	if _, _, _, err := f.svc.Login(ctx, "user@example.com", "password123"); err != nil {
		t.Errorf("Old password should still work, got %v", err)
	}
}

func TestRegisterDefaultsToCustomerRole(t *testing.T) {
	f := newUserServiceFixture()

	profile, err := f.svc.Register(context.Background(), "user@example.com", "password123", "Test User", "11 99999-0000")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if profile.Role != domain.RoleCustomer {
		t.Errorf("Expected customer role, got %q", profile.Role)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "user@example.com", "password123", "First", ""); err != nil {
		t.Fatalf("First register failed: %v", err)
	}

	_, err := f.svc.Register(ctx, "user@example.com", "password456", "Second", "")
	if !errors.Is(err, repository.ErrProfileAlreadyExists) {
		t.Errorf("Expected ErrProfileAlreadyExists, got %v", err)
	}
}

func TestLoginIssuesTokensWithRoleClaim(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, "user@example.com", "password123", "Test User", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	accessToken, refreshToken, profile, err := f.svc.Login(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if accessToken == "" || refreshToken == "" {
		t.Fatal("Expected both tokens to be issued")
	}
	if profile.ID != registered.ID {
		t.Errorf("Login returned wrong profile: %s", profile.ID)
	}

	claims, err := f.svc.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("Claims carry wrong user ID: %s", claims.UserID)
	}
	if claims.Role != domain.RoleCustomer {
		t.Errorf("Claims carry wrong role: %q", claims.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "user@example.com", "password123", "Test User", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, _, _, err := f.svc.Login(ctx, "user@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}

	_, _, _, err = f.svc.Login(ctx, "nobody@example.com", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Unknown email should also yield ErrInvalidCredentials, got %v", err)
	}
}

func TestRefreshAfterLogoutIsRejected(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, "user@example.com", "password123", "Test User", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, refreshToken, _, err := f.svc.Login(ctx, "user@example.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := f.svc.RefreshToken(ctx, refreshToken); err != nil {
		t.Fatalf("Refresh before logout should succeed: %v", err)
	}

	if err := f.svc.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := f.svc.RefreshToken(ctx, refreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh after logout should fail with ErrInvalidToken, got %v", err)
	}

	// Logging out again counts as already logged out.
	if err := f.svc.Logout(ctx, refreshToken); err != nil {
		t.Errorf("Second logout should succeed, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, "user@example.com", "old-password", "Test User", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := f.svc.RequestPasswordReset(ctx, "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("Expected one reset email, got %d", len(f.mailer.sent))
	}

	var resetToken string
	for token, stored := range f.reset.tokens {
		if stored.UserID == registered.ID {
			resetToken = token
		}
	}
	if resetToken == "" {
		t.Fatal("No reset token was stored")
	}

	if err := f.svc.ResetPassword(ctx, resetToken, "new-password"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}

	if _, _, _, err := f.svc.Login(ctx, "user@example.com", "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("Old password should no longer work")
	}
	if _, _, _, err := f.svc.Login(ctx, "user@example.com", "new-password"); err != nil {
		t.Errorf("New password should work, got %v", err)
	}

	// The token is single use.
	if err := f.svc.ResetPassword(ctx, resetToken, "another-password"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Reusing a reset token should fail with ErrInvalidToken, got %v", err)
	}
}

func TestPasswordResetUnknownEmailDoesNotLeak(t *testing.T) {
	f := newUserServiceFixture()

	if err := f.svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Errorf("Unknown email should be treated as success, got %v", err)
	}
	if len(f.mailer.sent) != 0 {
		t.Error("No email should go out for an unknown address")
	}
	if len(f.reset.tokens) != 0 {
		t.Error("No token should be stored for an unknown address")
	}
}

func TestExpiredResetTokenIsRejected(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, "user@example.com", "password123", "Test User", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	expired := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    registered.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	if err := f.reset.Create(ctx, expired); err != nil {
		t.Fatalf("Failed to seed token: %v", err)
	}

	if err := f.svc.ResetPassword(ctx, "expired-token", "new-password"); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}
