package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"macrame-store/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Bring the schema up the same way the server does.
	if err := goose.SetDialect("postgres"); err != nil {
		return dbContainer.Terminate, err
	}
	if err := goose.Up(testDB, "../../migrations"); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

func TestProperty_StoredPasswordsAreNeverPlaintext(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("passwords round trip as bcrypt hashes, never plaintext", prop.ForAll(
		func(email string, password string, fullName string) bool {
			_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", email)

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				t.Logf("Failed to hash password: %v", err)
				return false
			}

			profile := &domain.Profile{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: string(hashedPassword),
				FullName:     fullName,
				Role:         domain.RoleCustomer,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}

			if err := repo.Create(ctx, profile); err != nil {
				t.Logf("Failed to create profile: %v", err)
				return false
			}

			retrieved, err := repo.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("Failed to find profile: %v", err)
				return false
			}

			if retrieved.PasswordHash == password {
				t.Logf("Password was stored as plaintext!")
				return false
			}

			if err := bcrypt.CompareHashAndPassword([]byte(retrieved.PasswordHash), []byte(password)); err != nil {
				t.Logf("Stored password is not a valid bcrypt hash: %v", err)
				return false
			}

			_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", email)

			return true
		},
		gen.RegexMatch(`[a-z]{5,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	email := "duplicate@example.com"
	_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", email)

	first := &domain.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash-1",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	second := &domain.Profile{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash-2",
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrProfileAlreadyExists) {
		t.Errorf("Expected ErrProfileAlreadyExists, got %v", err)
	}

	_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", email)
}

func TestRoleRoundTripsThroughStorage(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	for _, role := range []domain.Role{domain.RoleCustomer, domain.RoleAdmin, domain.RoleMasterAdmin} {
		profile := &domain.Profile{
			ID:           uuid.New(),
			Email:        "role-" + string(role) + "@example.com",
			PasswordHash: "hash",
			Role:         role,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		_, _ = testDB.Exec("DELETE FROM profiles WHERE email = $1", profile.Email)

		if err := repo.Create(ctx, profile); err != nil {
			t.Fatalf("Create with role %q failed: %v", role, err)
		}

		retrieved, err := repo.FindByID(ctx, profile.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if retrieved.Role != role {
			t.Errorf("Role %q did not round trip, got %q", role, retrieved.Role)
		}

		_, _ = testDB.Exec("DELETE FROM profiles WHERE id = $1", profile.ID)
	}
}

func TestCorruptRoleValueReadsAsCustomer(t *testing.T) {
	repo := NewProfileRepository(testDB)
	ctx := context.Background()

	id := uuid.New()
	_, err := testDB.Exec(`
		INSERT INTO profiles (id, email, password_hash, role)
		VALUES ($1, $2, 'hash', 'superuser')
	`, id, "corrupt-role@example.com")
	if err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
	defer testDB.Exec("DELETE FROM profiles WHERE id = $1", id)

	retrieved, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if retrieved.Role != domain.RoleCustomer {
		t.Errorf("Unknown stored role should read as customer, got %q", retrieved.Role)
	}
}
