package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"macrame-store/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, secret, userID, role string, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}

func TestProperty_RequestsWithoutTokenAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			logger, _ := zap.NewDevelopment()
			middleware := AuthMiddleware("test-secret", logger)

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			path := "/" + pathSuffix
			if path == "/" {
				path = "/test"
			}

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("expired tokens are rejected with 401", prop.ForAll(
		func(userID string, role string) bool {
			logger, _ := zap.NewDevelopment()
			secret := "test-secret"
			middleware := AuthMiddleware(secret, logger)

			tokenString := signedToken(t, secret, userID, role, -time.Hour)

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AnyString(),
		gen.OneConstOf("customer", "admin", "master_admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidTokensPutIdentityInContext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens pass through with user ID and parsed role", prop.ForAll(
		func(userID string, roleString string) bool {
			logger, _ := zap.NewDevelopment()
			secret := "test-secret"
			middleware := AuthMiddleware(secret, logger)

			tokenString := signedToken(t, secret, userID, roleString, time.Hour)

			var gotUserID string
			var gotRole domain.Role
			handlerCalled := false

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				gotUserID, _ = GetUserID(r.Context())
				gotRole, _ = GetUserRole(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusOK &&
				handlerCalled &&
				gotUserID == userID &&
				gotRole == domain.ParseRole(roleString)
		},
		gen.Identifier(),
		gen.OneConstOf("customer", "admin", "master_admin", "something-else"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestTokenSignedWithWrongSecretIsRejected(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := AuthMiddleware("right-secret", logger)

	tokenString := signedToken(t, "wrong-secret", "user-1", "customer", time.Hour)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a token with a wrong signature, got %d", w.Code)
	}
}

func TestOptionalAuthPassesAnonymousRequestsThrough(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := OptionalAuthMiddleware("test-secret", logger)

	var hadIdentity bool
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadIdentity = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Anonymous request should pass through, got %d", w.Code)
	}
	if hadIdentity {
		t.Error("Anonymous request should carry no identity")
	}
}

func TestOptionalAuthStillRejectsBadTokens(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := OptionalAuthMiddleware("test-secret", logger)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("A present but invalid token should still be rejected, got %d", w.Code)
	}
}
