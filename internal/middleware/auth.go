package middleware

import (
	"context"
	"net/http"
	"strings"

	"macrame-store/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

// AuthMiddleware validates JWT tokens and puts the user identity and
// role into the request context.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := parts[1]

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if err == jwt.ErrTokenExpired {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid {
				logger.Debug("Invalid token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				logger.Error("Failed to extract claims from token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				logger.Error("Missing user_id in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			roleString, ok := claims["role"].(string)
			if !ok {
				logger.Error("Missing role in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, domain.ParseRole(roleString))

			logger.Debug("User authenticated",
				zap.String("user_id", userID),
				zap.String("role", roleString),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware behaves like AuthMiddleware when a valid
// Bearer token is present and passes the request through untouched
// otherwise. Cart routes use it so one route tree serves both
// anonymous and authenticated sessions.
func OptionalAuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	authenticate := AuthMiddleware(jwtSecret, logger)
	return func(next http.Handler) http.Handler {
		authed := authenticate(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the user ID from the request context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts the user role from the request context.
func GetUserRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(domain.Role)
	return role, ok
}
