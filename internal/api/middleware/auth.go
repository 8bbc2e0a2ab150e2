package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/dashlist/internal/auth"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "userID"
	// UserEmailKey is the context key for user email
	UserEmailKey ContextKey = "email"
	// UserRoleKey is the context key for the user role
	UserRoleKey ContextKey = "role"
	// UserPermsKey is the context key for the permissions the role grants
	UserPermsKey ContextKey = "perms"
)

// PermissionResolver looks up the permissions a role grants on a view
type PermissionResolver interface {
	ViewPermissions(ctx context.Context, role, view string) ([]string, error)
}

// AuthMiddleware returns a middleware that validates JWT access tokens
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := auth.ParseClaims(tokenStr, jwtSecret, auth.KindAccess)
			if err != nil {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(w, r.Context(), claims)))
		})
	}
}

// OptionalAuthMiddleware is like AuthMiddleware but doesn't reject requests without tokens
func OptionalAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := tokenFromRequest(r); tokenStr != "" {
				if claims, err := auth.ParseClaims(tokenStr, jwtSecret, auth.KindAccess); err == nil {
					r = r.WithContext(withClaims(w, r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole rejects callers whose role is not one of roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(UserRoleKey).(string)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteError(w, errors.Forbidden("Insufficient permissions"))
		})
	}
}

// ResolvePermissions loads the permissions the caller's role grants on view.
// Requests without a role pass through unchanged.
func ResolvePermissions(resolver PermissionResolver, view string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(UserRoleKey).(string)
			if role == "" {
				next.ServeHTTP(w, r)
				return
			}

			perms, err := resolver.ViewPermissions(r.Context(), role, view)
			if err != nil {
				utils.WriteError(w, errors.As(err, "Failed to resolve permissions"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserPermsKey, perms)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

func withClaims(w http.ResponseWriter, ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)

	// Add audit info to logs
	AddLogField(w, "user_id", claims.UserID)
	AddLogField(w, "role", claims.Role)
	return ctx
}

// GetUserID extracts the user ID from the request context
func GetUserID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(UserIDKey).(int64)
	return userID, ok
}

// GetUserEmail extracts the user email from the request context
func GetUserEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(UserEmailKey).(string)
	return email, ok
}

// GetActor returns the authenticated caller. Anonymous requests yield the
// zero Actor.
func GetActor(r *http.Request) user.Actor {
	userID, _ := GetUserID(r)
	role, _ := r.Context().Value(UserRoleKey).(string)
	perms, _ := r.Context().Value(UserPermsKey).([]string)
	return user.Actor{UserID: userID, Role: role, Perms: perms}
}
