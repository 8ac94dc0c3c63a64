package middleware

import (
	"context"
	"net/http"
	"strings"

	"loyalty-backend/internal/auth"
	"loyalty-backend/internal/repositories"
)

type contextKey string

const UserIDKey contextKey = "user_id"
const EmailKey contextKey = "email"
const RoleKey contextKey = "role"
const AgencyIDKey contextKey = "agency_id"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	userRepo   *repositories.UserRepository
	agencyRepo *repositories.AgencyRepository
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, userRepo *repositories.UserRepository, agencyRepo *repositories.AgencyRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		userRepo:   userRepo,
		agencyRepo: agencyRepo,
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate validates back-office JWT tokens
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		// Check database for current user status (immediate suspension)
		user, err := m.userRepo.Get(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}
		if !user.IsActive {
			http.Error(w, "Account suspended. Please contact administrator.", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		ctx = context.WithValue(ctx, EmailKey, user.Email)
		ctx = context.WithValue(ctx, RoleKey, user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateAgency validates storefront agency tokens
func (m *AuthMiddleware) AuthenticateAgency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateAgencyToken(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		agency, err := m.agencyRepo.Get(r.Context(), m.agencyRepo.DB, claims.AgencyID)
		if err != nil {
			http.Error(w, "Agency not found", http.StatusUnauthorized)
			return
		}
		if !agency.Active {
			http.Error(w, "Agency is not active", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), AgencyIDKey, agency.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAgency resolves the agency when a token is present but lets
// anonymous requests through. Catalog browsing uses it: anonymous
// visitors get the optimistic no-history eligibility view.
func (m *AuthMiddleware) OptionalAgency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if claims, err := m.jwtManager.ValidateAgencyToken(token); err == nil {
				ctx := context.WithValue(r.Context(), AgencyIDKey, claims.AgencyID)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole restricts a subrouter to one back-office role
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := GetRoleFromContext(r.Context())
			if !ok || got != role {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext extracts back-office user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetRoleFromContext extracts role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetAgencyIDFromContext extracts the agency ID from request context.
// ok is false for anonymous storefront requests.
func GetAgencyIDFromContext(ctx context.Context) (int64, bool) {
	agencyID, ok := ctx.Value(AgencyIDKey).(int64)
	return agencyID, ok
}
