package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rewear-app/rewear/internal/auth"
	"github.com/rewear-app/rewear/internal/model"
	"github.com/rewear-app/rewear/internal/store"
)

type contextKey string

const identityKey contextKey = "identity"

// resolveIdentity validates the bearer token from the Authorization
// header and loads the matching user. Returns (nil, "") with an empty
// message only when no credentials were presented at all.
func resolveIdentity(r *http.Request, secret string, db *sql.DB) (*model.User, int, string) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, http.StatusUnauthorized, "no token provided"
	}

	claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, http.StatusUnauthorized, "token expired"
		}
		return nil, http.StatusUnauthorized, "invalid token"
	}

	user, err := store.GetUser(r.Context(), db, claims.UserID)
	if err != nil {
		slog.Error("loading identity", "error", err)
		return nil, http.StatusInternalServerError, "authentication failed"
	}
	if user == nil {
		return nil, http.StatusUnauthorized, "invalid token - user not found"
	}
	if user.Banned {
		return nil, http.StatusForbidden, "account suspended"
	}

	return user, 0, ""
}

// AuthMiddleware requires a valid bearer token and attaches the
// resolved identity to the request context.
func AuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, status, message := resolveIdentity(r, secret, db)
			if user == nil {
				jsonError(w, status, message)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware resolves an identity when a valid token is
// presented, but never fails the request: missing, invalid, or expired
// credentials just yield an anonymous request.
func OptionalAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, _, _ := resolveIdentity(r, secret, db); user != nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose resolved identity is not an
// administrator. Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := Identity(r.Context())
		if user == nil {
			jsonError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !user.IsAdmin {
			jsonError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Identity retrieves the resolved user from the context, or nil.
func Identity(ctx context.Context) *model.User {
	user, _ := ctx.Value(identityKey).(*model.User)
	return user
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request", "method", r.Method, "path", r.URL.RequestURI(), "status", rec.status, "duration", time.Since(start).Round(time.Millisecond))
	})
}
