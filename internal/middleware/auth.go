package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/user"

	"go.uber.org/zap"
)

// UserIDHeader carries the caller's id on every task request.
const UserIDHeader = "X-User-ID"

const UserIdKey contextKey = "user_id"

var ErrNoUser = errors.New("missing or invalid X-User-ID header")

type Authenticator interface {
	Authenticate(ctx context.Context, userID int64) (*user.User, error)
}

// RequireUser rejects requests without a known X-User-ID with 401 and
// stores the resolved id in the request context.
func RequireUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
			id, err := strconv.ParseInt(raw, 10, 64)
			if raw == "" || err != nil || id <= 0 {
				unauthorized(w, ErrNoUser.Error())
				return
			}

			if _, err := auth.Authenticate(r.Context(), id); err != nil {
				logger.Warn("HTTP: Неизвестный пользователь",
					zap.Int64("user_id", id),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				unauthorized(w, "unknown user")
				return
			}

			ctx := context.WithValue(r.Context(), UserIdKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIdKey).(int64)
	return id, ok
}

// WithUserID is used by handlers tests to bypass RequireUser.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserIdKey, id)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}
