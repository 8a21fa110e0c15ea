package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

const userKey contextKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*user.User, error)
}

// Authenticate rejects the request with 401 unless it carries a valid
// bearer token whose user still exists. The user is stored in the context.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token, ok := bearerToken(r)
			if !ok {
				logger.Warn("HTTP: missing bearer token",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path))
				writeAuthError(w, r, http.StatusUnauthorized, service.CodeUnauthorized, "missing access token")
				return
			}

			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				var busErr *service.BusinessError
				if errors.As(err, &busErr) && busErr.Code == service.CodeUnauthorized {
					writeAuthError(w, r, http.StatusUnauthorized, service.CodeUnauthorized, busErr.Message)
					return
				}
				logger.Error("HTTP: authentication failed", err, zap.String("request_id", requestID))
				writeAuthError(w, r, http.StatusInternalServerError, service.CodeInternal, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="tasks"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      errCode,
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}

func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok && u != nil
}
