package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"

	"go.uber.org/zap"
)

type AuthHandler struct {
	UserService UserService
}

func NewAuthHandler(userService UserService) *AuthHandler {
	return &AuthHandler{UserService: userService}
}

// SignUp registers a new account: 201 on success, 409 when the username is taken.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	creds, err := parseCredentials(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	u, err := h.UserService.SignUp(r.Context(), creds)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: user signed up",
		zap.String("request_id", requestID),
		zap.Int64("user_id", u.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.UserResponse{ID: u.ID, Username: u.Username})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	creds, err := parseCredentials(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	token, err := h.UserService.SignIn(r.Context(), creds)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: user signed in",
		zap.String("request_id", requestID),
		zap.String("username", creds.Username),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.SignInResponse{AccessToken: token})
}
