package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/handlers/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: time.Second,
			CORSOrigins:     []string{"*"},
		},
		Repository: config.RepositoryConfig{Type: config.RepositoryInMemory},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			Issuer:    "task-manager",
		},
	}

	a, err := app.New(cfg).Init(t.Context())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a.Handler()
}

func call(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func signUpAndIn(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	creds := dto.CredentialsRequest{Username: username, Password: "password123"}

	w := call(t, h, http.MethodPost, "/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, h, http.MethodPost, "/auth/signin", "", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.SignInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestApp_TaskLifecycle(t *testing.T) {
	h := newTestApp(t)
	token := signUpAndIn(t, h, "alice")

	w := call(t, h, http.MethodPost, "/tasks", token, dto.CreateTaskRequest{Title: "Buy milk", Description: "2 liters"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "OPEN", created.Status)

	w = call(t, h, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", created.ID), token, map[string]string{"status": "DONE"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, h, http.MethodGet, "/tasks?status=DONE&search=milk", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Buy milk", listed[0].Title)

	w = call(t, h, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, h, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_OwnerIsolation(t *testing.T) {
	h := newTestApp(t)
	alice := signUpAndIn(t, h, "alice")
	bob := signUpAndIn(t, h, "bobby")

	w := call(t, h, http.MethodPost, "/tasks", alice, dto.CreateTaskRequest{Title: "secret", Description: "alice only"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	target := fmt.Sprintf("/tasks/%d", created.ID)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodGet, target, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, call(t, h, http.MethodDelete, target, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		call(t, h, http.MethodPatch, target+"/status", bob, map[string]string{"status": "DONE"}).Code)

	w = call(t, h, http.MethodGet, "/tasks", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	assert.Equal(t, http.StatusOK, call(t, h, http.MethodGet, target, alice, nil).Code)
}

func TestApp_AuthFailures(t *testing.T) {
	h := newTestApp(t)
	signUpAndIn(t, h, "alice")

	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/tasks", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, http.MethodGet, "/tasks", "not-a-jwt", nil).Code)

	w := call(t, h, http.MethodPost, "/auth/signup", "", dto.CredentialsRequest{Username: "alice", Password: "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, h, http.MethodPost, "/auth/signin", "", dto.CredentialsRequest{Username: "alice", Password: "wrongpass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, h, http.MethodPost, "/auth/signin", "", dto.CredentialsRequest{Username: "nobody", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApp_HealthAndRequestID(t *testing.T) {
	h := newTestApp(t)

	w := call(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
