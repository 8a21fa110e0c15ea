package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	minUsernameLen = 4
	maxUsernameLen = 20
	minPasswordLen = 8
	maxPasswordLen = 32

	maxBodyBytes = 1 << 20
)

var (
	errUnsupportedMediaType = errors.New("content type must be application/json")
	errBodyTooLarge         = errors.New("request body too large")
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON reads one JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if !checkContentType(r, "application/json") {
		return errUnsupportedMediaType
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errBodyTooLarge
		}
		if errors.Is(err, io.EOF) {
			return service.NewValidationError("body", "must not be empty")
		}
		return service.NewValidationError("body", "malformed JSON")
	}
	return nil
}

func parseCredentials(w http.ResponseWriter, r *http.Request) (service.Credentials, error) {
	var req dto.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return service.Credentials{}, err
	}

	username := strings.TrimSpace(req.Username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return service.Credentials{}, service.NewValidationError("username",
			fmt.Sprintf("must be between %d and %d characters", minUsernameLen, maxUsernameLen))
	}
	if n := utf8.RuneCountInString(req.Password); n < minPasswordLen || n > maxPasswordLen {
		return service.Credentials{}, service.NewValidationError("password",
			fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen))
	}

	return service.Credentials{Username: username, Password: req.Password}, nil
}

// parseCreateTask ignores any status in the body; new tasks are always OPEN.
func parseCreateTask(w http.ResponseWriter, r *http.Request) (service.CreateTaskInput, error) {
	var req dto.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return service.CreateTaskInput{}, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return service.CreateTaskInput{}, service.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(req.Description) == "" {
		return service.CreateTaskInput{}, service.NewValidationError("description", "must not be empty")
	}

	if req.Status != nil {
		logger.Debug("HTTP: ignoring status on create", zap.String("status", *req.Status))
	}

	return service.CreateTaskInput{Title: req.Title, Description: req.Description}, nil
}

func parseStatusUpdate(w http.ResponseWriter, r *http.Request) (task.Status, error) {
	var req dto.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", err
	}
	if req.Status == nil {
		return "", service.NewValidationError("status", "is required")
	}
	return parseStatus(*req.Status)
}

func parseStatus(raw string) (task.Status, error) {
	status := task.Status(raw)
	if !status.Valid() {
		return "", service.NewValidationError("status",
			fmt.Sprintf("%q is not one of %v", raw, task.Statuses()))
	}
	return status, nil
}

// parseTaskFilter reads ?search=&status=. A parameter that is present must be non-empty.
func parseTaskFilter(query url.Values) (task.Filter, error) {
	var filter task.Filter

	if query.Has("search") {
		search := query.Get("search")
		if search == "" {
			return task.Filter{}, service.NewValidationError("search", "must not be empty")
		}
		if !utf8.ValidString(search) {
			return task.Filter{}, service.NewValidationError("search", "must be valid UTF-8")
		}
		filter.Search = &search
	}

	if query.Has("status") {
		status, err := parseStatus(query.Get("status"))
		if err != nil {
			return task.Filter{}, err
		}
		filter.Status = &status
	}

	return filter, nil
}

func parseTaskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
