package handlers

import (
	"context"
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

const serviceName = "task-manager"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// currentUser returns the user placed in the context by middleware.Authenticate.
func currentUser(ctx context.Context) (*user.User, error) {
	u, ok := middleware.UserFromContext(ctx)
	if !ok {
		return nil, service.NewUnauthorized("authentication required")
	}
	return u, nil
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	owner, err := currentUser(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		handleError(w, r, err)
		return
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), owner, filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.String("request_id", requestID),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	owner, err := currentUser(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), id, owner)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task fetched",
		zap.String("request_id", requestID),
		zap.Int64("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	owner, err := currentUser(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	in, err := parseCreateTask(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	t, err := h.TaskService.CreateTask(r.Context(), in, owner)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.String("request_id", requestID),
		zap.Int64("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	owner, err := currentUser(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	status, err := parseStatusUpdate(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	t, err := h.TaskService.UpdateTaskStatus(r.Context(), id, status, owner)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task status updated",
		zap.String("request_id", requestID),
		zap.Int64("task_id", t.ID),
		zap.String("status", string(t.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	owner, err := currentUser(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id, owner); err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.String("request_id", requestID),
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck reports 503 when the task store is unreachable.
func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err,
			zap.String("request_id", middleware.GetRequestID(r.Context())))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}
