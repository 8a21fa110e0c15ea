package handlers

import (
	"errors"
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

// handleError writes err as a JSON error body. Internal details are logged,
// never returned.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	if errors.Is(err, errUnsupportedMediaType) {
		logger.Warn("HTTP: wrong content type",
			zap.String("request_id", requestID),
			zap.String("received", r.Header.Get("Content-Type")))
		responseWithError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	if errors.Is(err, errBodyTooLarge) {
		logger.Warn("HTTP: request body too large",
			zap.String("request_id", requestID),
			zap.Int64("limit", maxBodyBytes))
		responseWithError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) || businessErr.Code == service.CodeInternal {
		logger.Error("HTTP: internal error", err,
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path))
		responseWithJSON(w, http.StatusInternalServerError,
			toPayload("error", service.CodeInternal),
			toPayload("message", "internal server error"),
		)
		return
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: business error",
		zap.String("request_id", requestID),
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	payload := []Payload{
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
	}
	if len(businessErr.Details) > 0 {
		payload = append(payload, toPayload("details", businessErr.Details))
	}
	responseWithJSON(w, statusCode, payload...)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
