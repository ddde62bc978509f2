package handlers

import (
	"errors"
	"net/http"

	"taskBoard/internal/logger"
	"taskBoard/internal/service"

	"go.uber.org/zap"
)

// handleError writes the error response for err and logs it under op.
func handleError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", op),
			zap.String("error_code", businessErr.Code),
			zap.String("message", businessErr.Message),
			zap.Int("http_status", statusCode))

		responseWithError(w, statusCode, businessErr.Message, businessErr.Code)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", op),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "internal server error", codeInternal)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeConflict:
		return http.StatusConflict
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
