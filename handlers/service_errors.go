package handlers

import (
	"errors"
	"net/http"

	"github.com/greengalaxy/vr-gateway/services"
	"github.com/greengalaxy/vr-gateway/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	details := services.GetErrorDetails(err)
	message := errorMessage(err)

	var writeErr error
	switch {
	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, message)

	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, message, details)

	case services.IsUnauthorizedError(err):
		writeErr = utils.WriteUnauthorized(w, message)

	case services.IsUnavailableError(err):
		// Missing configuration is an operator problem, not a caller one
		logger.Warn("dependency unavailable", zap.Error(err))
		writeErr = utils.WriteServiceUnavailable(w, message)

	case services.IsExternalError(err):
		writeErr = utils.WriteBadGateway(w, message, details)

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}

// errorMessage returns the caller-facing message of a domain error without its cause
func errorMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
