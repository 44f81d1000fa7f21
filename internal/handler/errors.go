package handler

import (
	"net/http"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/middleware"
	"github.com/Goh0809/Eventora-Backend/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status and envelope code
func statusFor(kind domain.Kind) (int, string) {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case domain.KindConflict:
		return http.StatusConflict, "CONFLICT"
	case domain.KindCapacityExceeded:
		return http.StatusConflict, "CAPACITY_EXCEEDED"
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case domain.KindForbidden:
		return http.StatusForbidden, "FORBIDDEN"
	case domain.KindValidation:
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case domain.KindConfiguration:
		return http.StatusBadRequest, "CONFIGURATION_ERROR"
	case domain.KindUpstream:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// handleError writes the envelope for a service error. Internal causes are logged, never returned.
func handleError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, code := statusFor(kind)

	if status >= http.StatusInternalServerError {
		logger.Get().WithContext(c.Request.Context()).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}

	response.Error(c, status, code, domain.MessageOf(err), "")
}

// bindError answers 400 for a request that failed binding or validation
func bindError(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
}

// requireUser returns the authenticated user id or writes 401
func requireUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Could not validate credentials")
		return "", false
	}
	return userID, true
}
