package http

import (
	"errors"
	"net/http"

	"github.com/Saatvik786/TaskSphere/internal/domain"
	"github.com/Saatvik786/TaskSphere/internal/log"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail writes err as {"error": msg}. missing is the message used for domain.ErrMissingFields.
// Anything outside the domain taxonomy is logged and returned as a bare 500.
func (h *Handler) fail(c *gin.Context, err error, missing string) {
	code, msg := classify(err)
	if code == http.StatusBadRequest && errors.Is(err, domain.ErrMissingFields) && missing != "" {
		msg = missing
	}
	if code >= http.StatusInternalServerError {
		log.WithDD(c.Request.Context(), h.log(),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("route", c.FullPath()),
		).Error("request failed", zap.Error(err))
		if h.ExposeErrDetail {
			c.AbortWithStatusJSON(code, gin.H{"error": msg, "detail": err.Error()})
			return
		}
	}
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "missing required fields"
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUseExternalLogin):
		return http.StatusUnauthorized, "Please login with Google"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, "Not authorized, token expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Not authorized, token failed"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Not authorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Not authorized to access this resource"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "Service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}
