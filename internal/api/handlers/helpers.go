package handlers

import (
	"context"
	"errors"
	"freightflow/internal/platform/httpx"
	"freightflow/internal/platform/obs"
	"freightflow/internal/ports"
	"freightflow/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service and adapter errors to HTTP status codes.
func statusFor(err error) int {
	var se *httpx.StatusError
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		return http.StatusBadRequest

	case errors.Is(err, ports.ErrNoSnapshot):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, services.ErrDirections),
		errors.Is(err, services.ErrNoRoutes),
		errors.Is(err, services.ErrTooManyRoutes),
		errors.As(err, &se):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. Internal errors are logged and
// hidden from the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed",
				zap.String("req_id", obs.RequestID(c.Request.Context())),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
		msg = "internal server error"
	}
	c.JSON(code, ErrorResponse{Error: msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
