// Package handler exposes the services over HTTP with echo.
package handler

import (
	"errors"
	"net/http"

	"invoice-service/internal/apperr"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError writes err as {"error": code, "message": text} with the status
// its class maps to. Unknown errors become 500 without leaking detail.
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		duplicate  *apperr.DuplicateError
		transition *apperr.InvalidTransitionError
		auth       *apperr.AuthError
		upstream   *apperr.UpstreamError
		httpErr    *echo.HTTPError
	)
	switch {
	case errors.As(err, &validation):
		body := echo.Map{"error": "validation_failed", "message": err.Error()}
		if validation.Field != "" {
			body["field"] = validation.Field
		}
		log.Info("Request rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
	case errors.As(err, &duplicate):
		log.Info("Duplicate rejected", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate", "message": err.Error()})
	case errors.As(err, &transition):
		log.Info("Status transition rejected", zap.String("from", transition.From), zap.String("to", transition.To))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "invalid_transition",
			"message": err.Error(),
			"from":    transition.From,
			"to":      transition.To,
		})
	case errors.As(err, &auth):
		if auth.Redirect != "" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": auth.Code, "message": auth.Message, "redirect": auth.Redirect})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.Code, "message": auth.Message})
	case errors.As(err, &upstream):
		log.Error("Upstream unavailable", zap.String("op", upstream.Op), zap.Error(upstream.Err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "unavailable", "message": "service temporarily unavailable, try again"})
	case errors.As(err, &httpErr):
		return c.JSON(httpErr.Code, echo.Map{"error": "bad_request", "message": http.StatusText(httpErr.Code)})
	}

	log.Error("Unhandled error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "internal server error"})
}
