package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/pkg/jwtutil"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	ownerIDKey = "user_id"
	emailKey   = "email"
	ownerKey   = "owner"
)

// JWTAuthMiddleware validates the bearer token and stores the owner id and
// email in the context.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return unauthorized(c, "missing_token", "Missing authorization header")
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_header")
				return unauthorized(c, "invalid_token", "Invalid authorization header format")
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return unauthorized(c, "invalid_token", "Invalid or expired token")
			}

			c.Set(ownerIDKey, claims.UserID)
			c.Set(emailKey, claims.Email)
			logger.Attach(c, log.With(zap.Uint("owner_id", claims.UserID)))

			return next(c)
		}
	}
}

func unauthorized(c echo.Context, code, message string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": code, "message": message})
}

// OwnerLoader finds an owner by id.
type OwnerLoader interface {
	GetOwner(ctx context.Context, id uint) (*model.Owner, error)
}

// RequireProfile lets a request through only when the signed-in owner exists
// and has set up a business profile. The owner is loaded on every request so
// a profile completed a moment ago is seen immediately.
func RequireProfile(owners OwnerLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			id, ok := OwnerID(c)
			if !ok {
				return unauthorized(c, "invalid_token", "Not signed in")
			}

			owner, err := owners.GetOwner(c.Request().Context(), id)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				log.Error("Failed to load owner", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "unavailable", "message": "try again later"})
			}
			if err != nil || !owner.ProfileComplete() {
				gate := apperr.ProfileIncomplete().(*apperr.AuthError)
				log.Info("Profile incomplete, redirecting to setup")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":    gate.Code,
					"message":  gate.Message,
					"redirect": gate.Redirect,
				})
			}

			c.Set(ownerKey, owner)
			return next(c)
		}
	}
}

// OwnerID is the id of the signed-in owner.
func OwnerID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ownerIDKey).(uint)
	return id, ok && id != 0
}

// Owner is the owner loaded by RequireProfile.
func Owner(c echo.Context) (*model.Owner, bool) {
	o, ok := c.Get(ownerKey).(*model.Owner)
	return o, ok
}
