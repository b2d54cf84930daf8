package handler

import (
	"context"
	"net/http"
	"time"

	"invoice-service/pkg/database"
	"invoice-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	service string
	db      *gorm.DB
}

func NewHealthHandler(service string, db *gorm.DB) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// HealthCheck handles GET /health. With ?check=db it also pings the database.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	body := echo.Map{
		"status":  "healthy",
		"service": h.service,
	}
	if c.QueryParam("check") != "db" {
		return c.JSON(http.StatusOK, body)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, h.db); err != nil {
		logger.FromEcho(c).Error("Database health check failed", zap.Error(err))
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, body)
	}
	body["database"] = "ok"
	return c.JSON(http.StatusOK, body)
}
