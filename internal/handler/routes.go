package handler

import (
	"time"

	"invoice-service/internal/middleware"
	"invoice-service/internal/oauth"
	"invoice-service/internal/repository"
	"invoice-service/internal/service"
	"invoice-service/pkg/jwtutil"
	"invoice-service/prometheus"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are what the routes need from the process.
type Dependencies struct {
	ServiceName   string
	DB            *gorm.DB
	JWT           *jwtutil.JWTUtil
	Google        oauth.Provider
	FrontendURL   string
	SecureCookies bool
	// MetricsPath mounts the Prometheus handler; empty leaves it off.
	MetricsPath string
	// Now overrides the clock for quotations and analytics; nil means time.Now.
	Now func() time.Time
}

// RegisterRoutes installs the validator and every route on e.
func RegisterRoutes(e *echo.Echo, d Dependencies) {
	e.Validator = NewValidator()

	repo := repository.New(d.DB)
	quotations := service.NewQuotationService(repo)
	dashboards := service.NewAnalyticsService(repo)
	if d.Now != nil {
		quotations.WithClock(d.Now)
		dashboards.WithClock(d.Now)
	}

	health := NewHealthHandler(d.ServiceName, d.DB)
	auth := NewAuthHandler(service.NewAuthService(repo, d.JWT), d.Google, d.FrontendURL, d.SecureCookies)
	profile := NewProfileHandler(service.NewProfileService(repo))
	customers := NewCustomerHandler(service.NewCustomerService(repo))
	items := NewItemHandler(service.NewItemService(repo))
	banks := NewBankHandler(service.NewBankService(repo))
	quotation := NewQuotationHandler(quotations)
	analytics := NewAnalyticsHandler(dashboards)

	// Public routes
	e.GET("/health", health.HealthCheck)
	if d.MetricsPath != "" {
		e.GET(d.MetricsPath, echo.WrapHandler(prometheus.GetPrometheusHandler()))
	}

	authGroup := e.Group("/auth")
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.GET("/google", auth.GoogleStart)
	authGroup.GET("/google/callback", auth.GoogleCallback)

	// Signed-in routes
	api := e.Group("/api", middleware.JWTAuthMiddleware(d.JWT))
	api.GET("/profile", profile.Get)
	api.PUT("/profile", profile.Update)

	// Everything else needs a completed business profile
	gated := api.Group("", middleware.RequireProfile(repo))

	gated.POST("/customers", customers.Create)
	gated.GET("/customers", customers.List)
	gated.GET("/customers/:phone", customers.Get)
	gated.PUT("/customers/:phone", customers.Update)

	gated.POST("/items", items.Create)
	gated.GET("/items", items.List)
	gated.PUT("/items/:name", items.Update)
	gated.DELETE("/items/:name", items.Delete)

	gated.POST("/bank-details", banks.Create)
	gated.GET("/bank-details", banks.List)
	gated.DELETE("/bank-details/:id", banks.Delete)

	gated.POST("/quotation/data", quotation.Create)
	gated.POST("/quotation/totals", quotation.Preview)
	gated.GET("/quotation", quotation.List)
	gated.GET("/quotation/next-number", quotation.NextNumber)
	gated.GET("/quotation/getdata/:number", quotation.Get)
	gated.GET("/quotation/:number/pdf", quotation.PDF)
	gated.POST("/quotation/:number/reminders", quotation.AddReminder)

	gated.GET("/analytics/dashboard", analytics.Dashboard)
	gated.GET("/analytics/export", analytics.Export)
	gated.PATCH("/analytics/update-payment-status", quotation.UpdatePaymentStatus)
}
