package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"invoice-service/internal/analytics"
	"invoice-service/internal/apperr"
	"invoice-service/internal/repository"
	"invoice-service/internal/service"

	"github.com/labstack/echo/v4"
)

type QuotationHandler struct {
	quotations *service.QuotationService
}

func NewQuotationHandler(quotations *service.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotations: quotations}
}

func numberParam(c echo.Context) (int64, error) {
	n, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.Validation("number", "%q is not a quotation number", c.Param("number"))
	}
	return n, nil
}

// Create handles POST /api/quotation/data
func (h *QuotationHandler) Create(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CreateQuotationInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	v, err := h.quotations.Create(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Get handles GET /api/quotation/getdata/:number
func (h *QuotationHandler) Get(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	number, err := numberParam(c)
	if err != nil {
		return respondError(c, err)
	}
	v, err := h.quotations.Get(c.Request().Context(), id, number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

type listQuery struct {
	CustomerID uint   `query:"customer_id"`
	From       string `query:"from"`
	To         string `query:"to"`
}

// List handles GET /api/quotation?customer_id=&from=&to= with dates as
// YYYY-MM-DD; to is inclusive.
func (h *QuotationHandler) List(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return respondError(c, apperr.Validation("", "malformed query"))
	}
	f := repository.QuotationFilter{CustomerID: q.CustomerID}
	if q.From != "" {
		if f.From, err = time.Parse(time.DateOnly, q.From); err != nil {
			return respondError(c, apperr.Validation("from", "expected YYYY-MM-DD, got %q", q.From))
		}
	}
	if q.To != "" {
		to, err := time.Parse(time.DateOnly, q.To)
		if err != nil {
			return respondError(c, apperr.Validation("to", "expected YYYY-MM-DD, got %q", q.To))
		}
		f.To = to.AddDate(0, 0, 1)
	}
	views, err := h.quotations.List(c.Request().Context(), id, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

// NextNumber handles GET /api/quotation/next-number
func (h *QuotationHandler) NextNumber(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	n, err := h.quotations.NextNumber(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"next_number": n})
}

// Preview handles POST /api/quotation/totals
func (h *QuotationHandler) Preview(c echo.Context) error {
	var req service.PreviewInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	sum, err := h.quotations.Preview(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// PDF handles GET /api/quotation/:number/pdf?template=
func (h *QuotationHandler) PDF(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	number, err := numberParam(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.quotations.RenderPDF(c.Request().Context(), id, number, c.QueryParam("template"))
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=quotation-%d.pdf", number))
	return c.Blob(http.StatusOK, "application/pdf", out)
}

// AddReminder handles POST /api/quotation/:number/reminders
func (h *QuotationHandler) AddReminder(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	number, err := numberParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ReminderInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	rem, err := h.quotations.AddReminder(c.Request().Context(), id, number, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, rem)
}

// UpdatePaymentStatus handles PATCH /api/analytics/update-payment-status
func (h *QuotationHandler) UpdatePaymentStatus(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.PaymentUpdateInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	v, err := h.quotations.UpdatePaymentStatus(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(a *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: a}
}

func bindFilter(c echo.Context) (analytics.Filter, error) {
	var f analytics.Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return f, apperr.Validation("", "year and month must be numbers")
	}
	return f, nil
}

// Dashboard handles GET /api/analytics/dashboard?year=&month=
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	f, err := bindFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	sum, err := h.analytics.Dashboard(c.Request().Context(), id, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// Export handles GET /api/analytics/export?year=&month=
func (h *AnalyticsHandler) Export(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	f, err := bindFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	out, name, err := h.analytics.Export(c.Request().Context(), id, f)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+name)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}
