package handler

import (
	"net/http"
	"strconv"

	"invoice-service/internal/apperr"
	"invoice-service/internal/middleware"
	"invoice-service/internal/service"

	"github.com/labstack/echo/v4"
)

// ownerID reads the signed-in owner set by the auth middleware.
func ownerID(c echo.Context) (uint, error) {
	id, ok := middleware.OwnerID(c)
	if !ok {
		return 0, apperr.Unauthorized("invalid_token", "not signed in")
	}
	return id, nil
}

type ProfileHandler struct {
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/profile. The response says whether setup is done so
// the frontend knows where to send the owner.
func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	owner, err := h.profiles.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"owner": owner, "profile_complete": owner.ProfileComplete()})
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ProfileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	owner, err := h.profiles.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"owner": owner, "profile_complete": owner.ProfileComplete()})
}

type CustomerHandler struct {
	customers *service.CustomerService
}

func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

func (h *CustomerHandler) Create(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CustomerInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	customer, err := h.customers.Create(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) List(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	customers, err := h.customers.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	customer, err := h.customers.Get(c.Request().Context(), id, c.Param("phone"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// Update handles PUT /api/customers/:phone. The body may carry a new phone.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CustomerInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperr.Validation("", "malformed request"))
	}
	customer, err := h.customers.Update(c.Request().Context(), id, c.Param("phone"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

type ItemHandler struct {
	items *service.ItemService
}

func NewItemHandler(items *service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

func (h *ItemHandler) Create(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ItemInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	item, err := h.items.Create(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) List(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	items, err := h.items.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) Update(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ItemPatch
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	item, err := h.items.Update(c.Request().Context(), id, c.Param("name"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.items.Delete(c.Request().Context(), id, c.Param("name")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type BankHandler struct {
	banks *service.BankService
}

func NewBankHandler(banks *service.BankService) *BankHandler {
	return &BankHandler{banks: banks}
}

func (h *BankHandler) Create(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.BankDetailsInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	bank, err := h.banks.Create(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, bank)
}

func (h *BankHandler) List(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	banks, err := h.banks.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, banks)
}

func (h *BankHandler) Delete(c echo.Context) error {
	id, err := ownerID(c)
	if err != nil {
		return respondError(c, err)
	}
	bankID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, apperr.Validation("id", "%q is not a valid id", c.Param("id")))
	}
	if err := h.banks.Delete(c.Request().Context(), id, uint(bankID)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
