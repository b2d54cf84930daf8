package service

import (
	"context"
	"strings"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/repository"
	"invoice-service/internal/totals"
	"invoice-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CustomerInput struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	GSTNumber   string `json:"gst_number"`
	PANNumber   string `json:"pan_number"`
}

func (in CustomerInput) apply(c *model.Customer) {
	c.Name = strings.TrimSpace(in.Name)
	c.Phone = normalizePhone(in.Phone)
	c.Email = normalizeEmail(in.Email)
	c.AddressLine = strings.TrimSpace(in.AddressLine)
	c.City = strings.TrimSpace(in.City)
	c.State = strings.TrimSpace(in.State)
	c.Pincode = strings.TrimSpace(in.Pincode)
	c.GSTNumber = strings.ToUpper(strings.TrimSpace(in.GSTNumber))
	c.PANNumber = strings.ToUpper(strings.TrimSpace(in.PANNumber))
}

func normalizePhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

// CustomerService manages an owner's customers, keyed by phone number.
type CustomerService struct {
	repo *repository.Repository
}

func NewCustomerService(repo *repository.Repository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) Create(ctx context.Context, ownerID uint, in CustomerInput) (*model.Customer, error) {
	c := &model.Customer{OwnerID: ownerID}
	in.apply(c)
	if c.Name == "" || c.Phone == "" {
		return nil, apperr.Validation("phone", "name and phone are required")
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Customer created", zap.Uint("customer_id", c.ID), zap.String("phone", c.Phone))
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, ownerID uint) ([]model.Customer, error) {
	return s.repo.ListCustomers(ctx, ownerID)
}

func (s *CustomerService) Get(ctx context.Context, ownerID uint, phone string) (*model.Customer, error) {
	return s.repo.GetCustomerByPhone(ctx, ownerID, normalizePhone(phone))
}

// Update replaces the customer found by phone. A new phone in the input
// renumbers the customer.
func (s *CustomerService) Update(ctx context.Context, ownerID uint, phone string, in CustomerInput) (*model.Customer, error) {
	c, err := s.repo.GetCustomerByPhone(ctx, ownerID, normalizePhone(phone))
	if err != nil {
		return nil, err
	}
	if in.Phone == "" {
		in.Phone = c.Phone
	}
	in.apply(c)
	if c.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type ItemInput struct {
	Name  string          `json:"name" validate:"required"`
	Brand string          `json:"brand"`
	Rate  decimal.Decimal `json:"rate"`
	Tax   decimal.Decimal `json:"tax"`
}

// ItemPatch changes an item; nil fields are left alone.
type ItemPatch struct {
	Brand *string          `json:"brand"`
	Rate  *decimal.Decimal `json:"rate"`
	Tax   *decimal.Decimal `json:"tax"`
}

// ItemService manages the catalogue of items, keyed by name.
type ItemService struct {
	repo *repository.Repository
}

func NewItemService(repo *repository.Repository) *ItemService {
	return &ItemService{repo: repo}
}

// checkPricing applies the bounds of a quotation line plus what the columns
// can hold: rate below totals.MaxAmount, both at most two decimal places.
func checkPricing(rate, tax decimal.Decimal) error {
	if err := (totals.Line{Rate: rate, TaxPercent: tax}).Validate(); err != nil {
		return err
	}
	if rate.GreaterThanOrEqual(totals.MaxAmount) {
		return apperr.Validation("rate", "must be below %s, got %s", totals.Format(totals.MaxAmount), rate)
	}
	if err := twoPlaces("rate", rate); err != nil {
		return err
	}
	return twoPlaces("tax", tax)
}

func twoPlaces(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return apperr.Validation(field, "must have at most 2 decimal places, got %s", d)
	}
	return nil
}

func (s *ItemService) Create(ctx context.Context, ownerID uint, in ItemInput) (*model.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if err := checkPricing(in.Rate, in.Tax); err != nil {
		return nil, err
	}
	it := &model.Item{
		OwnerID: ownerID,
		Name:    name,
		Brand:   strings.TrimSpace(in.Brand),
		Rate:    in.Rate,
		Tax:     in.Tax,
	}
	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Item created", zap.Uint("item_id", it.ID), zap.String("name", it.Name))
	return it, nil
}

func (s *ItemService) List(ctx context.Context, ownerID uint) ([]model.Item, error) {
	return s.repo.ListItems(ctx, ownerID)
}

// Update reprices an item. Existing quotations pick up the new rate on their
// next read; their tax stays as captured.
func (s *ItemService) Update(ctx context.Context, ownerID uint, name string, p ItemPatch) (*model.Item, error) {
	current, err := s.repo.GetItemByName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	rate, tax := current.Rate, current.Tax
	if p.Rate != nil {
		rate = *p.Rate
	}
	if p.Tax != nil {
		tax = *p.Tax
	}
	if err := checkPricing(rate, tax); err != nil {
		return nil, err
	}
	if p.Brand != nil {
		brand := strings.TrimSpace(*p.Brand)
		p.Brand = &brand
	}
	return s.repo.UpdateItem(ctx, ownerID, name, repository.ItemUpdate{Brand: p.Brand, Rate: p.Rate, Tax: p.Tax})
}

func (s *ItemService) Delete(ctx context.Context, ownerID uint, name string) error {
	if err := s.repo.DeleteItem(ctx, ownerID, name); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Item deleted", zap.String("name", name))
	return nil
}

type BankDetailsInput struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	IFSC          string `json:"ifsc"`
	UPIID         string `json:"upi_id"`
	UPIName       string `json:"upi_name"`
}

// BankService manages payout accounts.
type BankService struct {
	repo *repository.Repository
}

func NewBankService(repo *repository.Repository) *BankService {
	return &BankService{repo: repo}
}

func (s *BankService) Create(ctx context.Context, ownerID uint, in BankDetailsInput) (*model.BankDetails, error) {
	b := &model.BankDetails{
		OwnerID:       ownerID,
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		IFSC:          strings.ToUpper(strings.TrimSpace(in.IFSC)),
		UPIID:         strings.TrimSpace(in.UPIID),
		UPIName:       strings.TrimSpace(in.UPIName),
	}
	if b.BankName == "" || b.AccountNumber == "" {
		return nil, apperr.Validation("account_number", "bank name and account number are required")
	}
	if err := s.repo.CreateBankDetails(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BankService) List(ctx context.Context, ownerID uint) ([]model.BankDetails, error) {
	return s.repo.ListBankDetails(ctx, ownerID)
}

func (s *BankService) Delete(ctx context.Context, ownerID, id uint) error {
	return s.repo.DeleteBankDetails(ctx, ownerID, id)
}
