package service

import (
	"context"
	"strings"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/internal/repository"
	"invoice-service/pkg/logger"

	"go.uber.org/zap"
)

// ProfileService reads and completes the business profile.
type ProfileService struct {
	repo *repository.Repository
}

func NewProfileService(repo *repository.Repository) *ProfileService {
	return &ProfileService{repo: repo}
}

type ProfileInput struct {
	Name                string `json:"name"`
	CompanyName         string `json:"company_name" validate:"required"`
	AddressLine         string `json:"address_line"`
	City                string `json:"city"`
	State               string `json:"state"`
	Pincode             string `json:"pincode"`
	GSTNumber           string `json:"gst_number"`
	InvoiceInstructions string `json:"invoice_instructions"`
}

func (s *ProfileService) Get(ctx context.Context, ownerID uint) (*model.Owner, error) {
	return s.repo.GetOwner(ctx, ownerID)
}

// Update sets up or edits the business profile. A company name is what makes
// a profile complete, so it cannot be cleared.
func (s *ProfileService) Update(ctx context.Context, ownerID uint, in ProfileInput) (*model.Owner, error) {
	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, apperr.Validation("company_name", "is required")
	}
	owner, err := s.repo.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		owner.Name = name
	}
	owner.CompanyName = strings.TrimSpace(in.CompanyName)
	owner.AddressLine = strings.TrimSpace(in.AddressLine)
	owner.City = strings.TrimSpace(in.City)
	owner.State = strings.TrimSpace(in.State)
	owner.Pincode = strings.TrimSpace(in.Pincode)
	owner.GSTNumber = strings.ToUpper(strings.TrimSpace(in.GSTNumber))
	owner.InvoiceInstructions = strings.TrimSpace(in.InvoiceInstructions)

	if err := s.repo.UpdateOwner(ctx, owner); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Profile updated", zap.Uint("owner_id", owner.ID))
	return owner, nil
}
