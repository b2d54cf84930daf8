package repository

import (
	"context"
	"time"

	"invoice-service/internal/model"
	"invoice-service/prometheus"

	"gorm.io/gorm"
)

func (r *Repository) CreateCustomer(ctx context.Context, c *model.Customer) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate("create customer", "customer", c.Phone, r.db.WithContext(ctx).Create(c).Error)
}

func (r *Repository) ListCustomers(ctx context.Context, ownerID uint) ([]model.Customer, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var customers []model.Customer
	err := r.read(ctx, "list customers", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ?", ownerID).Order("name, id").Find(&customers).Error
	})
	return customers, translate("list customers", "customer", ownerID, err)
}

func (r *Repository) GetCustomerByPhone(ctx context.Context, ownerID uint, phone string) (*model.Customer, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var c model.Customer
	err := r.read(ctx, "get customer", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ? AND phone = ?", ownerID, phone).First(&c).Error
	})
	if err != nil {
		return nil, translate("get customer", "customer", phone, err)
	}
	return &c, nil
}

func (r *Repository) GetCustomer(ctx context.Context, ownerID, id uint) (*model.Customer, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var c model.Customer
	err := r.read(ctx, "get customer", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ? AND id = ?", ownerID, id).First(&c).Error
	})
	if err != nil {
		return nil, translate("get customer", "customer", id, err)
	}
	return &c, nil
}

// UpdateCustomer saves c; the phone number may change as long as it stays unique.
func (r *Repository) UpdateCustomer(ctx context.Context, c *model.Customer) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return translate("update customer", "customer", c.Phone, r.db.WithContext(ctx).Save(c).Error)
}
