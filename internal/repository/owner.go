package repository

import (
	"context"
	"time"

	"invoice-service/internal/model"
	"invoice-service/prometheus"

	"gorm.io/gorm"
)

func (r *Repository) CreateOwner(ctx context.Context, o *model.Owner) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate("create owner", "owner", o.Email, r.db.WithContext(ctx).Create(o).Error)
}

func (r *Repository) GetOwner(ctx context.Context, id uint) (*model.Owner, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var o model.Owner
	err := r.read(ctx, "get owner", func(tx *gorm.DB) error {
		return tx.First(&o, id).Error
	})
	if err != nil {
		return nil, translate("get owner", "owner", id, err)
	}
	return &o, nil
}

func (r *Repository) GetOwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var o model.Owner
	err := r.read(ctx, "get owner by email", func(tx *gorm.DB) error {
		return tx.Where("email = ?", email).First(&o).Error
	})
	if err != nil {
		return nil, translate("get owner by email", "owner", email, err)
	}
	return &o, nil
}

func (r *Repository) GetOwnerByGoogleID(ctx context.Context, googleID string) (*model.Owner, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var o model.Owner
	err := r.read(ctx, "get owner by google id", func(tx *gorm.DB) error {
		return tx.Where("google_id = ?", googleID).First(&o).Error
	})
	if err != nil {
		return nil, translate("get owner by google id", "owner", googleID, err)
	}
	return &o, nil
}

// UpdateOwner saves every column of o.
func (r *Repository) UpdateOwner(ctx context.Context, o *model.Owner) error {
	defer prometheus.TrackDBOperation("update")(time.Now())
	return translate("update owner", "owner", o.ID, r.db.WithContext(ctx).Save(o).Error)
}
