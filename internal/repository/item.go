package repository

import (
	"context"
	"time"

	"invoice-service/internal/apperr"
	"invoice-service/internal/model"
	"invoice-service/prometheus"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (r *Repository) CreateItem(ctx context.Context, it *model.Item) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return translate("create item", "item", it.Name, r.db.WithContext(ctx).Create(it).Error)
}

func (r *Repository) ListItems(ctx context.Context, ownerID uint) ([]model.Item, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []model.Item
	err := r.read(ctx, "list items", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ?", ownerID).Order("name").Find(&items).Error
	})
	return items, translate("list items", "item", ownerID, err)
}

func (r *Repository) GetItemByName(ctx context.Context, ownerID uint, name string) (*model.Item, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var it model.Item
	err := r.read(ctx, "get item", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ? AND name = ?", ownerID, name).First(&it).Error
	})
	if err != nil {
		return nil, translate("get item", "item", name, err)
	}
	return &it, nil
}

// GetItemsByID loads the owner's items with the given ids, keyed by id. Ids
// that are missing or belong to another owner are simply absent.
func (r *Repository) GetItemsByID(ctx context.Context, ownerID uint, ids []uint) (map[uint]model.Item, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []model.Item
	err := r.read(ctx, "get items", func(tx *gorm.DB) error {
		return tx.Where("owner_id = ? AND id IN ?", ownerID, ids).Find(&items).Error
	})
	if err != nil {
		return nil, translate("get items", "item", ids, err)
	}
	out := make(map[uint]model.Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// ItemUpdate carries the mutable fields of an item. Nil means unchanged.
type ItemUpdate struct {
	Brand *string
	Rate  *decimal.Decimal
	Tax   *decimal.Decimal
}

// UpdateItem changes an item found by name; the name itself never changes.
func (r *Repository) UpdateItem(ctx context.Context, ownerID uint, name string, u ItemUpdate) (*model.Item, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())
	var it model.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND name = ?", ownerID, name).First(&it).Error; err != nil {
			return err
		}
		if u.Brand == nil && u.Rate == nil && u.Tax == nil {
			return nil
		}
		if u.Brand != nil {
			it.Brand = *u.Brand
		}
		if u.Rate != nil {
			it.Rate = *u.Rate
		}
		if u.Tax != nil {
			it.Tax = *u.Tax
		}
		return tx.Save(&it).Error
	})
	if err != nil {
		return nil, translate("update item", "item", name, err)
	}
	return &it, nil
}

// DeleteItem removes an item unless a quotation still uses it.
func (r *Repository) DeleteItem(ctx context.Context, ownerID uint, name string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it model.Item
		if err := tx.Where("owner_id = ? AND name = ?", ownerID, name).First(&it).Error; err != nil {
			return err
		}
		var used int64
		if err := tx.Model(&model.QuotationItem{}).Where("item_id = ?", it.ID).Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return apperr.Validation("name", "item %q is used by %d quotation lines", name, used)
		}
		return tx.Delete(&it).Error
	})
	return translate("delete item", "item", name, err)
}
