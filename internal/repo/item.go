package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/catalog/internal/models"
)

func (r *GormRepo) CreateItem(ctx context.Context, item *models.Item) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.DB.WithContext(ctx).Take(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *GormRepo) ListItems(ctx context.Context, offset, limit int) (int64, []models.Item, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Item, 0, limit)
	if err := r.DB.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// UpdateItemField sets one column. column must already be whitelisted by the
// caller.
func (r *GormRepo) UpdateItemField(ctx context.Context, id uint, column, value string) (*models.Item, error) {
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(item).Update(column, value).Error; err != nil {
		return nil, fmt.Errorf("update item %s: %w", column, err)
	}
	return r.GetItem(ctx, id)
}

func (r *GormRepo) DeleteItem(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchItems is the SQL fallback used when no search cluster is configured.
func (r *GormRepo) SearchItems(ctx context.Context, q string, offset, limit int) (int64, []models.Item, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "LOWER(itemname) LIKE ? OR LOWER(category) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Item{}).
		Where(where, pattern, pattern, pattern).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Item, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern, pattern).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
