package repository

import (
	"context"

	"stockswift/internal/dto"
	"stockswift/internal/infra"
	"stockswift/internal/model"

	"github.com/google/uuid"
)

// maxListItems caps list responses; the dashboard never pages past this.
const maxListItems = 500

// ItemRepository defines the data access contract for inventory items.
type ItemRepository interface {
	Create(ctx context.Context, it *model.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindBySKU(ctx context.Context, sku string) (*model.Item, error)
	List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, error)
	CategoryCounts(ctx context.Context) ([]dto.CategoryCount, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type itemRepo struct{ db *infra.Connector }

func NewItemRepository(db *infra.Connector) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var it model.Item
	err = db.WithContext(ctx).First(&it, id).Error
	return &it, err
}

// FindBySKU expects the caller to have uppercased the SKU already.
func (r *itemRepo) FindBySKU(ctx context.Context, sku string) (*model.Item, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var it model.Item
	err = db.WithContext(ctx).Where("sku = ?", sku).First(&it).Error
	return &it, err
}

// List filters by free-text search (name OR sku, case-insensitive substring)
// and exact category, newest update first, capped at maxListItems.
func (r *itemRepo) List(ctx context.Context, filter dto.ItemFilter) ([]model.Item, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	q := db.WithContext(ctx).Model(&model.Item{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var items []model.Item
	err = q.Order("updated_at DESC").Limit(maxListItems).Find(&items).Error
	return items, err
}

// CategoryCounts aggregates distinct categories with item counts,
// alphabetical by category name. Counts cover the whole table, not the
// filtered result set.
func (r *itemRepo) CategoryCounts(ctx context.Context) ([]dto.CategoryCount, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var counts []dto.CategoryCount
	err = db.WithContext(ctx).Model(&model.Item{}).
		Select("category AS name, COUNT(*) AS count").
		Group("category").
		Order("category ASC").
		Scan(&counts).Error
	return counts, err
}

// UpdateFields applies a sparse column update and bumps updated_at.
// Callers must not pass an empty map.
func (r *itemRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(fields).Error
}
