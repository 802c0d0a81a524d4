package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Category *string
	IsActive *bool
	Search   *string
}

// Repository manages persistence for catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Order("created_at DESC, id DESC")
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		query = query.Where("lower(name) LIKE lower(?) OR lower(sku) LIKE lower(?)", pattern, pattern)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Product{}).Error
}

// IsReferenced reports whether any line item or stock movement points at the
// product. Referenced products are deactivated, never removed.
func (r *repository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LineItem{}).
		Where("product_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("product_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
