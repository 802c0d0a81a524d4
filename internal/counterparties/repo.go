package counterparties

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows counterparty listings.
type ListFilter struct {
	Kind   *enums.CounterpartyKind
	Search *string
}

// Repository manages persistence for customers and vendors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, counterparty *models.Counterparty) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Counterparty, error)
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Counterparty, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasDocuments(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a counterparty repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, counterparty *models.Counterparty) error {
	return r.db.WithContext(ctx).Create(counterparty).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Counterparty, error) {
	var counterparty models.Counterparty
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&counterparty).Error; err != nil {
		return nil, err
	}
	return &counterparty, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Counterparty, error) {
	query := r.db.WithContext(ctx).Model(&models.Counterparty{}).
		Order("created_at DESC, id DESC")
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Search != nil {
		pattern := "%" + *filter.Search + "%"
		query = query.Where("lower(name) LIKE lower(?) OR lower(email) LIKE lower(?)", pattern, pattern)
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

	var listed []models.Counterparty
	if err := query.Find(&listed).Error; err != nil {
		return nil, err
	}
	return listed, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Counterparty{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Counterparty{}).Error
}

func (r *repository) HasDocuments(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("counterparty_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
