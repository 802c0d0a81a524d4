package documents

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows document listings.
type ListFilter struct {
	Type           *enums.DocumentType
	Status         *enums.DocumentStatus
	CounterpartyID *uuid.UUID
}

// Repository manages persistence for document headers and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Document, error)
	UpdateHeader(ctx context.Context, id uuid.UUID, patch map[string]any) error
	UpdateHeaderIfStatus(ctx context.Context, id uuid.UUID, expected enums.DocumentStatus, patch map[string]any) (bool, error)
	ReplaceItems(ctx context.Context, documentID uuid.UUID, items []models.LineItem) error
	Delete(ctx context.Context, id uuid.UUID) error

	CounterpartyExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetCounterparty(ctx context.Context, id uuid.UUID) (*models.Counterparty, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a document repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the header and all line items in one statement batch.
// Callers run it inside a transaction so a failed item insert rolls the
// header back too.
func (r *repository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Document, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{}).
		Order("created_at DESC, id DESC")
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
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

	var docs []models.Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *repository) UpdateHeader(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// UpdateHeaderIfStatus applies the patch only while the row still holds the
// expected status. The condition travels in the statement itself, so a
// concurrent transition loses by matching zero rows rather than by
// overwriting the winner.
func (r *repository) UpdateHeaderIfStatus(ctx context.Context, id uuid.UUID, expected enums.DocumentStatus, patch map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(patch)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReplaceItems wholesale swaps the item set. Partial edits are not supported.
func (r *repository) ReplaceItems(ctx context.Context, documentID uuid.UUID, items []models.LineItem) error {
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.LineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", id).
		Delete(&models.LineItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Document{}).Error
}

func (r *repository) CounterpartyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Counterparty{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) GetCounterparty(ctx context.Context, id uuid.UUID) (*models.Counterparty, error) {
	var counterparty models.Counterparty
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&counterparty).Error; err != nil {
		return nil, err
	}
	return &counterparty, nil
}

func (r *repository) GetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
