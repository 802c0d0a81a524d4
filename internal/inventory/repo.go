package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for balances and the movement ledger.
// Stock mutations are single conditional UPDATE statements so concurrent
// movements on the same product serialize inside the database instead of
// racing through a read-then-write pair.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
	GetBalance(ctx context.Context, productID uuid.UUID) (*models.InventoryBalance, error)
	EnsureBalance(ctx context.Context, productID uuid.UUID) error
	ListBalances(ctx context.Context, limit int) ([]models.InventoryBalance, error)
	UpdateBalanceSettings(ctx context.Context, productID uuid.UUID, patch map[string]any) (*models.InventoryBalance, error)

	IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	DecrementStockGuarded(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	DecrementStockClamped(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)

	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, productID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockMovement, error)
	HasMovementsForReference(ctx context.Context, referenceID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) GetBalance(ctx context.Context, productID uuid.UUID) (*models.InventoryBalance, error) {
	var balance models.InventoryBalance
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// EnsureBalance creates the zero-stock balance row if the product has never
// moved before. Safe under concurrency: conflicting inserts are no-ops.
func (r *repository) EnsureBalance(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.InventoryBalance{ProductID: productID}).Error
}

func (r *repository) ListBalances(ctx context.Context, limit int) ([]models.InventoryBalance, error) {
	var balances []models.InventoryBalance
	query := r.db.WithContext(ctx).Order("product_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (r *repository) UpdateBalanceSettings(ctx context.Context, productID uuid.UUID, patch map[string]any) (*models.InventoryBalance, error) {
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryBalance{}).
		Where("product_id = ?", productID).
		Updates(patch).Error; err != nil {
		return nil, err
	}
	return r.GetBalance(ctx, productID)
}

// IncrementStock adds quantity atomically. Returns false when the balance row
// does not exist.
func (r *repository) IncrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryBalance{}).
		Where("product_id = ?", productID).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementStockGuarded subtracts quantity only when enough stock is present.
// The stock check rides in the WHERE clause of the UPDATE itself, so two
// concurrent sales can never both succeed against the same last unit.
func (r *repository) DecrementStockGuarded(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryBalance{}).
		Where("product_id = ? AND current_stock >= ?", productID, quantity).
		UpdateColumn("current_stock", gorm.Expr("current_stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DecrementStockClamped subtracts quantity, flooring the balance at zero, in
// one atomic statement. Only used when the clamp policy is enabled.
func (r *repository) DecrementStockClamped(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryBalance{}).
		Where("product_id = ?", productID).
		UpdateColumn("current_stock", gorm.Expr(
			"CASE WHEN current_stock >= ? THEN current_stock - ? ELSE 0 END", quantity, quantity,
		))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, productID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC")
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var movements []models.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) HasMovementsForReference(ctx context.Context, referenceID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("reference_id = ?", referenceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
