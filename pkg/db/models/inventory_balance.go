package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryBalance is the materialized stock level per product. CurrentStock
// is written exclusively by the inventory ledger through atomic conditional
// updates; every other component treats it as read-only.
type InventoryBalance struct {
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	CurrentStock int             `gorm:"column:current_stock;not null;default:0"`
	MinimumStock int             `gorm:"column:minimum_stock;not null;default:0"`
	MaximumStock int             `gorm:"column:maximum_stock;not null;default:0"`
	ReorderPoint int             `gorm:"column:reorder_point;not null;default:0"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,4);not null"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
