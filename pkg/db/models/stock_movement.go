package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeforge/tradedocs-backend/pkg/enums"
)

// StockMovement is one immutable entry in the append-only inventory ledger.
// Corrections are new movements; rows are never edited or deleted.
type StockMovement struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	Type      enums.MovementType `gorm:"column:type;not null"`
	Quantity  int                `gorm:"column:quantity;not null"`

	UnitCost    *decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,4)"`
	ReferenceID *uuid.UUID       `gorm:"column:reference_id;type:uuid;index"`
	Notes       *string          `gorm:"column:notes"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
