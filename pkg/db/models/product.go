package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry referenced by line items and stock movements.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string          `gorm:"column:sku;not null;uniqueIndex"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Category    string          `gorm:"column:category;not null"`
	Unit        string          `gorm:"column:unit;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
