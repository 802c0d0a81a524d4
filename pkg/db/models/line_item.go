package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product/quantity/price entry within a document. Items are
// owned by exactly one document: created with it, replaced wholesale on item
// updates, removed when the document is deleted.
type LineItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DocumentID uuid.UUID `gorm:"column:document_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Position   int       `gorm:"column:position;not null"`

	Quantity        int             `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	TaxRate         decimal.Decimal `gorm:"column:tax_rate;type:numeric(5,2);not null"`

	// LineTotal is derived from the fields above and rounded to 2dp.
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
