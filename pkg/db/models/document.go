package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeforge/tradedocs-backend/pkg/enums"
)

// Document is the tagged-variant header shared by quotations, orders,
// purchase orders, delivery challans and shipments. The variant-specific
// behavior (state tables, editability, inventory effects) lives in the
// lifecycle and engine code; the storage shape is shared.
type Document struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type           enums.DocumentType   `gorm:"column:type;not null;index:idx_documents_type_status"`
	Number         string               `gorm:"column:number;not null;uniqueIndex:idx_documents_number"`
	CounterpartyID uuid.UUID            `gorm:"column:counterparty_id;type:uuid;not null;index"`
	Status         enums.DocumentStatus `gorm:"column:status;not null;index:idx_documents_type_status"`

	// Derived financial summary; always recomputed alongside Items —
	// never persisted stale.
	Subtotal       decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(14,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:numeric(14,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null"`

	Notes        *string    `gorm:"column:notes"`
	ValidUntil   *time.Time `gorm:"column:valid_until"`
	DeliveryDate *time.Time `gorm:"column:delivery_date"`

	CreatedBy uuid.UUID  `gorm:"column:created_by;type:uuid;not null"`
	Items     []LineItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
