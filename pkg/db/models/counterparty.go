package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradeforge/tradedocs-backend/pkg/enums"
)

// Counterparty is the customer or vendor a document is addressed to.
type Counterparty struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.CounterpartyKind `gorm:"column:kind;not null;index"`
	Name      string                 `gorm:"column:name;not null"`
	Email     string                 `gorm:"column:email;not null"`
	Phone     *string                `gorm:"column:phone"`
	Address   *string                `gorm:"column:address"`
	TaxNumber *string                `gorm:"column:tax_number"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
