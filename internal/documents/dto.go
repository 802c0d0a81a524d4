package documents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
)

// ItemInput is one requested line item.
type ItemInput struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
}

// CreateDocumentInput captures everything needed to create a document.
type CreateDocumentInput struct {
	Type           enums.DocumentType
	CounterpartyID uuid.UUID
	Items          []ItemInput
	Notes          *string
	ValidUntil     *time.Time
	DeliveryDate   *time.Time
	CreatedBy      uuid.UUID
}

// UpdateItemsInput replaces the whole item set of an editable document.
type UpdateItemsInput struct {
	DocumentID uuid.UUID
	Items      []ItemInput
}

// TransitionInput requests a status change with an optional note.
type TransitionInput struct {
	DocumentID uuid.UUID
	NewStatus  enums.DocumentStatus
	Note       *string
	ActorID    uuid.UUID
}

// ListInput narrows and paginates document listings.
type ListInput struct {
	Filter     ListFilter
	Pagination pagination.Params
}

// ViewLine is a line item enriched with catalog data for rendering.
type ViewLine struct {
	Item    models.LineItem
	Product *models.Product
}

// DocumentView is the fully assembled document a renderer consumes: the
// header with its computed financial summary, the counterparty, and each
// line joined with its product.
type DocumentView struct {
	Document     models.Document
	Counterparty models.Counterparty
	Lines        []ViewLine
}

// Renderer turns an assembled document view into an output byte stream
// (PDF, CSV). The engine only assembles the view; rendering is pluggable.
type Renderer interface {
	Render(ctx context.Context, view *DocumentView) ([]byte, error)
}
