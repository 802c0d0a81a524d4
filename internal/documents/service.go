package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tradeforge/tradedocs-backend/internal/inventory"
	"github.com/tradeforge/tradedocs-backend/internal/lifecycle"
	"github.com/tradeforge/tradedocs-backend/internal/numbering"
	"github.com/tradeforge/tradedocs-backend/internal/pricing"
	"github.com/tradeforge/tradedocs-backend/pkg/clock"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/metrics"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service is the document engine: it validates and prices line items,
// allocates human numbers, walks the lifecycle tables, and keeps inventory
// postings atomic with the status changes that trigger them.
type Service interface {
	Create(ctx context.Context, input CreateDocumentInput) (*models.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetView(ctx context.Context, id uuid.UUID) (*DocumentView, error)
	List(ctx context.Context, input ListInput) ([]models.Document, string, error)
	UpdateItems(ctx context.Context, input UpdateItemsInput) (*models.Document, error)
	TransitionStatus(ctx context.Context, input TransitionInput) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Render(ctx context.Context, id uuid.UUID, renderer Renderer) ([]byte, error)
}

type service struct {
	client     *db.Client
	repo       Repository
	inv        inventory.Service
	allocator  *numbering.Allocator
	clk        clock.Clock
	logg       *logger.Logger
	metrics    *metrics.EngineMetrics
	maxRetries int
}

// NewService wires the document engine with its collaborators.
func NewService(
	client *db.Client,
	repo Repository,
	inv inventory.Service,
	clk clock.Clock,
	logg *logger.Logger,
	engineMetrics *metrics.EngineMetrics,
	numberingMaxRetries int,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("document repository required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if numberingMaxRetries <= 0 {
		return nil, fmt.Errorf("numbering max retries must be positive")
	}
	generator, err := numbering.NewGenerator(clk)
	if err != nil {
		return nil, err
	}
	allocator, err := numbering.NewAllocator(generator, repo.NumberExists, numberingMaxRetries)
	if err != nil {
		return nil, err
	}
	return &service{
		client:     client,
		repo:       repo,
		inv:        inv,
		allocator:  allocator,
		clk:        clk,
		logg:       logg,
		metrics:    engineMetrics,
		maxRetries: numberingMaxRetries,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateDocumentInput) (*models.Document, error) {
	if !input.Type.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid document type %q", input.Type))
	}
	if input.CounterpartyID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "counterparty id is required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "created_by is required")
	}

	summary, err := pricing.ComputeSummary(toLineInputs(input.Items))
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.CounterpartyExists(ctx, input.CounterpartyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("counterparty %s not found", input.CounterpartyID))
	}
	if err := s.checkProductsExist(ctx, input.Items); err != nil {
		return nil, err
	}

	status, err := lifecycle.InitialStatus(input.Type)
	if err != nil {
		return nil, err
	}

	// The allocator checks uniqueness optimistically; a concurrent creator
	// can still win the race between check and insert, which surfaces as a
	// unique violation on the number index. Retry the whole create with a
	// fresh number, bounded by the same budget.
	var doc *models.Document
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		number, retries, err := s.allocator.Allocate(ctx, input.Type)
		if err != nil {
			return nil, err
		}
		for i := 0; i < retries; i++ {
			s.metrics.IncNumberingRetry()
		}

		candidate := s.buildDocument(input, status, number, summary)
		err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).Create(ctx, candidate)
		})
		if err == nil {
			doc = candidate
			break
		}
		if db.IsUniqueViolation(err, "") {
			s.metrics.IncNumberingRetry()
			continue
		}
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.New(
			apperrors.CodeNumberingCollision,
			fmt.Sprintf("could not persist a unique %s number after %d attempts", input.Type, s.maxRetries+1),
		)
	}

	s.metrics.IncDocumentCreated(input.Type.String())
	logCtx := s.logg.WithDocumentID(ctx, doc.ID.String())
	s.logg.Info(s.logg.WithField(logCtx, "number", doc.Number), "document created")
	return doc, nil
}

func (s *service) buildDocument(input CreateDocumentInput, status enums.DocumentStatus, number string, summary *pricing.Summary) *models.Document {
	now := s.clk.Now()
	doc := &models.Document{
		ID:             uuid.New(),
		Type:           input.Type,
		Number:         number,
		CounterpartyID: input.CounterpartyID,
		Status:         status,
		Subtotal:       summary.Subtotal,
		DiscountAmount: summary.DiscountAmount,
		TaxAmount:      summary.TaxAmount,
		TotalAmount:    summary.TotalAmount,
		Notes:          input.Notes,
		ValidUntil:     input.ValidUntil,
		DeliveryDate:   input.DeliveryDate,
		CreatedBy:      input.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	doc.Items = buildLineItems(doc.ID, summary)
	return doc
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	s.projectExpiry(doc)
	return doc, nil
}

func (s *service) GetView(ctx context.Context, id uuid.UUID) (*DocumentView, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	counterparty, err := s.repo.GetCounterparty(ctx, doc.CounterpartyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeConsistency, fmt.Sprintf("counterparty %s missing for document %s", doc.CounterpartyID, doc.ID))
		}
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(doc.Items))
	for _, item := range doc.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.repo.GetProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	view := &DocumentView{
		Document:     *doc,
		Counterparty: *counterparty,
		Lines:        make([]ViewLine, 0, len(doc.Items)),
	}
	for _, item := range doc.Items {
		view.Lines = append(view.Lines, ViewLine{Item: item, Product: byID[item.ProductID]})
	}
	return view, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Document, string, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	docs, err := s.repo.List(ctx, input.Filter, limit+1, cursor)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		next = pagination.NextCursor(last.CreatedAt, last.ID)
	}
	for i := range docs {
		s.projectExpiry(&docs[i])
	}
	return docs, next, nil
}

func (s *service) UpdateItems(ctx context.Context, input UpdateItemsInput) (*models.Document, error) {
	if input.DocumentID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "document id is required")
	}

	doc, err := s.getDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if !lifecycle.IsEditable(doc.Type, doc.Status) {
		return nil, apperrors.New(
			apperrors.CodeStateConflict,
			fmt.Sprintf("%s %s is not editable in status %s", doc.Type, doc.Number, doc.Status),
		)
	}

	summary, err := pricing.ComputeSummary(toLineInputs(input.Items))
	if err != nil {
		return nil, err
	}
	if err := s.checkProductsExist(ctx, input.Items); err != nil {
		return nil, err
	}

	items := buildLineItems(doc.ID, summary)
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// Header first, conditional on the status the editability check saw.
		// If a transition slipped in between the read and this transaction,
		// zero rows match and the item swap never runs.
		matched, err := repo.UpdateHeaderIfStatus(ctx, doc.ID, doc.Status, map[string]any{
			"subtotal":        summary.Subtotal,
			"discount_amount": summary.DiscountAmount,
			"tax_amount":      summary.TaxAmount,
			"total_amount":    summary.TotalAmount,
			"updated_at":      s.clk.Now(),
		})
		if err != nil {
			return err
		}
		if !matched {
			return apperrors.New(
				apperrors.CodeStateConflict,
				fmt.Sprintf("%s %s left status %s and is no longer editable", doc.Type, doc.Number, doc.Status),
			)
		}
		return repo.ReplaceItems(ctx, doc.ID, items)
	})
	if err != nil {
		return nil, err
	}

	return s.getDocument(ctx, doc.ID)
}

func (s *service) TransitionStatus(ctx context.Context, input TransitionInput) (*models.Document, error) {
	if input.DocumentID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "document id is required")
	}
	if !input.NewStatus.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid document status %q", input.NewStatus))
	}
	if input.ActorID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "actor id is required")
	}

	doc, err := s.getDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	effect, err := lifecycle.Validate(doc.Type, doc.Status, input.NewStatus)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{
		"status":     input.NewStatus,
		"updated_at": s.clk.Now(),
	}
	if input.Note != nil && *input.Note != "" {
		patch["notes"] = appendNote(doc.Notes, *input.Note)
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		// The status write is conditional on the status the transition was
		// validated against. A concurrent transition that committed first
		// leaves zero rows matching, and this one aborts before posting
		// any inventory.
		matched, err := s.repo.WithTx(tx).UpdateHeaderIfStatus(ctx, doc.ID, doc.Status, patch)
		if err != nil {
			return err
		}
		if !matched {
			return apperrors.New(
				apperrors.CodeStateConflict,
				fmt.Sprintf("%s %s is no longer in status %s", doc.Type, doc.Number, doc.Status),
			)
		}
		// inventory postings ride in the same transaction: if any posting
		// fails, the status change rolls back with it
		return s.applyEffect(ctx, tx, doc, effect, input.ActorID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(doc.Type.String(), input.NewStatus.String())
	logCtx := s.logg.WithDocumentID(ctx, doc.ID.String())
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"from": doc.Status.String(),
		"to":   input.NewStatus.String(),
	}), "document status changed")

	return s.getDocument(ctx, doc.ID)
}

func (s *service) applyEffect(ctx context.Context, tx *gorm.DB, doc *models.Document, effect lifecycle.Effect, actorID uuid.UUID) error {
	if effect == lifecycle.EffectNone {
		return nil
	}

	var movementType enums.MovementType
	var note string
	switch effect {
	case lifecycle.EffectPostSale:
		movementType = enums.MovementTypeSale
		note = fmt.Sprintf("%s %s confirmed", doc.Type, doc.Number)
	case lifecycle.EffectPostPurchase:
		movementType = enums.MovementTypePurchase
		note = fmt.Sprintf("%s %s received", doc.Type, doc.Number)
	case lifecycle.EffectReverseSale:
		movementType = enums.MovementTypeReturn
		note = fmt.Sprintf("%s %s cancelled, stock restored", doc.Type, doc.Number)
	default:
		return apperrors.New(apperrors.CodeInternal, fmt.Sprintf("unhandled lifecycle effect %q", effect))
	}

	referenceID := doc.ID
	for _, item := range doc.Items {
		movementInput := inventory.PostMovementInput{
			ProductID:   item.ProductID,
			Type:        movementType,
			Quantity:    item.Quantity,
			ReferenceID: &referenceID,
			Notes:       &note,
			CreatedBy:   actorID,
		}
		if movementType == enums.MovementTypePurchase {
			unitCost := item.UnitPrice
			movementInput.UnitCost = &unitCost
		}
		if _, err := s.inv.PostMovementWithTx(ctx, tx, movementInput); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "document id is required")
	}

	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return err
	}

	// The ledger check runs inside the delete transaction so a transition
	// committing between the document read and this point still blocks the
	// delete: its movements are visible to the check by the time it runs.
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		posted, err := s.inv.HasMovementsForReferenceWithTx(ctx, tx, doc.ID)
		if err != nil {
			return err
		}
		if posted {
			return apperrors.New(
				apperrors.CodeStateConflict,
				fmt.Sprintf("%s %s has posted stock movements and cannot be deleted", doc.Type, doc.Number),
			)
		}
		return s.repo.WithTx(tx).Delete(ctx, doc.ID)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithDocumentID(ctx, doc.ID.String()), "document deleted")
	return nil
}

func (s *service) Render(ctx context.Context, id uuid.UUID, renderer Renderer) ([]byte, error) {
	if renderer == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "renderer is required")
	}
	view, err := s.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, view)
}

func (s *service) getDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("document %s not found", id))
		}
		return nil, err
	}
	return doc, nil
}

// projectExpiry applies the read-time expired projection for sent quotations
// whose validity window has passed. The stored status is untouched.
func (s *service) projectExpiry(doc *models.Document) {
	if doc.Type != enums.DocumentTypeQuotation {
		return
	}
	doc.Status = lifecycle.EffectiveQuotationStatus(doc.Status, doc.ValidUntil, s.clk.Now())
}

func (s *service) checkProductsExist(ctx context.Context, items []ItemInput) error {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	products, err := s.repo.GetProducts(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]bool, len(products))
	for _, product := range products {
		found[product.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
	}
	return nil
}

func toLineInputs(items []ItemInput) []pricing.LineInput {
	inputs := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, pricing.LineInput{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxRate:         item.TaxRate,
		})
	}
	return inputs
}

func buildLineItems(documentID uuid.UUID, summary *pricing.Summary) []models.LineItem {
	items := make([]models.LineItem, 0, len(summary.Lines))
	for i, line := range summary.Lines {
		items = append(items, models.LineItem{
			ID:              uuid.New(),
			DocumentID:      documentID,
			ProductID:       line.ProductID,
			Position:        i,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			TaxRate:         line.TaxRate,
			LineTotal:       line.Total,
		})
	}
	return items
}

func appendNote(existing *string, note string) string {
	if existing == nil || *existing == "" {
		return note
	}
	return *existing + "\n" + note
}
