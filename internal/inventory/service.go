package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/metrics"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service is the inventory ledger. It is the sole writer of balance stock
// levels; every change flows through an appended movement plus an atomic
// conditional balance update in the same transaction.
type Service interface {
	PostMovement(ctx context.Context, input PostMovementInput) (*models.StockMovement, error)
	PostMovementWithTx(ctx context.Context, tx *gorm.DB, input PostMovementInput) (*models.StockMovement, error)
	GetBalance(ctx context.Context, productID uuid.UUID) (*BalanceView, error)
	ListBalances(ctx context.Context, limit int) ([]BalanceView, error)
	UpdateBalanceSettings(ctx context.Context, input UpdateBalanceSettingsInput) (*BalanceView, error)
	ListMovements(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.StockMovement, string, error)
	HasMovementsForReference(ctx context.Context, referenceID uuid.UUID) (bool, error)
	HasMovementsForReferenceWithTx(ctx context.Context, tx *gorm.DB, referenceID uuid.UUID) (bool, error)
}

// PostMovementInput captures one ledger entry to append.
type PostMovementInput struct {
	ProductID   uuid.UUID
	Type        enums.MovementType
	Quantity    int
	UnitCost    *decimal.Decimal
	ReferenceID *uuid.UUID
	Notes       *string
	CreatedBy   uuid.UUID
}

// UpdateBalanceSettingsInput patches the threshold settings of a balance.
// Current stock is deliberately absent: it only moves through movements.
type UpdateBalanceSettingsInput struct {
	ProductID    uuid.UUID
	MinimumStock *int
	MaximumStock *int
	ReorderPoint *int
	UnitCost     *decimal.Decimal
}

// BalanceView is the read model: the stored balance plus the derived
// stock status projection.
type BalanceView struct {
	Balance models.InventoryBalance
	Status  enums.StockStatus
}

type service struct {
	client     *db.Client
	repo       Repository
	logg       *logger.Logger
	metrics    *metrics.EngineMetrics
	allowClamp bool
}

// NewService wires the ledger service. allowClamp switches outbound postings
// from rejecting insufficient stock to flooring the balance at zero.
func NewService(client *db.Client, repo Repository, logg *logger.Logger, engineMetrics *metrics.EngineMetrics, allowClamp bool) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client:     client,
		repo:       repo,
		logg:       logg,
		metrics:    engineMetrics,
		allowClamp: allowClamp,
	}, nil
}

func (s *service) PostMovement(ctx context.Context, input PostMovementInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		posted, err := s.PostMovementWithTx(ctx, tx, input)
		if err != nil {
			return err
		}
		movement = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// PostMovementWithTx appends a movement inside an existing transaction. The
// document engine uses this to make status transitions and their inventory
// effects one unit of work.
func (s *service) PostMovementWithTx(ctx context.Context, tx *gorm.DB, input PostMovementInput) (*models.StockMovement, error) {
	if err := validateMovement(input); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)

	exists, err := repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("product %s not found", input.ProductID))
	}
	if err := repo.EnsureBalance(ctx, input.ProductID); err != nil {
		return nil, err
	}

	if input.Type.Inbound() {
		updated, err := repo.IncrementStock(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, apperrors.New(apperrors.CodeConsistency, fmt.Sprintf("balance row missing for product %s", input.ProductID))
		}
	} else if s.allowClamp {
		updated, err := repo.DecrementStockClamped(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, apperrors.New(apperrors.CodeConsistency, fmt.Sprintf("balance row missing for product %s", input.ProductID))
		}
	} else {
		updated, err := repo.DecrementStockGuarded(ctx, input.ProductID, input.Quantity)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, apperrors.New(
				apperrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock for product %s: requested %d", input.ProductID, input.Quantity),
			)
		}
	}

	movement := &models.StockMovement{
		ID:          uuid.New(),
		ProductID:   input.ProductID,
		Type:        input.Type,
		Quantity:    input.Quantity,
		UnitCost:    input.UnitCost,
		ReferenceID: input.ReferenceID,
		Notes:       input.Notes,
		CreatedBy:   input.CreatedBy,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return nil, err
	}

	s.metrics.IncMovementPosted(input.Type.String())
	logCtx := s.logg.WithProductID(ctx, input.ProductID.String())
	s.logg.Info(s.logg.WithField(logCtx, "movement_type", input.Type.String()), "stock movement posted")
	return movement, nil
}

func (s *service) GetBalance(ctx context.Context, productID uuid.UUID) (*BalanceView, error) {
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	balance, err := s.repo.GetBalance(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no balance for product %s", productID))
		}
		return nil, err
	}
	view := toBalanceView(*balance)
	return &view, nil
}

func (s *service) ListBalances(ctx context.Context, limit int) ([]BalanceView, error) {
	balances, err := s.repo.ListBalances(ctx, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	views := make([]BalanceView, 0, len(balances))
	for _, balance := range balances {
		views = append(views, toBalanceView(balance))
	}
	return views, nil
}

func (s *service) UpdateBalanceSettings(ctx context.Context, input UpdateBalanceSettingsInput) (*BalanceView, error) {
	if input.ProductID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}

	patch := map[string]any{}
	if input.MinimumStock != nil {
		if *input.MinimumStock < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "minimum stock must not be negative")
		}
		patch["minimum_stock"] = *input.MinimumStock
	}
	if input.MaximumStock != nil {
		if *input.MaximumStock < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "maximum stock must not be negative")
		}
		patch["maximum_stock"] = *input.MaximumStock
	}
	if input.ReorderPoint != nil {
		if *input.ReorderPoint < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "reorder point must not be negative")
		}
		patch["reorder_point"] = *input.ReorderPoint
	}
	if input.UnitCost != nil {
		if input.UnitCost.IsNegative() {
			return nil, apperrors.New(apperrors.CodeValidation, "unit cost must not be negative")
		}
		patch["unit_cost"] = *input.UnitCost
	}
	if len(patch) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "no settings provided")
	}

	exists, err := s.repo.ProductExists(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("product %s not found", input.ProductID))
	}
	if err := s.repo.EnsureBalance(ctx, input.ProductID); err != nil {
		return nil, err
	}

	balance, err := s.repo.UpdateBalanceSettings(ctx, input.ProductID, patch)
	if err != nil {
		return nil, err
	}
	view := toBalanceView(*balance)
	return &view, nil
}

func (s *service) ListMovements(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.StockMovement, string, error) {
	if productID == uuid.Nil {
		return nil, "", apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	movements, err := s.repo.ListMovements(ctx, productID, limit+1, cursor)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		next = pagination.NextCursor(last.CreatedAt, last.ID)
	}
	return movements, next, nil
}

// HasMovementsForReference reports whether any ledger entry references the
// given document. Documents with posted movements cannot be deleted.
func (s *service) HasMovementsForReference(ctx context.Context, referenceID uuid.UUID) (bool, error) {
	if referenceID == uuid.Nil {
		return false, apperrors.New(apperrors.CodeValidation, "reference id is required")
	}
	return s.repo.HasMovementsForReference(ctx, referenceID)
}

// HasMovementsForReferenceWithTx is the transaction-scoped variant. Callers
// deciding on a delete run it inside the deleting transaction so the answer
// reflects movements committed after their initial read.
func (s *service) HasMovementsForReferenceWithTx(ctx context.Context, tx *gorm.DB, referenceID uuid.UUID) (bool, error) {
	if referenceID == uuid.Nil {
		return false, apperrors.New(apperrors.CodeValidation, "reference id is required")
	}
	return s.repo.WithTx(tx).HasMovementsForReference(ctx, referenceID)
}

func validateMovement(input PostMovementInput) error {
	if input.ProductID == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	if !input.Type.IsValid() {
		return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid movement type %q", input.Type))
	}
	if input.Quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return apperrors.New(apperrors.CodeValidation, "unit cost must not be negative")
	}
	if input.CreatedBy == uuid.Nil {
		return apperrors.New(apperrors.CodeValidation, "created_by is required")
	}
	return nil
}

func toBalanceView(balance models.InventoryBalance) BalanceView {
	return BalanceView{
		Balance: balance,
		Status:  enums.DeriveStockStatus(balance.CurrentStock, balance.MinimumStock),
	}
}
