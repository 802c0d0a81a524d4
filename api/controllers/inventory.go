package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradeforge/tradedocs-backend/api/responses"
	"github.com/tradeforge/tradedocs-backend/api/validators"
	"github.com/tradeforge/tradedocs-backend/internal/inventory"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
)

type postMovementRequest struct {
	Type     string           `json:"type" validate:"required"`
	Quantity int              `json:"quantity" validate:"required,min=1"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

type updateBalanceSettingsRequest struct {
	MinimumStock *int             `json:"minimum_stock,omitempty" validate:"omitempty,min=0"`
	MaximumStock *int             `json:"maximum_stock,omitempty" validate:"omitempty,min=0"`
	ReorderPoint *int             `json:"reorder_point,omitempty" validate:"omitempty,min=0"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
}

// PostStockMovement appends a manual ledger entry (adjustment, standalone
// purchase or return) for a product.
func PostStockMovement(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actor, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload postMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseMovementType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}

		movement, err := svc.PostMovement(r.Context(), inventory.PostMovementInput{
			ProductID: productID,
			Type:      movementType,
			Quantity:  payload.Quantity,
			UnitCost:  payload.UnitCost,
			Notes:     payload.Notes,
			CreatedBy: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// GetStockBalance returns one product's balance with its derived status.
func GetStockBalance(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetBalance(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ListStockBalances returns the balance read model: per-product statuses
// plus the summed inventory value. low_stock_only narrows to products at
// or below their minimum.
func ListStockBalances(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowStockOnly, err := validators.ParseQueryBool(r, "low_stock_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListBalances(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totalValue := decimal.Zero
		filtered := make([]inventory.BalanceView, 0, len(views))
		for _, view := range views {
			totalValue = totalValue.Add(view.Balance.UnitCost.Mul(decimal.NewFromInt(int64(view.Balance.CurrentStock))))
			if lowStockOnly && view.Status == enums.StockStatusInStock {
				continue
			}
			filtered = append(filtered, view)
		}

		responses.WriteSuccess(w, map[string]any{
			"balances":    filtered,
			"total_value": totalValue,
		})
	}
}

// UpdateStockSettings patches balance thresholds. Current stock is not
// writable here; it only moves through the ledger.
func UpdateStockSettings(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBalanceSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateBalanceSettings(r.Context(), inventory.UpdateBalanceSettingsInput{
			ProductID:    productID,
			MinimumStock: payload.MinimumStock,
			MaximumStock: payload.MaximumStock,
			ReorderPoint: payload.ReorderPoint,
			UnitCost:     payload.UnitCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ListStockMovements returns the movement history for a product, newest
// first, with cursor pagination.
func ListStockMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, next, err := svc.ListMovements(r.Context(), productID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"movements":   movements,
			"next_cursor": next,
		})
	}
}
