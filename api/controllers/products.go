package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tradeforge/tradedocs-backend/api/responses"
	"github.com/tradeforge/tradedocs-backend/api/validators"
	"github.com/tradeforge/tradedocs-backend/internal/products"
	pkgerrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
)

type createProductRequest struct {
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category" validate:"required"`
	Unit        string          `json:"unit" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type updateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// CreateProduct adds a catalog entry.
func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateProductInput{
			SKU:         payload.SKU,
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			Unit:        payload.Unit,
			UnitPrice:   payload.UnitPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns one catalog entry.
func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns a filtered, cursor-paginated page of products.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := products.ListFilter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			filter.Category = &raw
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("search")); raw != "" {
			filter.Search = &raw
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("is_active")); raw != "" {
			active, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid is_active"))
				return
			}
			filter.IsActive = &active
		}

		listed, next, err := svc.List(r.Context(), products.ListInput{
			Filter: filter,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"products":    listed,
			"next_cursor": next,
		})
	}
}

// UpdateProduct patches a catalog entry.
func UpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), products.UpdateProductInput{
			ID:          id,
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			Unit:        payload.Unit,
			UnitPrice:   payload.UnitPrice,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes an unreferenced catalog entry.
func DeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
