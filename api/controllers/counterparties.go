package controllers

import (
	"net/http"
	"strings"

	"github.com/tradeforge/tradedocs-backend/api/responses"
	"github.com/tradeforge/tradedocs-backend/api/validators"
	"github.com/tradeforge/tradedocs-backend/internal/counterparties"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
)

type createCounterpartyRequest struct {
	Kind      string  `json:"kind" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	TaxNumber *string `json:"tax_number,omitempty"`
}

type updateCounterpartyRequest struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	TaxNumber *string `json:"tax_number,omitempty"`
}

// CreateCounterparty registers a customer or vendor.
func CreateCounterparty(svc counterparties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCounterpartyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counterparty, err := svc.Create(r.Context(), counterparties.CreateCounterpartyInput{
			Kind:      enums.CounterpartyKind(strings.TrimSpace(payload.Kind)),
			Name:      payload.Name,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Address:   payload.Address,
			TaxNumber: payload.TaxNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, counterparty)
	}
}

// GetCounterparty returns one customer or vendor.
func GetCounterparty(svc counterparties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "counterpartyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counterparty, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, counterparty)
	}
}

// ListCounterparties returns a filtered, cursor-paginated page.
func ListCounterparties(svc counterparties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := counterparties.ListFilter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind := enums.CounterpartyKind(raw)
			if !kind.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind"))
				return
			}
			filter.Kind = &kind
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("search")); raw != "" {
			filter.Search = &raw
		}

		listed, next, err := svc.List(r.Context(), counterparties.ListInput{
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
			"counterparties": listed,
			"next_cursor":    next,
		})
	}
}

// UpdateCounterparty patches contact fields. The kind is immutable.
func UpdateCounterparty(svc counterparties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "counterpartyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCounterpartyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counterparty, err := svc.Update(r.Context(), counterparties.UpdateCounterpartyInput{
			ID:        id,
			Name:      payload.Name,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Address:   payload.Address,
			TaxNumber: payload.TaxNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, counterparty)
	}
}

// DeleteCounterparty removes a counterparty no document references.
func DeleteCounterparty(svc counterparties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "counterpartyId")
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
