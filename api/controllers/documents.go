package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradeforge/tradedocs-backend/api/middleware"
	"github.com/tradeforge/tradedocs-backend/api/responses"
	"github.com/tradeforge/tradedocs-backend/api/validators"
	"github.com/tradeforge/tradedocs-backend/internal/documents"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	pkgerrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

type documentItemRequest struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"required"`
	Quantity        int             `json:"quantity" validate:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" validate:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
}

type createDocumentRequest struct {
	Type           string                `json:"type" validate:"required"`
	CounterpartyID uuid.UUID             `json:"counterparty_id" validate:"required"`
	Items          []documentItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes          *string               `json:"notes,omitempty"`
	ValidUntil     *time.Time            `json:"valid_until,omitempty"`
	DeliveryDate   *time.Time            `json:"delivery_date,omitempty"`
}

type updateItemsRequest struct {
	Items []documentItemRequest `json:"items" validate:"required,min=1,dive"`
}

type transitionRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

func toItemInputs(items []documentItemRequest) []documents.ItemInput {
	inputs := make([]documents.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, documents.ItemInput{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxRate:         item.TaxRate,
		})
	}
	return inputs
}

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// CreateDocument handles document creation for every variant.
func CreateDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document service unavailable"))
			return
		}

		actor, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createDocumentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		docType, err := enums.ParseDocumentType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}

		doc, err := svc.Create(r.Context(), documents.CreateDocumentInput{
			Type:           docType,
			CounterpartyID: payload.CounterpartyID,
			Items:          toItemInputs(payload.Items),
			Notes:          payload.Notes,
			ValidUntil:     payload.ValidUntil,
			DeliveryDate:   payload.DeliveryDate,
			CreatedBy:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, doc)
	}
}

// GetDocument returns the enriched detail view.
func GetDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "documentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetView(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// ListDocuments returns a filtered, cursor-paginated page of documents.
func ListDocuments(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := documents.ListFilter{}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			docType, err := enums.ParseDocumentType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			filter.Type = &docType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.DocumentStatus(raw)
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("counterparty_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid counterparty_id"))
				return
			}
			filter.CounterpartyID = &id
		}

		docs, next, err := svc.List(r.Context(), documents.ListInput{
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
			"documents":   docs,
			"next_cursor": next,
		})
	}
}

// UpdateDocumentItems replaces the line item set of an editable document.
func UpdateDocumentItems(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "documentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.UpdateItems(r.Context(), documents.UpdateItemsInput{
			DocumentID: id,
			Items:      toItemInputs(payload.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// TransitionDocument moves a document along its lifecycle. Inventory
// postings triggered by the transition share its transaction.
func TransitionDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParseUUIDParam(r, "documentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.TransitionStatus(r.Context(), documents.TransitionInput{
			DocumentID: id,
			NewStatus:  enums.DocumentStatus(strings.TrimSpace(payload.Status)),
			Note:       payload.Note,
			ActorID:    actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// DeleteDocument removes a document that has no posted stock movements.
func DeleteDocument(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "documentId")
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
