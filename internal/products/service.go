package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service manages the product catalog that documents and the inventory
// ledger reference.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, input ListInput) ([]models.Product, string, error)
	Update(ctx context.Context, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput captures a new catalog entry.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description *string
	Category    string
	Unit        string
	UnitPrice   decimal.Decimal
}

// UpdateProductInput patches an existing product. Nil fields are untouched.
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Category    *string
	Unit        *string
	UnitPrice   *decimal.Decimal
	IsActive    *bool
}

// ListInput pairs a filter with cursor pagination.
type ListInput struct {
	Filter     ListFilter
	Pagination pagination.Params
}

type service struct {
	client *db.Client
	repo   Repository
	logg   *logger.Logger
}

// NewService wires the product catalog service.
func NewService(client *db.Client, repo Repository, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		SKU:         strings.TrimSpace(input.SKU),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Unit:        strings.TrimSpace(input.Unit),
		UnitPrice:   input.UnitPrice,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, apperrors.New(apperrors.CodeConflict, fmt.Sprintf("sku %q already exists", product.SKU))
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithProductID(ctx, product.ID.String()), "product created")
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("product %s not found", id))
		}
		return nil, err
	}
	return product, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	listed, err := s.repo.List(ctx, input.Filter, limit+1, cursor)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(listed) > limit {
		listed = listed[:limit]
		last := listed[len(listed)-1]
		next = pagination.NextCursor(last.CreatedAt, last.ID)
	}
	return listed, next, nil
}

func (s *service) Update(ctx context.Context, input UpdateProductInput) (*models.Product, error) {
	if input.ID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}

	patch := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "name must not be empty")
		}
		patch["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		patch["description"] = *input.Description
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "category must not be empty")
		}
		patch["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Unit != nil {
		if strings.TrimSpace(*input.Unit) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "unit must not be empty")
		}
		patch["unit"] = strings.TrimSpace(*input.Unit)
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, apperrors.New(apperrors.CodeValidation, "unit price must not be negative")
		}
		patch["unit_price"] = *input.UnitPrice
	}
	if input.IsActive != nil {
		patch["is_active"] = *input.IsActive
	}
	if len(patch) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "no fields provided")
	}

	if _, err := s.Get(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, input.ID, patch); err != nil {
		return nil, err
	}
	return s.Get(ctx, input.ID)
}

// Delete removes a product no document line or ledger entry references.
// Referenced products must be deactivated through Update instead.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		referenced, err := repo.IsReferenced(ctx, product.ID)
		if err != nil {
			return err
		}
		if referenced {
			return apperrors.New(
				apperrors.CodeStateConflict,
				fmt.Sprintf("product %s is referenced by documents or movements; deactivate it instead", product.SKU),
			)
		}
		return repo.Delete(ctx, product.ID)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithProductID(ctx, product.ID.String()), "product deleted")
	return nil
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return apperrors.New(apperrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.New(apperrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return apperrors.New(apperrors.CodeValidation, "category is required")
	}
	if strings.TrimSpace(input.Unit) == "" {
		return apperrors.New(apperrors.CodeValidation, "unit is required")
	}
	if input.UnitPrice.IsNegative() {
		return apperrors.New(apperrors.CodeValidation, "unit price must not be negative")
	}
	return nil
}
