package counterparties

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service manages the customers and vendors documents are addressed to.
type Service interface {
	Create(ctx context.Context, input CreateCounterpartyInput) (*models.Counterparty, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Counterparty, error)
	List(ctx context.Context, input ListInput) ([]models.Counterparty, string, error)
	Update(ctx context.Context, input UpdateCounterpartyInput) (*models.Counterparty, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCounterpartyInput captures a new customer or vendor.
type CreateCounterpartyInput struct {
	Kind      enums.CounterpartyKind
	Name      string
	Email     string
	Phone     *string
	Address   *string
	TaxNumber *string
}

// UpdateCounterpartyInput patches an existing counterparty. The kind is
// immutable: a customer never becomes a vendor.
type UpdateCounterpartyInput struct {
	ID        uuid.UUID
	Name      *string
	Email     *string
	Phone     *string
	Address   *string
	TaxNumber *string
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

// NewService wires the counterparty service.
func NewService(client *db.Client, repo Repository, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("counterparty repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateCounterpartyInput) (*models.Counterparty, error) {
	if !input.Kind.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid counterparty kind %q", input.Kind))
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email is required")
	}

	counterparty := &models.Counterparty{
		ID:        uuid.New(),
		Kind:      input.Kind,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     input.Phone,
		Address:   input.Address,
		TaxNumber: input.TaxNumber,
	}
	if err := s.repo.Create(ctx, counterparty); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "counterparty_id", counterparty.ID.String()), "counterparty created")
	return counterparty, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Counterparty, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "counterparty id is required")
	}
	counterparty, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("counterparty %s not found", id))
		}
		return nil, err
	}
	return counterparty, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Counterparty, string, error) {
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

func (s *service) Update(ctx context.Context, input UpdateCounterpartyInput) (*models.Counterparty, error) {
	if input.ID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "counterparty id is required")
	}

	patch := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "name must not be empty")
		}
		patch["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		if strings.TrimSpace(*input.Email) == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "email must not be empty")
		}
		patch["email"] = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		patch["phone"] = *input.Phone
	}
	if input.Address != nil {
		patch["address"] = *input.Address
	}
	if input.TaxNumber != nil {
		patch["tax_number"] = *input.TaxNumber
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

// Delete removes a counterparty that no document references.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	counterparty, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		referenced, err := repo.HasDocuments(ctx, counterparty.ID)
		if err != nil {
			return err
		}
		if referenced {
			return apperrors.New(
				apperrors.CodeStateConflict,
				fmt.Sprintf("counterparty %s has documents and cannot be deleted", counterparty.Name),
			)
		}
		return repo.Delete(ctx, counterparty.ID)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithField(ctx, "counterparty_id", counterparty.ID.String()), "counterparty deleted")
	return nil
}
