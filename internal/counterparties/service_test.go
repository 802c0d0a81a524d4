package counterparties

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tradeforge/tradedocs-backend/pkg/db"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	apperrors "github.com/tradeforge/tradedocs-backend/pkg/errors"
	"github.com/tradeforge/tradedocs-backend/pkg/logger"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupCounterpartiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "counterparties.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS counterparties (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  tax_number TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS documents (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  number TEXT NOT NULL UNIQUE,
  counterparty_id TEXT NOT NULL,
  status TEXT NOT NULL,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  valid_until DATETIME,
  delivery_date DATETIME,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, gormDB.Exec(stmt).Error)
	}
	return gormDB
}

func newCounterpartiesService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	gormDB := setupCounterpartiesTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(db.NewFromGorm(gormDB), NewRepository(gormDB), logg)
	require.NoError(t, err)
	return svc, gormDB
}

func TestCreateAndGetCounterparty(t *testing.T) {
	svc, _ := newCounterpartiesService(t)
	ctx := context.Background()

	phone := "+49 30 1234567"
	created, err := svc.Create(ctx, CreateCounterpartyInput{
		Kind:  enums.CounterpartyKindCustomer,
		Name:  "Acme Imports",
		Email: "buyer@acme.test",
		Phone: &phone,
	})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, enums.CounterpartyKindCustomer, fetched.Kind)
	require.Equal(t, "Acme Imports", fetched.Name)
	require.NotNil(t, fetched.Phone)
}

func TestCreateCounterpartyValidation(t *testing.T) {
	svc, _ := newCounterpartiesService(t)
	ctx := context.Background()

	cases := []CreateCounterpartyInput{
		{Kind: enums.CounterpartyKind("partner"), Name: "Acme", Email: "a@b.test"},
		{Kind: enums.CounterpartyKindVendor, Email: "a@b.test"},
		{Kind: enums.CounterpartyKindVendor, Name: "Acme"},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		require.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "input %+v got %v", input, err)
	}
}

func TestUpdateCounterpartyPatchesFields(t *testing.T) {
	svc, _ := newCounterpartiesService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCounterpartyInput{
		Kind:  enums.CounterpartyKindVendor,
		Name:  "Supply Co",
		Email: "sales@supply.test",
	})
	require.NoError(t, err)

	name := "Supply Co GmbH"
	taxNumber := "DE123456789"
	updated, err := svc.Update(ctx, UpdateCounterpartyInput{
		ID:        created.ID,
		Name:      &name,
		TaxNumber: &taxNumber,
	})
	require.NoError(t, err)
	require.Equal(t, "Supply Co GmbH", updated.Name)
	require.NotNil(t, updated.TaxNumber)
	require.Equal(t, taxNumber, *updated.TaxNumber)
	require.Equal(t, enums.CounterpartyKindVendor, updated.Kind)
}

func TestListCounterpartiesByKind(t *testing.T) {
	svc, _ := newCounterpartiesService(t)
	ctx := context.Background()

	for i, kind := range []enums.CounterpartyKind{
		enums.CounterpartyKindCustomer,
		enums.CounterpartyKindCustomer,
		enums.CounterpartyKindVendor,
	} {
		_, err := svc.Create(ctx, CreateCounterpartyInput{
			Kind:  kind,
			Name:  "Party",
			Email: "party@test.test",
		})
		require.NoError(t, err, "create %d", i)
	}

	vendorKind := enums.CounterpartyKindVendor
	vendors, _, err := svc.List(ctx, ListInput{
		Filter:     ListFilter{Kind: &vendorKind},
		Pagination: pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	require.Equal(t, enums.CounterpartyKindVendor, vendors[0].Kind)
}

func TestDeleteCounterpartyBlockedByDocuments(t *testing.T) {
	svc, gormDB := newCounterpartiesService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCounterpartyInput{
		Kind:  enums.CounterpartyKindCustomer,
		Name:  "Acme Imports",
		Email: "buyer@acme.test",
	})
	require.NoError(t, err)

	doc := models.Document{
		ID:             uuid.New(),
		Type:           enums.DocumentTypeOrder,
		Number:         "ORD-20260815-AAAA1111",
		CounterpartyID: created.ID,
		Status:         enums.DocumentStatusDraft,
		CreatedBy:      uuid.New(),
	}
	require.NoError(t, gormDB.Create(&doc).Error)

	err = svc.Delete(ctx, created.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStateConflict), "got %v", err)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err, "counterparty must survive a blocked delete")
}

func TestDeleteCounterpartyUnreferenced(t *testing.T) {
	svc, _ := newCounterpartiesService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCounterpartyInput{
		Kind:  enums.CounterpartyKindVendor,
		Name:  "Supply Co",
		Email: "sales@supply.test",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound), "got %v", err)
}
