package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradeforge/tradedocs-backend/internal/counterparties"
	"github.com/tradeforge/tradedocs-backend/internal/documents"
	"github.com/tradeforge/tradedocs-backend/internal/inventory"
	"github.com/tradeforge/tradedocs-backend/internal/products"
	pkgauth "github.com/tradeforge/tradedocs-backend/pkg/auth"
	"github.com/tradeforge/tradedocs-backend/pkg/config"
	"github.com/tradeforge/tradedocs-backend/pkg/db/models"
	"github.com/tradeforge/tradedocs-backend/pkg/enums"
	"github.com/tradeforge/tradedocs-backend/pkg/pagination"
	"github.com/tradeforge/tradedocs-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubDocumentService struct {
	listed []models.Document
}

func (s *stubDocumentService) Create(context.Context, documents.CreateDocumentInput) (*models.Document, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentService) Get(context.Context, uuid.UUID) (*models.Document, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentService) GetView(context.Context, uuid.UUID) (*documents.DocumentView, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentService) List(context.Context, documents.ListInput) ([]models.Document, string, error) {
	return s.listed, "", nil
}

func (s *stubDocumentService) UpdateItems(context.Context, documents.UpdateItemsInput) (*models.Document, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentService) TransitionStatus(context.Context, documents.TransitionInput) (*models.Document, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDocumentService) Delete(context.Context, uuid.UUID) error {
	return nil
}

func (s *stubDocumentService) Render(context.Context, uuid.UUID, documents.Renderer) ([]byte, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubInventoryService struct{}

func (stubInventoryService) PostMovement(context.Context, inventory.PostMovementInput) (*models.StockMovement, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubInventoryService) PostMovementWithTx(context.Context, *gorm.DB, inventory.PostMovementInput) (*models.StockMovement, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubInventoryService) GetBalance(context.Context, uuid.UUID) (*inventory.BalanceView, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubInventoryService) ListBalances(context.Context, int) ([]inventory.BalanceView, error) {
	return nil, nil
}

func (stubInventoryService) UpdateBalanceSettings(context.Context, inventory.UpdateBalanceSettingsInput) (*inventory.BalanceView, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubInventoryService) ListMovements(context.Context, uuid.UUID, pagination.Params) ([]models.StockMovement, string, error) {
	return nil, "", nil
}

func (stubInventoryService) HasMovementsForReference(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (stubInventoryService) HasMovementsForReferenceWithTx(context.Context, *gorm.DB, uuid.UUID) (bool, error) {
	return false, nil
}

type stubProductService struct{}

func (stubProductService) Create(context.Context, products.CreateProductInput) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubProductService) Get(context.Context, uuid.UUID) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubProductService) List(context.Context, products.ListInput) ([]models.Product, string, error) {
	return nil, "", nil
}

func (stubProductService) Update(context.Context, products.UpdateProductInput) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubProductService) Delete(context.Context, uuid.UUID) error {
	return nil
}

type stubCounterpartyService struct{}

func (stubCounterpartyService) Create(context.Context, counterparties.CreateCounterpartyInput) (*models.Counterparty, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubCounterpartyService) Get(context.Context, uuid.UUID) (*models.Counterparty, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubCounterpartyService) List(context.Context, counterparties.ListInput) ([]models.Counterparty, string, error) {
	return nil, "", nil
}

func (stubCounterpartyService) Update(context.Context, counterparties.UpdateCounterpartyInput) (*models.Counterparty, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubCounterpartyService) Delete(context.Context, uuid.UUID) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "tradedocs", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T, docs documents.Service) http.Handler {
	t.Helper()
	return NewRouter(testConfig(), nil, stubPinger{}, nil, prometheus.NewRegistry(), docs, stubInventoryService{}, stubProductService{}, stubCounterpartyService{})
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, &stubDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-TradeDocs-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t, &stubDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t, &stubDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListDocumentsThroughRouter(t *testing.T) {
	doc := models.Document{
		ID:          uuid.New(),
		Type:        enums.DocumentTypeOrder,
		Number:      "ORD-20260815-AAAA1111",
		Status:      enums.DocumentStatusDraft,
		TotalAmount: decimal.RequireFromString("75.78"),
	}
	router := newTestRouter(t, &stubDocumentService{listed: []models.Document{doc}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testConfig()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	payload, ok := body.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload %T", body.Data)
	}
	listed, ok := payload["documents"].([]any)
	if !ok || len(listed) != 1 {
		t.Fatalf("expected one document, got %v", payload["documents"])
	}
}

func TestPublicPing(t *testing.T) {
	router := newTestRouter(t, &stubDocumentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMasterDataRoutesMounted(t *testing.T) {
	router := newTestRouter(t, &stubDocumentService{})
	token := mintToken(t, testConfig())

	for _, path := range []string{"/api/v1/products", "/api/v1/counterparties"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}
