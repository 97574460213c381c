package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/internal/pricing"
	"github.com/lucasmoraes/clinicore-backend/internal/quotations"
	"github.com/lucasmoraes/clinicore-backend/pkg/config"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubPricingService struct{}

func (stubPricingService) ResolveCurrentPrice(context.Context, uuid.UUID, uuid.UUID, time.Time) (pricing.PriceResolution, error) {
	return pricing.PriceResolution{Found: true, AmountCents: 10000, EntryID: uuid.New()}, nil
}

func (stubPricingService) BestDiscount(context.Context, uuid.UUID, uuid.UUID, int, time.Time) (pricing.DiscountResolution, error) {
	return pricing.DiscountResolution{}, nil
}

func (stubPricingService) CreatePriceTable(context.Context, uuid.UUID, pricing.CreatePriceTableInput) (*pricing.PriceTableDTO, error) {
	return &pricing.PriceTableDTO{}, nil
}

func (stubPricingService) UpdatePriceTable(context.Context, uuid.UUID, uuid.UUID, pricing.UpdatePriceTableInput) (*pricing.PriceTableDTO, error) {
	return &pricing.PriceTableDTO{}, nil
}

func (stubPricingService) GetPriceTable(context.Context, uuid.UUID, uuid.UUID) (*pricing.PriceTableDTO, error) {
	return &pricing.PriceTableDTO{}, nil
}

func (stubPricingService) ListPriceTables(context.Context, uuid.UUID) ([]pricing.PriceTableDTO, error) {
	return nil, nil
}

func (stubPricingService) SetDefaultPriceTable(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubPricingService) AddPriceEntry(context.Context, uuid.UUID, uuid.UUID, pricing.CreatePriceEntryInput) (*pricing.PriceEntryDTO, error) {
	return &pricing.PriceEntryDTO{}, nil
}

func (stubPricingService) ListPriceEntries(context.Context, uuid.UUID, uuid.UUID) ([]pricing.PriceEntryDTO, error) {
	return nil, nil
}

func (stubPricingService) DeactivatePriceEntry(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubPricingService) CreateCampaign(context.Context, uuid.UUID, pricing.CreateCampaignInput) (*pricing.CampaignDTO, error) {
	return &pricing.CampaignDTO{}, nil
}

func (stubPricingService) UpdateCampaign(context.Context, uuid.UUID, uuid.UUID, pricing.UpdateCampaignInput) (*pricing.CampaignDTO, error) {
	return &pricing.CampaignDTO{}, nil
}

func (stubPricingService) GetCampaign(context.Context, uuid.UUID, uuid.UUID) (*pricing.CampaignDTO, error) {
	return &pricing.CampaignDTO{}, nil
}

func (stubPricingService) ListCampaigns(context.Context, uuid.UUID) ([]pricing.CampaignDTO, error) {
	return nil, nil
}

func (stubPricingService) ListActiveCampaigns(context.Context, uuid.UUID, time.Time) ([]pricing.CampaignDTO, error) {
	return nil, nil
}

type stubQuotationsService struct{}

func (stubQuotationsService) Calculate(context.Context, uuid.UUID, quotations.CalculateInput) (*quotations.CalculationResult, error) {
	return &quotations.CalculationResult{}, nil
}

func (stubQuotationsService) Create(context.Context, uuid.UUID, quotations.CreateQuotationInput) (*quotations.CreatedQuotation, error) {
	return &quotations.CreatedQuotation{ID: uuid.New(), Number: "QT-20250815-0001"}, nil
}

func (stubQuotationsService) Get(context.Context, uuid.UUID, uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (stubQuotationsService) List(context.Context, uuid.UUID, quotations.ListFilter) ([]quotations.QuotationDTO, error) {
	return nil, nil
}

func (stubQuotationsService) Approve(context.Context, uuid.UUID, uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (stubQuotationsService) Reject(context.Context, uuid.UUID, uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (stubQuotationsService) Convert(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (stubQuotationsService) Cancel(context.Context, uuid.UUID, uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (stubQuotationsService) Expire(context.Context, uuid.UUID, uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (stubQuotationsService) ExpireDue(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, stubPinger{}, stubPricingService{}, stubQuotationsService{})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestRouterRequiresClinicHeader(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterServesClinicScopedRoutes(t *testing.T) {
	router := newTestRouter()
	clinicID := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("X-Clinic-Id", clinicID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["clinic_id"] != clinicID {
		t.Fatalf("expected clinic %s got %s", clinicID, envelope.Data["clinic_id"])
	}
}

func TestRouterSetsRequestID(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected request id header on every response")
	}
}

func TestRouterQuotationResolveRoute(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/"+uuid.NewString()+"/price", nil)
	req.Header.Set("X-Clinic-Id", uuid.NewString())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
