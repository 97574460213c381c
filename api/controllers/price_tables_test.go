package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmoraes/clinicore-backend/internal/pricing"
)

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return parsed
}

type testPricingService struct {
	resolveFn      func(ctx context.Context, clinicID, itemID uuid.UUID, asOf time.Time) (pricing.PriceResolution, error)
	createTableFn  func(ctx context.Context, clinicID uuid.UUID, input pricing.CreatePriceTableInput) (*pricing.PriceTableDTO, error)
	setDefaultFn   func(ctx context.Context, clinicID, tableID uuid.UUID) error
	createEntryFn  func(ctx context.Context, clinicID, tableID uuid.UUID, input pricing.CreatePriceEntryInput) (*pricing.PriceEntryDTO, error)
	createCampFn   func(ctx context.Context, clinicID uuid.UUID, input pricing.CreateCampaignInput) (*pricing.CampaignDTO, error)
	listCampaignFn func(ctx context.Context, clinicID uuid.UUID) ([]pricing.CampaignDTO, error)
}

func (s *testPricingService) ResolveCurrentPrice(ctx context.Context, clinicID, itemID uuid.UUID, asOf time.Time) (pricing.PriceResolution, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, clinicID, itemID, asOf)
	}
	return pricing.PriceResolution{}, nil
}

func (s *testPricingService) BestDiscount(ctx context.Context, clinicID, itemID uuid.UUID, basePriceCents int, asOf time.Time) (pricing.DiscountResolution, error) {
	return pricing.DiscountResolution{}, nil
}

func (s *testPricingService) CreatePriceTable(ctx context.Context, clinicID uuid.UUID, input pricing.CreatePriceTableInput) (*pricing.PriceTableDTO, error) {
	if s.createTableFn != nil {
		return s.createTableFn(ctx, clinicID, input)
	}
	return &pricing.PriceTableDTO{}, nil
}

func (s *testPricingService) UpdatePriceTable(ctx context.Context, clinicID, tableID uuid.UUID, input pricing.UpdatePriceTableInput) (*pricing.PriceTableDTO, error) {
	return &pricing.PriceTableDTO{}, nil
}

func (s *testPricingService) GetPriceTable(ctx context.Context, clinicID, tableID uuid.UUID) (*pricing.PriceTableDTO, error) {
	return &pricing.PriceTableDTO{}, nil
}

func (s *testPricingService) ListPriceTables(ctx context.Context, clinicID uuid.UUID) ([]pricing.PriceTableDTO, error) {
	return nil, nil
}

func (s *testPricingService) SetDefaultPriceTable(ctx context.Context, clinicID, tableID uuid.UUID) error {
	if s.setDefaultFn != nil {
		return s.setDefaultFn(ctx, clinicID, tableID)
	}
	return nil
}

func (s *testPricingService) AddPriceEntry(ctx context.Context, clinicID, tableID uuid.UUID, input pricing.CreatePriceEntryInput) (*pricing.PriceEntryDTO, error) {
	if s.createEntryFn != nil {
		return s.createEntryFn(ctx, clinicID, tableID, input)
	}
	return &pricing.PriceEntryDTO{}, nil
}

func (s *testPricingService) ListPriceEntries(ctx context.Context, clinicID, tableID uuid.UUID) ([]pricing.PriceEntryDTO, error) {
	return nil, nil
}

func (s *testPricingService) DeactivatePriceEntry(ctx context.Context, clinicID, entryID uuid.UUID) error {
	return nil
}

func (s *testPricingService) CreateCampaign(ctx context.Context, clinicID uuid.UUID, input pricing.CreateCampaignInput) (*pricing.CampaignDTO, error) {
	if s.createCampFn != nil {
		return s.createCampFn(ctx, clinicID, input)
	}
	return &pricing.CampaignDTO{}, nil
}

func (s *testPricingService) UpdateCampaign(ctx context.Context, clinicID, campaignID uuid.UUID, input pricing.UpdateCampaignInput) (*pricing.CampaignDTO, error) {
	return &pricing.CampaignDTO{}, nil
}

func (s *testPricingService) GetCampaign(ctx context.Context, clinicID, campaignID uuid.UUID) (*pricing.CampaignDTO, error) {
	return &pricing.CampaignDTO{}, nil
}

func (s *testPricingService) ListCampaigns(ctx context.Context, clinicID uuid.UUID) ([]pricing.CampaignDTO, error) {
	if s.listCampaignFn != nil {
		return s.listCampaignFn(ctx, clinicID)
	}
	return nil, nil
}

func (s *testPricingService) ListActiveCampaigns(ctx context.Context, clinicID uuid.UUID, asOf time.Time) ([]pricing.CampaignDTO, error) {
	return nil, nil
}

func TestPriceTableCreateSuccess(t *testing.T) {
	clinicID := uuid.New()
	var gotInput pricing.CreatePriceTableInput
	svc := &testPricingService{
		createTableFn: func(_ context.Context, cid uuid.UUID, input pricing.CreatePriceTableInput) (*pricing.PriceTableDTO, error) {
			if cid != clinicID {
				t.Fatalf("unexpected clinic %s", cid)
			}
			gotInput = input
			return &pricing.PriceTableDTO{ID: uuid.New(), Name: input.Name, IsDefault: input.IsDefault}, nil
		},
	}

	body := `{"name":"Particular 2025","isDefault":true}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/price-tables", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	PriceTableCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.Name != "Particular 2025" || !gotInput.IsDefault {
		t.Fatalf("unexpected input %+v", gotInput)
	}
}

func TestPriceTableCreateRejectsUnknownFields(t *testing.T) {
	clinicID := uuid.New()
	body := `{"name":"Tabela","unknown":true}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/price-tables", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	PriceTableCreate(&testPricingService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPriceTableSetDefault(t *testing.T) {
	clinicID := uuid.New()
	tableID := uuid.New()
	called := false
	svc := &testPricingService{
		setDefaultFn: func(_ context.Context, cid, tid uuid.UUID) error {
			called = true
			if cid != clinicID || tid != tableID {
				t.Fatalf("unexpected args %s/%s", cid, tid)
			}
			return nil
		},
	}

	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/price-tables/"+tableID.String()+"/default", nil), clinicID)
	req = addRouteParam(req, "tableId", tableID.String())
	resp := httptest.NewRecorder()
	PriceTableSetDefault(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestPriceEntryCreateValidatesAmount(t *testing.T) {
	clinicID := uuid.New()
	tableID := uuid.New()
	body := `{"itemId":"` + uuid.NewString() + `","amountCents":-5,"validFrom":"2025-01-01T00:00:00Z"}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/price-tables/"+tableID.String()+"/entries", strings.NewReader(body)), clinicID)
	req = addRouteParam(req, "tableId", tableID.String())
	resp := httptest.NewRecorder()
	PriceEntryCreate(&testPricingService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPriceResolveReturnsNotFoundWithoutPrice(t *testing.T) {
	clinicID := uuid.New()
	itemID := uuid.New()
	svc := &testPricingService{
		resolveFn: func(_ context.Context, _, _ uuid.UUID, _ time.Time) (pricing.PriceResolution, error) {
			return pricing.PriceResolution{}, nil
		},
	}

	req := withClinic(httptest.NewRequest(http.MethodGet, "/api/v1/items/"+itemID.String()+"/price", nil), clinicID)
	req = addRouteParam(req, "itemId", itemID.String())
	resp := httptest.NewRecorder()
	PriceResolve(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestPriceResolveUsesQueryAsOf(t *testing.T) {
	clinicID := uuid.New()
	itemID := uuid.New()
	entryID := uuid.New()
	asOf := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	svc := &testPricingService{
		resolveFn: func(_ context.Context, _, _ uuid.UUID, got time.Time) (pricing.PriceResolution, error) {
			if !got.Equal(asOf) {
				t.Fatalf("expected asOf %v got %v", asOf, got)
			}
			return pricing.PriceResolution{Found: true, AmountCents: 12000, EntryID: entryID}, nil
		},
	}

	req := withClinic(httptest.NewRequest(http.MethodGet, "/api/v1/items/"+itemID.String()+"/price?as_of=2025-03-10T00:00:00Z", nil), clinicID)
	req = addRouteParam(req, "itemId", itemID.String())
	resp := httptest.NewRecorder()
	PriceResolve(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			AmountCents int `json:"amountCents"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AmountCents != 12000 {
		t.Fatalf("expected 12000 got %d", envelope.Data.AmountCents)
	}
}

func TestCampaignCreateRejectsUnknownType(t *testing.T) {
	clinicID := uuid.New()
	body := `{"name":"Agosto","discountType":"bogus","discountValue":"10","validFrom":"2025-08-01T00:00:00Z","validTo":"2025-08-31T23:59:59Z"}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	CampaignCreate(&testPricingService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCampaignCreateParsesScope(t *testing.T) {
	clinicID := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()

	var gotInput pricing.CreateCampaignInput
	svc := &testPricingService{
		createCampFn: func(_ context.Context, _ uuid.UUID, input pricing.CreateCampaignInput) (*pricing.CampaignDTO, error) {
			gotInput = input
			return &pricing.CampaignDTO{ID: uuid.New(), Name: input.Name}, nil
		},
	}

	body := `{"name":"Agosto","discountType":"percentage","discountValue":"10","itemScope":["` + itemA.String() + `","` + itemB.String() + `"],"validFrom":"2025-08-01T00:00:00Z","validTo":"2025-08-31T23:59:59Z"}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	CampaignCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(gotInput.ItemScope) != 2 || gotInput.ItemScope[0] != itemA || gotInput.ItemScope[1] != itemB {
		t.Fatalf("unexpected scope %v", gotInput.ItemScope)
	}
	if !gotInput.DiscountValue.Equal(decimalFromString(t, "10")) {
		t.Fatalf("unexpected discount value %s", gotInput.DiscountValue)
	}
}
