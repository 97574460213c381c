package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/api/middleware"
	"github.com/lucasmoraes/clinicore-backend/internal/quotations"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

type testQuotationsService struct {
	calculateFn func(ctx context.Context, clinicID uuid.UUID, input quotations.CalculateInput) (*quotations.CalculationResult, error)
	createFn    func(ctx context.Context, clinicID uuid.UUID, input quotations.CreateQuotationInput) (*quotations.CreatedQuotation, error)
	getFn       func(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error)
	listFn      func(ctx context.Context, clinicID uuid.UUID, filter quotations.ListFilter) ([]quotations.QuotationDTO, error)
	approveFn   func(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error)
	convertFn   func(ctx context.Context, clinicID, quotationID, conversionRef uuid.UUID) (*quotations.QuotationDTO, error)
}

func (s *testQuotationsService) Calculate(ctx context.Context, clinicID uuid.UUID, input quotations.CalculateInput) (*quotations.CalculationResult, error) {
	if s.calculateFn != nil {
		return s.calculateFn(ctx, clinicID, input)
	}
	return &quotations.CalculationResult{}, nil
}

func (s *testQuotationsService) Create(ctx context.Context, clinicID uuid.UUID, input quotations.CreateQuotationInput) (*quotations.CreatedQuotation, error) {
	if s.createFn != nil {
		return s.createFn(ctx, clinicID, input)
	}
	return &quotations.CreatedQuotation{}, nil
}

func (s *testQuotationsService) Get(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, clinicID, quotationID)
	}
	return &quotations.QuotationDTO{}, nil
}

func (s *testQuotationsService) List(ctx context.Context, clinicID uuid.UUID, filter quotations.ListFilter) ([]quotations.QuotationDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx, clinicID, filter)
	}
	return nil, nil
}

func (s *testQuotationsService) Approve(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, clinicID, quotationID)
	}
	return &quotations.QuotationDTO{}, nil
}

func (s *testQuotationsService) Reject(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (s *testQuotationsService) Convert(ctx context.Context, clinicID, quotationID, conversionRef uuid.UUID) (*quotations.QuotationDTO, error) {
	if s.convertFn != nil {
		return s.convertFn(ctx, clinicID, quotationID, conversionRef)
	}
	return &quotations.QuotationDTO{}, nil
}

func (s *testQuotationsService) Cancel(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (s *testQuotationsService) Expire(ctx context.Context, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
	return &quotations.QuotationDTO{}, nil
}

func (s *testQuotationsService) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withClinic(req *http.Request, clinicID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithClinicID(req.Context(), clinicID.String()))
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestQuotationCreateSuccess(t *testing.T) {
	clinicID := uuid.New()
	itemID := uuid.New()
	created := &quotations.CreatedQuotation{ID: uuid.New(), Number: "QT-20250815-0042"}

	var gotInput quotations.CreateQuotationInput
	svc := &testQuotationsService{
		createFn: func(_ context.Context, cid uuid.UUID, input quotations.CreateQuotationInput) (*quotations.CreatedQuotation, error) {
			if cid != clinicID {
				t.Fatalf("unexpected clinic %s", cid)
			}
			gotInput = input
			return created, nil
		},
	}

	body := `{"customer":{"name":"Ana Souza"},"itemIds":["` + itemID.String() + `"]}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/quotations", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	QuotationCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.Customer.Name != "Ana Souza" {
		t.Fatalf("unexpected customer name %q", gotInput.Customer.Name)
	}
	if len(gotInput.ItemIDs) != 1 || gotInput.ItemIDs[0] != itemID {
		t.Fatalf("unexpected item ids %v", gotInput.ItemIDs)
	}

	var envelope struct {
		Data quotations.CreatedQuotation `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Number != created.Number {
		t.Fatalf("expected number %s got %s", created.Number, envelope.Data.Number)
	}
}

func TestQuotationCreateRequiresClinic(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotations", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	QuotationCreate(&testQuotationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestQuotationCreateRejectsBadItemID(t *testing.T) {
	clinicID := uuid.New()
	body := `{"customer":{"name":"Ana"},"itemIds":["nope"]}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/quotations", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	QuotationCreate(&testQuotationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestQuotationCalculatePassesAsOf(t *testing.T) {
	clinicID := uuid.New()
	itemID := uuid.New()
	asOf := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

	svc := &testQuotationsService{
		calculateFn: func(_ context.Context, _ uuid.UUID, input quotations.CalculateInput) (*quotations.CalculationResult, error) {
			if input.AsOf == nil || !input.AsOf.Equal(asOf) {
				t.Fatalf("expected asOf %v got %v", asOf, input.AsOf)
			}
			return &quotations.CalculationResult{AsOf: asOf, TotalCents: 10000}, nil
		},
	}

	body := `{"itemIds":["` + itemID.String() + `"],"asOf":"2025-08-15T12:00:00Z"}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/quotations/calculate", strings.NewReader(body)), clinicID)
	resp := httptest.NewRecorder()
	QuotationCalculate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestQuotationListParsesStatusFilter(t *testing.T) {
	clinicID := uuid.New()
	var gotFilter quotations.ListFilter
	svc := &testQuotationsService{
		listFn: func(_ context.Context, _ uuid.UUID, filter quotations.ListFilter) ([]quotations.QuotationDTO, error) {
			gotFilter = filter
			return nil, nil
		},
	}

	req := withClinic(httptest.NewRequest(http.MethodGet, "/api/v1/quotations?status=approved&limit=10&offset=20", nil), clinicID)
	resp := httptest.NewRecorder()
	QuotationList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotFilter.Status == nil || string(*gotFilter.Status) != "approved" {
		t.Fatalf("expected approved status filter, got %v", gotFilter.Status)
	}
	if gotFilter.Limit != 10 || gotFilter.Offset != 20 {
		t.Fatalf("unexpected pagination %d/%d", gotFilter.Limit, gotFilter.Offset)
	}
}

func TestQuotationListRejectsUnknownStatus(t *testing.T) {
	clinicID := uuid.New()
	req := withClinic(httptest.NewRequest(http.MethodGet, "/api/v1/quotations?status=bogus", nil), clinicID)
	resp := httptest.NewRecorder()
	QuotationList(&testQuotationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestQuotationConvertRequiresRef(t *testing.T) {
	clinicID := uuid.New()
	quotationID := uuid.New()

	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/quotations/"+quotationID.String()+"/convert", strings.NewReader(`{}`)), clinicID)
	req = addRouteParam(req, "quotationId", quotationID.String())
	resp := httptest.NewRecorder()
	QuotationConvert(&testQuotationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestQuotationConvertPassesRef(t *testing.T) {
	clinicID := uuid.New()
	quotationID := uuid.New()
	ref := uuid.New()

	var gotRef uuid.UUID
	svc := &testQuotationsService{
		convertFn: func(_ context.Context, _ uuid.UUID, qid, conversionRef uuid.UUID) (*quotations.QuotationDTO, error) {
			if qid != quotationID {
				t.Fatalf("unexpected quotation %s", qid)
			}
			gotRef = conversionRef
			return &quotations.QuotationDTO{ID: quotationID}, nil
		},
	}

	body := `{"conversionRef":"` + ref.String() + `"}`
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/quotations/"+quotationID.String()+"/convert", strings.NewReader(body)), clinicID)
	req = addRouteParam(req, "quotationId", quotationID.String())
	resp := httptest.NewRecorder()
	QuotationConvert(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotRef != ref {
		t.Fatalf("expected ref %s got %s", ref, gotRef)
	}
}

func TestQuotationApproveInvalidID(t *testing.T) {
	clinicID := uuid.New()
	req := withClinic(httptest.NewRequest(http.MethodPost, "/api/v1/quotations/nope/approve", nil), clinicID)
	req = addRouteParam(req, "quotationId", "nope")
	resp := httptest.NewRecorder()
	QuotationApprove(&testQuotationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
