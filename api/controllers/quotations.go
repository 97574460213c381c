package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/api/responses"
	"github.com/lucasmoraes/clinicore-backend/api/validators"
	"github.com/lucasmoraes/clinicore-backend/internal/quotations"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
	"github.com/lucasmoraes/clinicore-backend/pkg/types"
)

type quotationCalculateRequest struct {
	ItemIDs []string   `json:"itemIds" validate:"required,min=1"`
	AsOf    *time.Time `json:"asOf"`
}

type quotationCustomerRequest struct {
	Name      string `json:"name" validate:"required,max=160"`
	Document  string `json:"document"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	PatientID string `json:"patientId"`
}

type quotationCreateRequest struct {
	Customer                   quotationCustomerRequest `json:"customer" validate:"required"`
	ItemIDs                    []string                 `json:"itemIds" validate:"required,min=1"`
	AsOf                       *time.Time               `json:"asOf"`
	ValidUntil                 *time.Time               `json:"validUntil"`
	Notes                      *string                  `json:"notes"`
	DiscountTotalCentsOverride *int                     `json:"discountTotalCentsOverride"`
	TotalCentsOverride         *int                     `json:"totalCentsOverride"`
}

type quotationConvertRequest struct {
	ConversionRef string `json:"conversionRef" validate:"required,uuid"`
}

func parseItemIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "itemIds entries must be valid uuids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// QuotationCalculate prices a basket without persisting anything.
func QuotationCalculate(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quotationCalculateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemIDs, err := parseItemIDs(payload.ItemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Calculate(r.Context(), clinicID, quotations.CalculateInput{
			ItemIDs: itemIDs,
			AsOf:    payload.AsOf,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// QuotationCreate persists a quotation with a freshly allocated number.
func QuotationCreate(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quotationCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemIDs, err := parseItemIDs(payload.ItemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), clinicID, quotations.CreateQuotationInput{
			Customer: types.CustomerSnapshot{
				Name:      strings.TrimSpace(payload.Customer.Name),
				Document:  strings.TrimSpace(payload.Customer.Document),
				Email:     strings.TrimSpace(payload.Customer.Email),
				Phone:     strings.TrimSpace(payload.Customer.Phone),
				PatientID: strings.TrimSpace(payload.Customer.PatientID),
			},
			ItemIDs:                    itemIDs,
			AsOf:                       payload.AsOf,
			ValidUntil:                 payload.ValidUntil,
			Notes:                      payload.Notes,
			DiscountTotalCentsOverride: payload.DiscountTotalCentsOverride,
			TotalCentsOverride:         payload.TotalCentsOverride,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// QuotationGet returns one quotation with its line items.
func QuotationGet(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotationID, err := routeUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotation, err := svc.Get(r.Context(), clinicID, quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quotation)
	}
}

// QuotationList returns quotations for the clinic, optionally filtered by
// status.
func QuotationList(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := quotations.ListFilter{Limit: limit, Offset: offset}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseQuotationStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		list, err := svc.List(r.Context(), clinicID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type transitionFunc func(svc quotations.Service, r *http.Request, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error)

func quotationTransition(svc quotations.Service, logg *logger.Logger, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quotationID, err := routeUUID(r, "quotationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := fn(svc, r, clinicID, quotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// QuotationApprove marks a pending quotation as accepted by the customer.
func QuotationApprove(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return quotationTransition(svc, logg, func(svc quotations.Service, r *http.Request, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
		return svc.Approve(r.Context(), clinicID, quotationID)
	})
}

// QuotationReject marks a pending quotation as declined.
func QuotationReject(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return quotationTransition(svc, logg, func(svc quotations.Service, r *http.Request, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
		return svc.Reject(r.Context(), clinicID, quotationID)
	})
}

// QuotationConvert ties a quotation to the downstream record it became.
func QuotationConvert(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return quotationTransition(svc, logg, func(svc quotations.Service, r *http.Request, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
		var payload quotationConvertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		conversionRef, err := uuidFromString(payload.ConversionRef, "conversionRef")
		if err != nil {
			return nil, err
		}
		return svc.Convert(r.Context(), clinicID, quotationID, conversionRef)
	})
}

// QuotationCancel withdraws a quotation.
func QuotationCancel(svc quotations.Service, logg *logger.Logger) http.HandlerFunc {
	return quotationTransition(svc, logg, func(svc quotations.Service, r *http.Request, clinicID, quotationID uuid.UUID) (*quotations.QuotationDTO, error) {
		return svc.Cancel(r.Context(), clinicID, quotationID)
	})
}
