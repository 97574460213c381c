package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmoraes/clinicore-backend/api/responses"
	"github.com/lucasmoraes/clinicore-backend/api/validators"
	"github.com/lucasmoraes/clinicore-backend/internal/pricing"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

type campaignCreateRequest struct {
	Name          string          `json:"name" validate:"required,max=160"`
	DiscountType  string          `json:"discountType" validate:"required"`
	DiscountValue decimal.Decimal `json:"discountValue" validate:"required"`
	ItemScope     []string        `json:"itemScope"`
	ValidFrom     time.Time       `json:"validFrom" validate:"required"`
	ValidTo       time.Time       `json:"validTo" validate:"required"`
}

func (r campaignCreateRequest) toInput() (pricing.CreateCampaignInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(r.DiscountType))
	if err != nil {
		return pricing.CreateCampaignInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}

	scope, err := parseItemScope(r.ItemScope)
	if err != nil {
		return pricing.CreateCampaignInput{}, err
	}

	return pricing.CreateCampaignInput{
		Name:          strings.TrimSpace(r.Name),
		DiscountType:  discountType,
		DiscountValue: r.DiscountValue,
		ItemScope:     scope,
		ValidFrom:     r.ValidFrom,
		ValidTo:       r.ValidTo,
	}, nil
}

type campaignUpdateRequest struct {
	Name          *string          `json:"name" validate:"omitempty,max=160"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	ItemScope     *[]string        `json:"itemScope"`
	ValidFrom     *time.Time       `json:"validFrom"`
	ValidTo       *time.Time       `json:"validTo"`
	IsActive      *bool            `json:"isActive"`
}

func parseItemScope(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	scope := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "itemScope entries must be valid uuids")
		}
		scope = append(scope, id)
	}
	return scope, nil
}

// CampaignCreate handles creating a discount campaign.
func CampaignCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload campaignCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateCampaign(r.Context(), clinicID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// CampaignUpdate handles partial updates of a campaign.
func CampaignUpdate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaignID, err := routeUUID(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload campaignUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := pricing.UpdateCampaignInput{
			Name:          payload.Name,
			DiscountValue: payload.DiscountValue,
			ValidFrom:     payload.ValidFrom,
			ValidTo:       payload.ValidTo,
			IsActive:      payload.IsActive,
		}
		if payload.ItemScope != nil {
			scope, err := parseItemScope(*payload.ItemScope)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.ItemScope = &scope
		}

		updated, err := svc.UpdateCampaign(r.Context(), clinicID, campaignID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// CampaignGet returns a single campaign.
func CampaignGet(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaignID, err := routeUUID(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		campaign, err := svc.GetCampaign(r.Context(), clinicID, campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, campaign)
	}
}

// CampaignList returns campaigns for the clinic; ?as_of= narrows the result
// to campaigns active at that instant.
func CampaignList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asOf, err := validators.ParseQueryTime(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var campaigns []pricing.CampaignDTO
		if asOf.IsZero() {
			campaigns, err = svc.ListCampaigns(r.Context(), clinicID)
		} else {
			campaigns, err = svc.ListActiveCampaigns(r.Context(), clinicID, asOf)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, campaigns)
	}
}
