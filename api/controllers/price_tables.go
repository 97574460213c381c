package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/lucasmoraes/clinicore-backend/api/responses"
	"github.com/lucasmoraes/clinicore-backend/api/validators"
	"github.com/lucasmoraes/clinicore-backend/internal/pricing"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

type priceTableCreateRequest struct {
	Name        string  `json:"name" validate:"required,max=160"`
	Description *string `json:"description"`
	IsDefault   bool    `json:"isDefault"`
}

type priceTableUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=160"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// PriceTableCreate handles creating a clinic-scoped price table.
func PriceTableCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceTableCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreatePriceTable(r.Context(), clinicID, pricing.CreatePriceTableInput{
			Name:        strings.TrimSpace(payload.Name),
			Description: payload.Description,
			IsDefault:   payload.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// PriceTableUpdate handles partial updates of a price table.
func PriceTableUpdate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tableID, err := routeUUID(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceTableUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdatePriceTable(r.Context(), clinicID, tableID, pricing.UpdatePriceTableInput{
			Name:        payload.Name,
			Description: payload.Description,
			IsActive:    payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// PriceTableGet returns a single price table.
func PriceTableGet(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tableID, err := routeUUID(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		table, err := svc.GetPriceTable(r.Context(), clinicID, tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, table)
	}
}

// PriceTableList returns all price tables for the clinic.
func PriceTableList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tables, err := svc.ListPriceTables(r.Context(), clinicID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tables)
	}
}

// PriceTableSetDefault promotes a table to the clinic default.
func PriceTableSetDefault(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tableID, err := routeUUID(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetDefaultPriceTable(r.Context(), clinicID, tableID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"default": true})
	}
}

type priceEntryCreateRequest struct {
	ItemID      string     `json:"itemId" validate:"required,uuid"`
	AmountCents int        `json:"amountCents" validate:"gte=0"`
	ValidFrom   time.Time  `json:"validFrom" validate:"required"`
	ValidTo     *time.Time `json:"validTo"`
}

// PriceEntryCreate adds an entry to a price table.
func PriceEntryCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tableID, err := routeUUID(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceEntryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuidFromString(payload.ItemID, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.AddPriceEntry(r.Context(), clinicID, tableID, pricing.CreatePriceEntryInput{
			ItemID:      itemID,
			AmountCents: payload.AmountCents,
			ValidFrom:   payload.ValidFrom,
			ValidTo:     payload.ValidTo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// PriceEntryList returns the entries of one table.
func PriceEntryList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tableID, err := routeUUID(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListPriceEntries(r.Context(), clinicID, tableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}

// PriceEntryDeactivate retires an entry without deleting its history.
func PriceEntryDeactivate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entryID, err := routeUUID(r, "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivatePriceEntry(r.Context(), clinicID, entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

// PriceResolve returns the effective price of an item at a point in time.
func PriceResolve(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, err := clinicFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := routeUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asOf, err := validators.ParseQueryTime(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}

		resolution, err := svc.ResolveCurrentPrice(r.Context(), clinicID, itemID, asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !resolution.Found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no price configured for item"))
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"itemId":      itemID,
			"asOf":        asOf,
			"amountCents": resolution.AmountCents,
			"entryId":     resolution.EntryID,
		})
	}
}
