package quotations

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
	"github.com/lucasmoraes/clinicore-backend/pkg/types"
)

// LineItemDTO is one priced row of a calculation or a persisted quotation.
type LineItemDTO struct {
	ItemID             uuid.UUID  `json:"itemId"`
	ItemName           string     `json:"itemName"`
	OriginalPriceCents int        `json:"originalPriceCents"`
	DiscountCents      int        `json:"discountCents"`
	FinalPriceCents    int        `json:"finalPriceCents"`
	CampaignID         *uuid.UUID `json:"campaignId,omitempty"`
	NoPriceFound       bool       `json:"noPriceFound"`
}

// CalculationResult is the read-only output of Calculate. Line items keep
// the caller's input order; totals skip no-price rows.
type CalculationResult struct {
	AsOf               time.Time     `json:"asOf"`
	LineItems          []LineItemDTO `json:"lineItems"`
	SubtotalCents      int           `json:"subtotalCents"`
	DiscountTotalCents int           `json:"discountTotalCents"`
	TotalCents         int           `json:"totalCents"`
}

// CalculateInput holds the validated payload for a price calculation.
type CalculateInput struct {
	ItemIDs []uuid.UUID
	AsOf    *time.Time
}

// CreateQuotationInput holds the validated payload to persist a quotation.
type CreateQuotationInput struct {
	Customer types.CustomerSnapshot
	ItemIDs  []uuid.UUID
	AsOf     *time.Time
	// ValidUntil defaults to AsOf plus the configured validity window.
	ValidUntil *time.Time
	Notes      *string
	// Manual adjustments from staff. Cross-checked against the computed
	// totals; a mismatch is logged, not rejected.
	DiscountTotalCentsOverride *int
	TotalCentsOverride         *int
}

// ListFilter narrows List results.
type ListFilter struct {
	Status *enums.QuotationStatus
	Limit  int
	Offset int
}

// QuotationDTO is the API-facing projection of a quotation.
type QuotationDTO struct {
	ID                 uuid.UUID              `json:"id"`
	Number             string                 `json:"number"`
	Customer           types.CustomerSnapshot `json:"customer"`
	LineItems          []LineItemDTO          `json:"lineItems"`
	SubtotalCents      int                    `json:"subtotalCents"`
	DiscountTotalCents int                    `json:"discountTotalCents"`
	TotalCents         int                    `json:"totalCents"`
	ValidUntil         time.Time              `json:"validUntil"`
	Status             enums.QuotationStatus  `json:"status"`
	ConversionRef      *uuid.UUID             `json:"conversionRef,omitempty"`
	Notes              *string                `json:"notes,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// CreatedQuotation is the minimal Create response.
type CreatedQuotation struct {
	ID     uuid.UUID `json:"id"`
	Number string    `json:"number"`
}

func toLineItemDTO(m *models.QuotationLineItem) LineItemDTO {
	return LineItemDTO{
		ItemID:             m.ItemID,
		ItemName:           m.ItemName,
		OriginalPriceCents: m.OriginalPriceCents,
		DiscountCents:      m.DiscountCents,
		FinalPriceCents:    m.FinalPriceCents,
		CampaignID:         m.CampaignID,
		NoPriceFound:       m.NoPriceFound,
	}
}

func toQuotationDTO(m *models.Quotation) *QuotationDTO {
	items := make([]LineItemDTO, 0, len(m.LineItems))
	for i := range m.LineItems {
		items = append(items, toLineItemDTO(&m.LineItems[i]))
	}
	return &QuotationDTO{
		ID:                 m.ID,
		Number:             m.Number,
		Customer:           m.Customer,
		LineItems:          items,
		SubtotalCents:      m.SubtotalCents,
		DiscountTotalCents: m.DiscountTotalCents,
		TotalCents:         m.TotalCents,
		ValidUntil:         m.ValidUntil,
		Status:             m.Status,
		ConversionRef:      m.ConversionRef,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
