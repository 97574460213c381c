package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
)

// PriceTableDTO is the API-facing projection of a price table.
type PriceTableDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PriceEntryDTO is the API-facing projection of a price entry.
type PriceEntryDTO struct {
	ID           uuid.UUID  `json:"id"`
	PriceTableID uuid.UUID  `json:"priceTableId"`
	ItemID       uuid.UUID  `json:"itemId"`
	AmountCents  int        `json:"amountCents"`
	IsActive     bool       `json:"isActive"`
	ValidFrom    time.Time  `json:"validFrom"`
	ValidTo      *time.Time `json:"validTo,omitempty"`
}

// CampaignDTO is the API-facing projection of a campaign.
type CampaignDTO struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	DiscountType  enums.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
	ItemScope     []uuid.UUID        `json:"itemScope,omitempty"`
	ValidFrom     time.Time          `json:"validFrom"`
	ValidTo       time.Time          `json:"validTo"`
	IsActive      bool               `json:"isActive"`
}

// CreatePriceTableInput holds the validated payload to create a price table.
type CreatePriceTableInput struct {
	Name        string
	Description *string
	IsDefault   bool
}

// UpdatePriceTableInput holds optional mutation values for a price table.
type UpdatePriceTableInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// CreatePriceEntryInput holds the validated payload to add a price entry.
type CreatePriceEntryInput struct {
	ItemID      uuid.UUID
	AmountCents int
	ValidFrom   time.Time
	ValidTo     *time.Time
}

// CreateCampaignInput holds the validated payload to create a campaign.
type CreateCampaignInput struct {
	Name          string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	ItemScope     []uuid.UUID
	ValidFrom     time.Time
	ValidTo       time.Time
}

// UpdateCampaignInput holds optional mutation values for a campaign.
type UpdateCampaignInput struct {
	Name          *string
	DiscountValue *decimal.Decimal
	ItemScope     *[]uuid.UUID
	ValidFrom     *time.Time
	ValidTo       *time.Time
	IsActive      *bool
}

func toPriceTableDTO(m *models.PriceTable) *PriceTableDTO {
	return &PriceTableDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		IsDefault:   m.IsDefault,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toPriceEntryDTO(m *models.PriceEntry) *PriceEntryDTO {
	return &PriceEntryDTO{
		ID:           m.ID,
		PriceTableID: m.PriceTableID,
		ItemID:       m.ItemID,
		AmountCents:  m.AmountCents,
		IsActive:     m.IsActive,
		ValidFrom:    m.ValidFrom,
		ValidTo:      m.ValidTo,
	}
}

func toCampaignDTO(m *models.Campaign) *CampaignDTO {
	scope := make([]uuid.UUID, 0, len(m.ItemScope))
	for _, raw := range m.ItemScope {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		scope = append(scope, id)
	}
	if len(scope) == 0 {
		scope = nil
	}
	return &CampaignDTO{
		ID:            m.ID,
		Name:          m.Name,
		DiscountType:  m.DiscountType,
		DiscountValue: m.DiscountValue,
		ItemScope:     scope,
		ValidFrom:     m.ValidFrom,
		ValidTo:       m.ValidTo,
		IsActive:      m.IsActive,
	}
}
