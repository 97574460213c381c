package models

import (
	"time"

	"github.com/google/uuid"
)

// QuotationLineItem snapshots one priced item inside a quotation. Position
// preserves the caller's input order; rows with NoPriceFound carry zero
// amounts and contribute nothing to the quotation totals.
type QuotationLineItem struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID        uuid.UUID  `gorm:"column:quotation_id;type:uuid;not null"`
	Position           int        `gorm:"column:position;not null"`
	ItemID             uuid.UUID  `gorm:"column:item_id;type:uuid;not null"`
	ItemName           string     `gorm:"column:item_name;not null"`
	OriginalPriceCents int        `gorm:"column:original_price_cents;not null"`
	DiscountCents      int        `gorm:"column:discount_cents;not null"`
	FinalPriceCents    int        `gorm:"column:final_price_cents;not null"`
	CampaignID         *uuid.UUID `gorm:"column:campaign_id;type:uuid"`
	NoPriceFound       bool       `gorm:"column:no_price_found;not null;default:false"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
}
