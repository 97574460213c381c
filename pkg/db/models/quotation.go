package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
	"github.com/lucasmoraes/clinicore-backend/pkg/types"
)

// Quotation is a saved, numbered pricing proposal. Number is unique per
// clinic (ux_quotations_clinic_number). Once the status leaves pending the
// monetary fields are frozen; only status and ConversionRef may change.
type Quotation struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID           uuid.UUID              `gorm:"column:clinic_id;type:uuid;not null"`
	Number             string                 `gorm:"column:number;not null"`
	Customer           types.CustomerSnapshot `gorm:"column:customer;type:jsonb;not null"`
	SubtotalCents      int                    `gorm:"column:subtotal_cents;not null"`
	DiscountTotalCents int                    `gorm:"column:discount_total_cents;not null"`
	TotalCents         int                    `gorm:"column:total_cents;not null"`
	ValidUntil         time.Time              `gorm:"column:valid_until;not null"`
	Status             enums.QuotationStatus  `gorm:"column:status;type:quotation_status;not null;default:'pending'"`
	ConversionRef      *uuid.UUID             `gorm:"column:conversion_ref;type:uuid"`
	Notes              *string                `gorm:"column:notes"`
	LineItems          []QuotationLineItem    `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
