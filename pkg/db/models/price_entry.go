package models

import (
	"time"

	"github.com/google/uuid"
)

// PriceEntry assigns a price to one catalog item inside one price table for a
// validity window. Windows for the same item may overlap; resolution picks
// exactly one entry deterministically.
type PriceEntry struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID     uuid.UUID  `gorm:"column:clinic_id;type:uuid;not null"`
	PriceTableID uuid.UUID  `gorm:"column:price_table_id;type:uuid;not null"`
	ItemID       uuid.UUID  `gorm:"column:item_id;type:uuid;not null"`
	AmountCents  int        `gorm:"column:amount_cents;not null"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	ValidFrom    time.Time  `gorm:"column:valid_from;not null"`
	ValidTo      *time.Time `gorm:"column:valid_to"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
