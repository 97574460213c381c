package models

import (
	"time"

	"github.com/google/uuid"
)

// PriceTable is a named bundle of price assignments. At most one table per
// clinic is the default at any observable instant; the partial unique index
// ux_price_tables_clinic_default backs that invariant.
type PriceTable struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID    uuid.UUID    `gorm:"column:clinic_id;type:uuid;not null"`
	Name        string       `gorm:"column:name;not null"`
	Description *string      `gorm:"column:description"`
	IsDefault   bool         `gorm:"column:is_default;not null;default:false"`
	IsActive    bool         `gorm:"column:is_active;not null"`
	Entries     []PriceEntry `gorm:"foreignKey:PriceTableID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
