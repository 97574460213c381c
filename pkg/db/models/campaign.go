package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
)

// Campaign is a time-bounded promotional discount rule. An empty ItemScope
// means the campaign applies to every catalog item of the clinic.
// DiscountValue is a percent for percentage campaigns and minor units for
// fixed amount campaigns.
type Campaign struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID      uuid.UUID          `gorm:"column:clinic_id;type:uuid;not null"`
	Name          string             `gorm:"column:name;not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	ItemScope     pq.StringArray     `gorm:"column:item_scope;type:uuid[]"`
	ValidFrom     time.Time          `gorm:"column:valid_from;not null"`
	ValidTo       time.Time          `gorm:"column:valid_to;not null"`
	IsActive      bool               `gorm:"column:is_active;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// AppliesTo reports whether the campaign covers the given item.
func (c Campaign) AppliesTo(itemID uuid.UUID) bool {
	if len(c.ItemScope) == 0 {
		return true
	}
	target := itemID.String()
	for _, scoped := range c.ItemScope {
		if scoped == target {
			return true
		}
	}
	return false
}
