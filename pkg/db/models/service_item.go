package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceItem is a catalog entry a clinic can price and quote.
type ServiceItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClinicID    uuid.UUID `gorm:"column:clinic_id;type:uuid;not null"`
	Code        string    `gorm:"column:code;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
