package quotations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
)

// Repository wires together quotation persistence helpers. Every query is
// filtered by clinic id.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindServiceItemsByIDs loads active catalog items for the clinic keyed by id.
func (r *Repository) FindServiceItemsByIDs(ctx context.Context, clinicID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.ServiceItem, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.ServiceItem{}, nil
	}
	var rows []models.ServiceItem
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id IN ?", clinicID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.ServiceItem, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// InsertQuotation creates the quotation together with its line items.
func (r *Repository) InsertQuotation(ctx context.Context, quotation *models.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

// FindByID loads one quotation with line items, scoped by clinic.
func (r *Repository) FindByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&quotation, "id = ? AND clinic_id = ?", id, clinicID).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// List returns quotations for the clinic, newest first.
func (r *Repository) List(ctx context.Context, clinicID uuid.UUID, filter ListFilter) ([]models.Quotation, error) {
	q := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("clinic_id = ?", clinicID).
		Order("created_at DESC")
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var rows []models.Quotation
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus moves the quotation to the new status. conversionRef is only
// written for conversions. Returns rows affected so callers can detect a
// concurrent status change (the WHERE clause re-checks the expected status).
func (r *Repository) UpdateStatus(ctx context.Context, clinicID, id uuid.UUID, from, to enums.QuotationStatus, conversionRef *uuid.UUID) (int64, error) {
	updates := map[string]any{"status": to}
	if conversionRef != nil {
		updates["conversion_ref"] = *conversionRef
	}
	res := r.db.WithContext(ctx).
		Model(&models.Quotation{}).
		Where("id = ? AND clinic_id = ? AND status = ?", id, clinicID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// ListExpirable returns quotations past their validity deadline that are
// still in a state the expiry transition applies to.
func (r *Repository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]models.Quotation, error) {
	q := r.db.WithContext(ctx).
		Where("status IN ?", []enums.QuotationStatus{
			enums.QuotationStatusPending,
			enums.QuotationStatusApproved,
		}).
		Where("valid_until < ?", now).
		Order("valid_until ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Quotation
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
