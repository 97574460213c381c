package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
)

// Repository wires together pricing persistence helpers. Every query is
// filtered by clinic id; cross-clinic rows are invisible by construction.
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

// ListActivePriceEntries loads every active entry for the item, regardless of
// validity window. Window filtering happens in memory so the selection rule
// stays in one place.
func (r *Repository) ListActivePriceEntries(ctx context.Context, clinicID, itemID uuid.UUID) ([]models.PriceEntry, error) {
	var entries []models.PriceEntry
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND item_id = ? AND is_active = ?", clinicID, itemID, true).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListActiveCampaigns loads campaigns whose window contains asOf.
func (r *Repository) ListActiveCampaigns(ctx context.Context, clinicID uuid.UUID, asOf time.Time) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND is_active = ?", clinicID, true).
		Where("valid_from <= ? AND valid_to >= ?", asOf, asOf).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// CreatePriceTable inserts a new price table row.
func (r *Repository) CreatePriceTable(ctx context.Context, table *models.PriceTable) (*models.PriceTable, error) {
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// UpdatePriceTable saves an existing price table row.
func (r *Repository) UpdatePriceTable(ctx context.Context, table *models.PriceTable) (*models.PriceTable, error) {
	if err := r.db.WithContext(ctx).Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// FindPriceTableByID loads one table scoped by clinic.
func (r *Repository) FindPriceTableByID(ctx context.Context, clinicID, id uuid.UUID) (*models.PriceTable, error) {
	var table models.PriceTable
	err := r.db.WithContext(ctx).
		First(&table, "id = ? AND clinic_id = ?", id, clinicID).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// ListPriceTables returns every table for the clinic, default first.
func (r *Repository) ListPriceTables(ctx context.Context, clinicID uuid.UUID) ([]models.PriceTable, error) {
	var tables []models.PriceTable
	err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// UnsetDefaultTables clears the default flag for every table of the clinic.
// Must run inside the same transaction as the subsequent set.
func (r *Repository) UnsetDefaultTables(ctx context.Context, clinicID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceTable{}).
		Where("clinic_id = ? AND is_default = ?", clinicID, true).
		Update("is_default", false).Error
}

// MarkTableDefault flags the target table. Returns the affected row count so
// the caller can distinguish a missing table from a clean update.
func (r *Repository) MarkTableDefault(ctx context.Context, clinicID, tableID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PriceTable{}).
		Where("id = ? AND clinic_id = ?", tableID, clinicID).
		Update("is_default", true)
	return res.RowsAffected, res.Error
}

// CreatePriceEntry inserts a new price entry row.
func (r *Repository) CreatePriceEntry(ctx context.Context, entry *models.PriceEntry) (*models.PriceEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntriesByTable returns every entry of a price table.
func (r *Repository) ListEntriesByTable(ctx context.Context, clinicID, tableID uuid.UUID) ([]models.PriceEntry, error) {
	var entries []models.PriceEntry
	err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND price_table_id = ?", clinicID, tableID).
		Order("valid_from ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeactivatePriceEntry soft-disables one entry. Returns rows affected.
func (r *Repository) DeactivatePriceEntry(ctx context.Context, clinicID, entryID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PriceEntry{}).
		Where("id = ? AND clinic_id = ?", entryID, clinicID).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// CreateCampaign inserts a new campaign row.
func (r *Repository) CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// UpdateCampaign saves an existing campaign row.
func (r *Repository) UpdateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.db.WithContext(ctx).Save(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// FindCampaignByID loads one campaign scoped by clinic.
func (r *Repository) FindCampaignByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		First(&campaign, "id = ? AND clinic_id = ?", id, clinicID).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListCampaigns returns every campaign for the clinic, newest window first.
func (r *Repository) ListCampaigns(ctx context.Context, clinicID uuid.UUID) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("valid_from DESC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}
