package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lucasmoraes/clinicore-backend/pkg/db"
	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
)

// Service exposes price resolution, discount selection, and pricing
// administration for one clinic at a time.
type Service interface {
	ResolveCurrentPrice(ctx context.Context, clinicID, itemID uuid.UUID, asOf time.Time) (PriceResolution, error)
	BestDiscount(ctx context.Context, clinicID, itemID uuid.UUID, basePriceCents int, asOf time.Time) (DiscountResolution, error)

	CreatePriceTable(ctx context.Context, clinicID uuid.UUID, input CreatePriceTableInput) (*PriceTableDTO, error)
	UpdatePriceTable(ctx context.Context, clinicID, tableID uuid.UUID, input UpdatePriceTableInput) (*PriceTableDTO, error)
	GetPriceTable(ctx context.Context, clinicID, tableID uuid.UUID) (*PriceTableDTO, error)
	ListPriceTables(ctx context.Context, clinicID uuid.UUID) ([]PriceTableDTO, error)
	SetDefaultPriceTable(ctx context.Context, clinicID, tableID uuid.UUID) error

	AddPriceEntry(ctx context.Context, clinicID, tableID uuid.UUID, input CreatePriceEntryInput) (*PriceEntryDTO, error)
	ListPriceEntries(ctx context.Context, clinicID, tableID uuid.UUID) ([]PriceEntryDTO, error)
	DeactivatePriceEntry(ctx context.Context, clinicID, entryID uuid.UUID) error

	CreateCampaign(ctx context.Context, clinicID uuid.UUID, input CreateCampaignInput) (*CampaignDTO, error)
	UpdateCampaign(ctx context.Context, clinicID, campaignID uuid.UUID, input UpdateCampaignInput) (*CampaignDTO, error)
	GetCampaign(ctx context.Context, clinicID, campaignID uuid.UUID) (*CampaignDTO, error)
	ListCampaigns(ctx context.Context, clinicID uuid.UUID) ([]CampaignDTO, error)
	ListActiveCampaigns(ctx context.Context, clinicID uuid.UUID, asOf time.Time) ([]CampaignDTO, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a pricing service instance.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, dbClient: dbClient, logg: logg}, nil
}

// ResolveCurrentPrice returns the single price valid at asOf, or Found=false
// when no entry window contains the instant.
func (s *service) ResolveCurrentPrice(ctx context.Context, clinicID, itemID uuid.UUID, asOf time.Time) (PriceResolution, error) {
	entries, err := s.repo.ListActivePriceEntries(ctx, clinicID, itemID)
	if err != nil {
		return PriceResolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading price entries")
	}
	entry := selectCurrentEntry(entries, asOf)
	if entry == nil {
		return PriceResolution{}, nil
	}
	return PriceResolution{
		Found:       true,
		AmountCents: entry.AmountCents,
		EntryID:     entry.ID,
	}, nil
}

// BestDiscount returns the greatest clamped discount among campaigns active
// at asOf that cover the item.
func (s *service) BestDiscount(ctx context.Context, clinicID, itemID uuid.UUID, basePriceCents int, asOf time.Time) (DiscountResolution, error) {
	campaigns, err := s.repo.ListActiveCampaigns(ctx, clinicID, asOf)
	if err != nil {
		return DiscountResolution{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading campaigns")
	}
	return selectBestDiscount(campaigns, itemID, basePriceCents, asOf), nil
}

func (s *service) CreatePriceTable(ctx context.Context, clinicID uuid.UUID, input CreatePriceTableInput) (*PriceTableDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price table name is required")
	}

	table := &models.PriceTable{
		ID:          uuid.New(),
		ClinicID:    clinicID,
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
	}

	if !input.IsDefault {
		created, err := s.repo.CreatePriceTable(ctx, table)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating price table")
		}
		return toPriceTableDTO(created), nil
	}

	// Creating the table as default needs the same unset+set discipline as
	// SetDefaultPriceTable, so both writes share one transaction.
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.UnsetDefaultTables(ctx, clinicID); err != nil {
			return err
		}
		table.IsDefault = true
		_, err := txRepo.CreatePriceTable(ctx, table)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating default price table")
	}
	return toPriceTableDTO(table), nil
}

func (s *service) UpdatePriceTable(ctx context.Context, clinicID, tableID uuid.UUID, input UpdatePriceTableInput) (*PriceTableDTO, error) {
	table, err := s.repo.FindPriceTableByID(ctx, clinicID, tableID)
	if err != nil {
		return nil, notFoundOrDependency(err, "price table")
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price table name cannot be empty")
		}
		table.Name = *input.Name
	}
	if input.Description != nil {
		table.Description = input.Description
	}
	if input.IsActive != nil {
		if !*input.IsActive && table.IsDefault {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "the default price table cannot be deactivated")
		}
		table.IsActive = *input.IsActive
	}

	updated, err := s.repo.UpdatePriceTable(ctx, table)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating price table")
	}
	return toPriceTableDTO(updated), nil
}

func (s *service) GetPriceTable(ctx context.Context, clinicID, tableID uuid.UUID) (*PriceTableDTO, error) {
	table, err := s.repo.FindPriceTableByID(ctx, clinicID, tableID)
	if err != nil {
		return nil, notFoundOrDependency(err, "price table")
	}
	return toPriceTableDTO(table), nil
}

func (s *service) ListPriceTables(ctx context.Context, clinicID uuid.UUID) ([]PriceTableDTO, error) {
	tables, err := s.repo.ListPriceTables(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing price tables")
	}
	out := make([]PriceTableDTO, 0, len(tables))
	for i := range tables {
		out = append(out, *toPriceTableDTO(&tables[i]))
	}
	return out, nil
}

// SetDefaultPriceTable unsets every default for the clinic and marks the
// target, in one transaction. Idempotent: repeating the call with the same
// target leaves exactly that table as the default.
func (s *service) SetDefaultPriceTable(ctx context.Context, clinicID, tableID uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		table, err := txRepo.FindPriceTableByID(ctx, clinicID, tableID)
		if err != nil {
			return notFoundOrDependency(err, "price table")
		}
		if !table.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "an inactive price table cannot be the default")
		}

		if err := txRepo.UnsetDefaultTables(ctx, clinicID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unsetting default tables")
		}
		affected, err := txRepo.MarkTableDefault(ctx, clinicID, tableID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking default table")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "price table not found")
		}
		return nil
	})
	if err != nil {
		return setDefaultOutcome(err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"price_table_id": tableID.String()})
	s.logg.Info(logCtx, "default price table updated")
	return nil
}

// setDefaultOutcome maps default-swap transaction failures. Losing to a
// concurrent swap surfaces as a unique violation on the partial index and is
// a conflict, not an outage.
func setDefaultOutcome(err error) error {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	if db.IsUniqueViolation(err, "ux_price_tables_clinic_default") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "concurrent default table update")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "setting default price table")
}

func (s *service) AddPriceEntry(ctx context.Context, clinicID, tableID uuid.UUID, input CreatePriceEntryInput) (*PriceEntryDTO, error) {
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_cents must be >= 0")
	}
	if input.ValidFrom.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_from is required")
	}
	if input.ValidTo != nil && !input.ValidTo.After(input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_to must be after valid_from")
	}

	if _, err := s.repo.FindPriceTableByID(ctx, clinicID, tableID); err != nil {
		return nil, notFoundOrDependency(err, "price table")
	}

	entry := &models.PriceEntry{
		ID:           uuid.New(),
		ClinicID:     clinicID,
		PriceTableID: tableID,
		ItemID:       input.ItemID,
		AmountCents:  input.AmountCents,
		IsActive:     true,
		ValidFrom:    input.ValidFrom,
		ValidTo:      input.ValidTo,
	}
	created, err := s.repo.CreatePriceEntry(ctx, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating price entry")
	}
	return toPriceEntryDTO(created), nil
}

func (s *service) ListPriceEntries(ctx context.Context, clinicID, tableID uuid.UUID) ([]PriceEntryDTO, error) {
	if _, err := s.repo.FindPriceTableByID(ctx, clinicID, tableID); err != nil {
		return nil, notFoundOrDependency(err, "price table")
	}
	entries, err := s.repo.ListEntriesByTable(ctx, clinicID, tableID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing price entries")
	}
	out := make([]PriceEntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, *toPriceEntryDTO(&entries[i]))
	}
	return out, nil
}

func (s *service) DeactivatePriceEntry(ctx context.Context, clinicID, entryID uuid.UUID) error {
	affected, err := s.repo.DeactivatePriceEntry(ctx, clinicID, entryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating price entry")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "price entry not found")
	}
	return nil
}

func (s *service) CreateCampaign(ctx context.Context, clinicID uuid.UUID, input CreateCampaignInput) (*CampaignDTO, error) {
	if err := validateCampaignInput(input.Name, input.DiscountType, input.DiscountValue, input.ValidFrom, input.ValidTo); err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		ID:            uuid.New(),
		ClinicID:      clinicID,
		Name:          input.Name,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		ItemScope:     scopeToArray(input.ItemScope),
		ValidFrom:     input.ValidFrom,
		ValidTo:       input.ValidTo,
		IsActive:      true,
	}
	created, err := s.repo.CreateCampaign(ctx, campaign)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating campaign")
	}
	return toCampaignDTO(created), nil
}

func (s *service) UpdateCampaign(ctx context.Context, clinicID, campaignID uuid.UUID, input UpdateCampaignInput) (*CampaignDTO, error) {
	campaign, err := s.repo.FindCampaignByID(ctx, clinicID, campaignID)
	if err != nil {
		return nil, notFoundOrDependency(err, "campaign")
	}

	if input.Name != nil {
		campaign.Name = *input.Name
	}
	if input.DiscountValue != nil {
		campaign.DiscountValue = *input.DiscountValue
	}
	if input.ItemScope != nil {
		campaign.ItemScope = scopeToArray(*input.ItemScope)
	}
	if input.ValidFrom != nil {
		campaign.ValidFrom = *input.ValidFrom
	}
	if input.ValidTo != nil {
		campaign.ValidTo = *input.ValidTo
	}
	if input.IsActive != nil {
		campaign.IsActive = *input.IsActive
	}

	if err := validateCampaignInput(campaign.Name, campaign.DiscountType, campaign.DiscountValue, campaign.ValidFrom, campaign.ValidTo); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateCampaign(ctx, campaign)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating campaign")
	}
	return toCampaignDTO(updated), nil
}

func (s *service) GetCampaign(ctx context.Context, clinicID, campaignID uuid.UUID) (*CampaignDTO, error) {
	campaign, err := s.repo.FindCampaignByID(ctx, clinicID, campaignID)
	if err != nil {
		return nil, notFoundOrDependency(err, "campaign")
	}
	return toCampaignDTO(campaign), nil
}

func (s *service) ListCampaigns(ctx context.Context, clinicID uuid.UUID) ([]CampaignDTO, error) {
	campaigns, err := s.repo.ListCampaigns(ctx, clinicID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing campaigns")
	}
	out := make([]CampaignDTO, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, *toCampaignDTO(&campaigns[i]))
	}
	return out, nil
}

// ListActiveCampaigns returns only campaigns whose validity window contains
// asOf.
func (s *service) ListActiveCampaigns(ctx context.Context, clinicID uuid.UUID, asOf time.Time) ([]CampaignDTO, error) {
	campaigns, err := s.repo.ListActiveCampaigns(ctx, clinicID, asOf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing active campaigns")
	}
	out := make([]CampaignDTO, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, *toCampaignDTO(&campaigns[i]))
	}
	return out, nil
}

func validateCampaignInput(name string, discountType enums.DiscountType, value decimal.Decimal, validFrom, validTo time.Time) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign name is required")
	}
	if !discountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown discount type")
	}
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_value must be >= 0")
	}
	if discountType == enums.DiscountTypePercentage && value.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if validFrom.IsZero() || validTo.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_from and valid_to are required")
	}
	if !validTo.After(validFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_to must be after valid_from")
	}
	return nil
}

func scopeToArray(scope []uuid.UUID) pq.StringArray {
	if len(scope) == 0 {
		return nil
	}
	out := make(pq.StringArray, 0, len(scope))
	for _, id := range scope {
		out = append(out, id.String())
	}
	return out
}

func notFoundOrDependency(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading "+entity)
}
