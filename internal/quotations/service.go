package quotations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/lucasmoraes/clinicore-backend/internal/pricing"
	"github.com/lucasmoraes/clinicore-backend/pkg/config"
	"github.com/lucasmoraes/clinicore-backend/pkg/db"
	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
	pkgerrors "github.com/lucasmoraes/clinicore-backend/pkg/errors"
	"github.com/lucasmoraes/clinicore-backend/pkg/logger"
	"github.com/lucasmoraes/clinicore-backend/pkg/outbox"
)

const numberConstraint = "ux_quotations_clinic_number"

// Service exposes quotation calculation, persistence, and lifecycle
// transitions.
type Service interface {
	Calculate(ctx context.Context, clinicID uuid.UUID, input CalculateInput) (*CalculationResult, error)
	Create(ctx context.Context, clinicID uuid.UUID, input CreateQuotationInput) (*CreatedQuotation, error)
	Get(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error)
	List(ctx context.Context, clinicID uuid.UUID, filter ListFilter) ([]QuotationDTO, error)

	Approve(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error)
	Reject(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error)
	Convert(ctx context.Context, clinicID, quotationID, conversionRef uuid.UUID) (*QuotationDTO, error)
	Cancel(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error)
	Expire(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error)

	// ExpireDue sweeps quotations past their deadline. Returns how many
	// transitioned; used by the scheduled job, not the HTTP surface.
	ExpireDue(ctx context.Context, now time.Time, limit int) (int, error)
}

type priceResolver interface {
	ResolveCurrentPrice(ctx context.Context, clinicID, itemID uuid.UUID, asOf time.Time) (pricing.PriceResolution, error)
	BestDiscount(ctx context.Context, clinicID, itemID uuid.UUID, basePriceCents int, asOf time.Time) (pricing.DiscountResolution, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	prices   priceResolver
	events   eventEmitter
	numbers  numberSource
	cfg      config.QuotationConfig
	logg     *logger.Logger
}

// NewService constructs a quotation service instance.
func NewService(repo *Repository, dbClient *db.Client, prices priceResolver, events eventEmitter, cfg config.QuotationConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotation repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "QT"
	}
	if cfg.NumberRetryAttempts <= 0 {
		cfg.NumberRetryAttempts = 5
	}
	if cfg.DefaultValidityDays <= 0 {
		cfg.DefaultValidityDays = 30
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		prices:   prices,
		events:   events,
		numbers:  newNumberGenerator(cfg.NumberPrefix),
		cfg:      cfg,
		logg:     logg,
	}, nil
}

// Calculate prices every requested item at asOf. Items without a current
// price produce a zeroed line with NoPriceFound instead of aborting the
// batch. The result keeps the caller's item order, duplicates included.
func (s *service) Calculate(ctx context.Context, clinicID uuid.UUID, input CalculateInput) (*CalculationResult, error) {
	if len(input.ItemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	asOf := time.Now().UTC()
	if input.AsOf != nil {
		asOf = *input.AsOf
	}

	items, err := s.repo.FindServiceItemsByIDs(ctx, clinicID, input.ItemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading catalog items")
	}

	result := &CalculationResult{
		AsOf:      asOf,
		LineItems: make([]LineItemDTO, 0, len(input.ItemIDs)),
	}
	for _, itemID := range input.ItemIDs {
		item, ok := items[itemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("catalog item %s not found", itemID))
		}

		price, err := s.prices.ResolveCurrentPrice(ctx, clinicID, itemID, asOf)
		if err != nil {
			return nil, err
		}
		if !price.Found {
			result.LineItems = append(result.LineItems, LineItemDTO{
				ItemID:       itemID,
				ItemName:     item.Name,
				NoPriceFound: true,
			})
			continue
		}

		discount, err := s.prices.BestDiscount(ctx, clinicID, itemID, price.AmountCents, asOf)
		if err != nil {
			return nil, err
		}

		final := price.AmountCents - discount.DiscountCents
		if final < 0 {
			final = 0
		}
		result.LineItems = append(result.LineItems, LineItemDTO{
			ItemID:             itemID,
			ItemName:           item.Name,
			OriginalPriceCents: price.AmountCents,
			DiscountCents:      discount.DiscountCents,
			FinalPriceCents:    final,
			CampaignID:         discount.CampaignID,
		})
		result.SubtotalCents += price.AmountCents
		result.DiscountTotalCents += discount.DiscountCents
		result.TotalCents += final
	}
	return result, nil
}

// Create runs Calculate, assigns a clinic-unique number, and persists the
// quotation with its line items and a created event in one transaction. A
// number collision retries with a fresh suffix up to the configured bound.
func (s *service) Create(ctx context.Context, clinicID uuid.UUID, input CreateQuotationInput) (*CreatedQuotation, error) {
	if input.Customer.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.DiscountTotalCentsOverride != nil && *input.DiscountTotalCentsOverride < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount total override must be >= 0")
	}
	if input.TotalCentsOverride != nil && *input.TotalCentsOverride < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total override must be >= 0")
	}

	calc, err := s.Calculate(ctx, clinicID, CalculateInput{ItemIDs: input.ItemIDs, AsOf: input.AsOf})
	if err != nil {
		return nil, err
	}

	validUntil := calc.AsOf.AddDate(0, 0, s.cfg.DefaultValidityDays)
	if input.ValidUntil != nil {
		if !input.ValidUntil.After(calc.AsOf) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until must be in the future")
		}
		validUntil = *input.ValidUntil
	}

	discountTotal := calc.DiscountTotalCents
	total := calc.TotalCents
	if input.DiscountTotalCentsOverride != nil && *input.DiscountTotalCentsOverride != discountTotal {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"computed": discountTotal,
			"override": *input.DiscountTotalCentsOverride,
		})
		s.logg.Warn(logCtx, "discount total override differs from computed value")
		discountTotal = *input.DiscountTotalCentsOverride
	}
	if input.TotalCentsOverride != nil && *input.TotalCentsOverride != total {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"computed": total,
			"override": *input.TotalCentsOverride,
		})
		s.logg.Warn(logCtx, "total override differs from computed value")
		total = *input.TotalCentsOverride
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.NumberRetryAttempts; attempt++ {
		quotation := s.buildQuotation(clinicID, input, calc, validUntil, discountTotal, total)
		quotation.Number = s.numbers.Next(calc.AsOf)

		err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if err := txRepo.InsertQuotation(ctx, quotation); err != nil {
				return err
			}
			return s.emit(ctx, tx, enums.EventQuotationCreated, quotation)
		})
		if err == nil {
			logCtx := s.logg.WithQuotationID(ctx, quotation.ID.String())
			s.logg.Info(logCtx, "quotation created")
			return &CreatedQuotation{ID: quotation.ID, Number: quotation.Number}, nil
		}
		if !db.IsUniqueViolation(err, numberConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting quotation")
		}
		lastErr = err
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "could not allocate a unique quotation number")
}

func (s *service) buildQuotation(clinicID uuid.UUID, input CreateQuotationInput, calc *CalculationResult, validUntil time.Time, discountTotal, total int) *models.Quotation {
	quotationID := uuid.New()
	lineItems := make([]models.QuotationLineItem, 0, len(calc.LineItems))
	for i, line := range calc.LineItems {
		lineItems = append(lineItems, models.QuotationLineItem{
			ID:                 uuid.New(),
			QuotationID:        quotationID,
			Position:           i,
			ItemID:             line.ItemID,
			ItemName:           line.ItemName,
			OriginalPriceCents: line.OriginalPriceCents,
			DiscountCents:      line.DiscountCents,
			FinalPriceCents:    line.FinalPriceCents,
			CampaignID:         line.CampaignID,
			NoPriceFound:       line.NoPriceFound,
		})
	}
	return &models.Quotation{
		ID:                 quotationID,
		ClinicID:           clinicID,
		Customer:           input.Customer,
		SubtotalCents:      calc.SubtotalCents,
		DiscountTotalCents: discountTotal,
		TotalCents:         total,
		ValidUntil:         validUntil,
		Status:             enums.QuotationStatusPending,
		Notes:              input.Notes,
		LineItems:          lineItems,
	}
}

func (s *service) Get(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error) {
	quotation, err := s.repo.FindByID(ctx, clinicID, quotationID)
	if err != nil {
		return nil, notFoundOrDependency(err)
	}
	return toQuotationDTO(quotation), nil
}

func (s *service) List(ctx context.Context, clinicID uuid.UUID, filter ListFilter) ([]QuotationDTO, error) {
	rows, err := s.repo.List(ctx, clinicID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing quotations")
	}
	out := make([]QuotationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toQuotationDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Approve(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error) {
	return s.transition(ctx, clinicID, quotationID, enums.QuotationStatusApproved, nil, enums.EventQuotationApproved)
}

func (s *service) Reject(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error) {
	return s.transition(ctx, clinicID, quotationID, enums.QuotationStatusRejected, nil, enums.EventQuotationRejected)
}

func (s *service) Convert(ctx context.Context, clinicID, quotationID, conversionRef uuid.UUID) (*QuotationDTO, error) {
	if conversionRef == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversion_ref is required")
	}
	return s.transition(ctx, clinicID, quotationID, enums.QuotationStatusConverted, &conversionRef, enums.EventQuotationConverted)
}

func (s *service) Cancel(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error) {
	return s.transition(ctx, clinicID, quotationID, enums.QuotationStatusCancelled, nil, enums.EventQuotationCancelled)
}

func (s *service) Expire(ctx context.Context, clinicID, quotationID uuid.UUID) (*QuotationDTO, error) {
	return s.transition(ctx, clinicID, quotationID, enums.QuotationStatusExpired, nil, enums.EventQuotationExpired)
}

func (s *service) ExpireDue(ctx context.Context, now time.Time, limit int) (int, error) {
	due, err := s.repo.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing expirable quotations")
	}

	expired := 0
	var sweepErr error
	for i := range due {
		if _, err := s.Expire(ctx, due[i].ClinicID, due[i].ID); err != nil {
			// A concurrent transition is fine; anything else is reported
			// after the rest of the batch has been attempted.
			if pkgerrors.Is(err, pkgerrors.CodeStateConflict) || pkgerrors.Is(err, pkgerrors.CodeConflict) {
				continue
			}
			sweepErr = multierr.Append(sweepErr, err)
			continue
		}
		expired++
	}
	return expired, sweepErr
}

func (s *service) transition(ctx context.Context, clinicID, quotationID uuid.UUID, to enums.QuotationStatus, conversionRef *uuid.UUID, eventType enums.OutboxEventType) (*QuotationDTO, error) {
	var updated *models.Quotation
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		quotation, err := txRepo.FindByID(ctx, clinicID, quotationID)
		if err != nil {
			return notFoundOrDependency(err)
		}
		if !canTransition(quotation.Status, to) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("quotation cannot move from %s to %s", quotation.Status, to))
		}

		affected, err := txRepo.UpdateStatus(ctx, clinicID, quotationID, quotation.Status, to, conversionRef)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating quotation status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "quotation status changed concurrently")
		}

		quotation.Status = to
		if conversionRef != nil {
			quotation.ConversionRef = conversionRef
		}
		updated = quotation
		return s.emit(ctx, tx, eventType, quotation)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transitioning quotation")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"quotation_id": quotationID.String(),
		"status":       to.String(),
	})
	s.logg.Info(logCtx, "quotation status updated")
	return toQuotationDTO(updated), nil
}

type quotationEventPayload struct {
	QuotationID uuid.UUID             `json:"quotationId"`
	ClinicID    uuid.UUID             `json:"clinicId"`
	Number      string                `json:"number"`
	Status      enums.QuotationStatus `json:"status"`
	TotalCents  int                   `json:"totalCents"`
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, quotation *models.Quotation) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateQuotation,
		AggregateID:   quotation.ID,
		Data: quotationEventPayload{
			QuotationID: quotation.ID,
			ClinicID:    quotation.ClinicID,
			Number:      quotation.Number,
			Status:      quotation.Status,
			TotalCents:  quotation.TotalCents,
		},
		Version: 1,
	})
}

func notFoundOrDependency(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading quotation")
}
