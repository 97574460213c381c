package pricing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
	"github.com/lucasmoraes/clinicore-backend/pkg/enums"
)

// DiscountResolution carries the best applicable discount for one item.
// CampaignID is nil and DiscountCents is zero when no campaign qualifies.
type DiscountResolution struct {
	DiscountCents int
	CampaignID    *uuid.UUID
}

var oneHundred = decimal.NewFromInt(100)

// computedDiscount returns the clamped discount a single campaign yields for
// the given base price. Percentage results are floored to the minor unit.
func computedDiscount(c models.Campaign, basePriceCents int) int {
	if basePriceCents <= 0 {
		return 0
	}
	var raw decimal.Decimal
	switch c.DiscountType {
	case enums.DiscountTypePercentage:
		raw = decimal.NewFromInt(int64(basePriceCents)).
			Mul(c.DiscountValue).
			Div(oneHundred).
			Floor()
	case enums.DiscountTypeFixedAmount:
		raw = c.DiscountValue.Floor()
	default:
		return 0
	}
	discount := int(raw.IntPart())
	if discount < 0 {
		return 0
	}
	if discount > basePriceCents {
		return basePriceCents
	}
	return discount
}

// selectBestDiscount evaluates every qualifying campaign and keeps the one
// with the strictly greatest clamped discount. Ties fall to the earlier
// ValidFrom, then the smaller id.
func selectBestDiscount(campaigns []models.Campaign, itemID uuid.UUID, basePriceCents int, asOf time.Time) DiscountResolution {
	var (
		best     *models.Campaign
		bestAmnt int
	)
	for i := range campaigns {
		c := &campaigns[i]
		if !c.IsActive {
			continue
		}
		if c.ValidFrom.After(asOf) || c.ValidTo.Before(asOf) {
			continue
		}
		if !c.AppliesTo(itemID) {
			continue
		}
		amount := computedDiscount(*c, basePriceCents)
		switch {
		case best == nil, amount > bestAmnt:
			best, bestAmnt = c, amount
		case amount == bestAmnt:
			if c.ValidFrom.Before(best.ValidFrom) {
				best = c
			} else if c.ValidFrom.Equal(best.ValidFrom) &&
				strings.Compare(c.ID.String(), best.ID.String()) < 0 {
				best = c
			}
		}
	}
	if best == nil || bestAmnt == 0 {
		return DiscountResolution{}
	}
	id := best.ID
	return DiscountResolution{DiscountCents: bestAmnt, CampaignID: &id}
}
