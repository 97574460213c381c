package pricing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
)

// PriceResolution is the outcome of resolving an item's current price.
// Found=false is a normal result, not an error; callers render it as a
// line item with zero amounts.
type PriceResolution struct {
	Found       bool
	AmountCents int
	EntryID     uuid.UUID
}

// selectCurrentEntry picks the entry whose validity window contains asOf.
// Among candidates the latest ValidFrom wins; entries sharing the latest
// ValidFrom are broken by the greater id so the result is stable across
// runs and storage iteration order.
func selectCurrentEntry(entries []models.PriceEntry, asOf time.Time) *models.PriceEntry {
	var best *models.PriceEntry
	for i := range entries {
		entry := &entries[i]
		if !entry.IsActive {
			continue
		}
		if entry.ValidFrom.After(asOf) {
			continue
		}
		if entry.ValidTo != nil && entry.ValidTo.Before(asOf) {
			continue
		}
		if best == nil {
			best = entry
			continue
		}
		if entry.ValidFrom.After(best.ValidFrom) {
			best = entry
			continue
		}
		if entry.ValidFrom.Equal(best.ValidFrom) &&
			strings.Compare(entry.ID.String(), best.ID.String()) > 0 {
			best = entry
		}
	}
	return best
}
