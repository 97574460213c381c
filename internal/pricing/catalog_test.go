package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasmoraes/clinicore-backend/pkg/db/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(amount int, validFrom time.Time, validTo *time.Time) models.PriceEntry {
	return models.PriceEntry{
		ID:          uuid.New(),
		ItemID:      uuid.New(),
		IsActive:    true,
		AmountCents: amount,
		ValidFrom:   validFrom,
		ValidTo:     validTo,
	}
}

func TestSelectCurrentEntry_LatestWindowWins(t *testing.T) {
	juneEnd := date(2025, 6, 30)
	a := entry(10000, date(2025, 1, 1), &juneEnd)
	b := entry(12000, date(2025, 7, 1), nil)

	got := selectCurrentEntry([]models.PriceEntry{a, b}, date(2025, 8, 1))
	require.NotNil(t, got)
	assert.Equal(t, 12000, got.AmountCents)
	assert.Equal(t, b.ID, got.ID)
}

func TestSelectCurrentEntry_OverlappingWindows(t *testing.T) {
	older := entry(9000, date(2025, 1, 1), nil)
	newer := entry(9500, date(2025, 5, 1), nil)
	future := entry(9900, date(2025, 12, 1), nil)

	got := selectCurrentEntry([]models.PriceEntry{future, older, newer}, date(2025, 8, 1))
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID, "latest valid_from containing asOf must win")
}

func TestSelectCurrentEntry_TieBreakOnID(t *testing.T) {
	from := date(2025, 3, 1)
	a := entry(100, from, nil)
	b := entry(200, from, nil)

	first := selectCurrentEntry([]models.PriceEntry{a, b}, date(2025, 8, 1))
	second := selectCurrentEntry([]models.PriceEntry{b, a}, date(2025, 8, 1))
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "tie-break must not depend on input order")

	want := a.ID
	if b.ID.String() > a.ID.String() {
		want = b.ID
	}
	assert.Equal(t, want, first.ID)
}

func TestSelectCurrentEntry_BoundsAreInclusive(t *testing.T) {
	to := date(2025, 8, 1)
	e := entry(500, date(2025, 8, 1), &to)

	got := selectCurrentEntry([]models.PriceEntry{e}, date(2025, 8, 1))
	require.NotNil(t, got, "valid_from == asOf == valid_to must qualify")

	assert.Nil(t, selectCurrentEntry([]models.PriceEntry{e}, date(2025, 8, 2)))
	assert.Nil(t, selectCurrentEntry([]models.PriceEntry{e}, date(2025, 7, 31)))
}

func TestSelectCurrentEntry_SkipsInactive(t *testing.T) {
	e := entry(500, date(2025, 1, 1), nil)
	e.IsActive = false

	assert.Nil(t, selectCurrentEntry([]models.PriceEntry{e}, date(2025, 8, 1)))
}

func TestSelectCurrentEntry_EmptySet(t *testing.T) {
	assert.Nil(t, selectCurrentEntry(nil, date(2025, 8, 1)))
}
