package quotations

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupQuotationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS service_items (
  id TEXT PRIMARY KEY,
  clinic_id TEXT NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS quotations (
  id TEXT PRIMARY KEY,
  clinic_id TEXT NOT NULL,
  number TEXT NOT NULL,
  customer TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  discount_total_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  valid_until DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  conversion_ref TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_quotations_clinic_number
  ON quotations (clinic_id, number);`,
		`CREATE TABLE IF NOT EXISTS quotation_line_items (
  id TEXT PRIMARY KEY,
  quotation_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  item_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  original_price_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL,
  final_price_cents INTEGER NOT NULL,
  campaign_id TEXT,
  no_price_found INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
