package models_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bitbucket.org/mmdatafocus/ledger_core/models"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))
	return db
}

func TestFiscalYearCovers(t *testing.T) {
	fy := models.FiscalYear{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	require.True(t, fy.Covers(fy.StartDate))
	require.True(t, fy.Covers(fy.EndDate))
	require.True(t, fy.Covers(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	require.False(t, fy.Covers(fy.StartDate.AddDate(0, 0, -1)))
	require.False(t, fy.Covers(fy.EndDate.AddDate(0, 0, 1)))
}

func TestStockLedgerEntryImmutability(t *testing.T) {
	db := openDB(t)

	row := models.StockLedgerEntry{
		CompanyId:       "acme",
		PostingDateTime: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		ItemId:          1,
		WarehouseId:     1,
		ActualQty:       decimal.NewFromInt(10),
		VoucherType:     models.VoucherTypeStockEntry,
		VoucherNo:       "STE-001",
	}
	require.NoError(t, db.Create(&row).Error)

	// Quantity edits after posting are rejected.
	err := db.Model(&models.StockLedgerEntry{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{"ActualQty": decimal.NewFromInt(99)}).Error
	require.Error(t, err)
	require.Contains(t, err.Error(), "immutable ledger")

	// Cancellation metadata is the one permitted mutation.
	mirrorId := 42
	require.NoError(t, db.Model(&models.StockLedgerEntry{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"IsCancelled":     true,
			"ReversedBySLEId": mirrorId,
		}).Error)

	require.Error(t, db.Delete(&models.StockLedgerEntry{}, row.ID).Error)
}
