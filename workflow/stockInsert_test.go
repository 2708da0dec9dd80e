package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/ledger_core/models"
	"bitbucket.org/mmdatafocus/ledger_core/workflow"
)

func (f *fixture) moveStock(t *testing.T, voucherNo string, entries []workflow.ProposedSLEEntry) []int {
	t.Helper()
	ids, warnings, err := workflow.InsertSLEEntries(f.db, f.logger, workflow.SLEInsertArgs{
		Entries:     entries,
		CompanyId:   f.company.ID,
		VoucherType: models.VoucherTypeStockEntry,
		VoucherNo:   voucherNo,
		PostingDate: postingDate(),
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
	return ids
}

func (f *fixture) receive(t *testing.T, voucherNo, qty, rate string) []int {
	t.Helper()
	return f.moveStock(t, voucherNo, []workflow.ProposedSLEEntry{
		{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec(qty), IncomingRate: dec(rate)},
	})
}

func (f *fixture) issue(t *testing.T, voucherNo, qty string) []int {
	t.Helper()
	return f.moveStock(t, voucherNo, []workflow.ProposedSLEEntry{
		{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec(qty).Neg()},
	})
}

func TestInsertSLEEntriesMovingAverageReceipts(t *testing.T) {
	f := newFixture(t)

	f.receive(t, "STE-001", "10", "5")
	f.receive(t, "STE-002", "10", "7")

	bal, err := workflow.GetStockBalance(f.db, f.item.ID, f.warehouse.ID, nil)
	require.NoError(t, err)
	requireDecimalEqual(t, "20", bal.Qty)
	requireDecimalEqual(t, "120", bal.StockValue)
	requireDecimalEqual(t, "6", bal.ValuationRate)
}

func TestInsertSLEEntriesIssueAtAverageRate(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "STE-001", "10", "5")
	f.receive(t, "STE-002", "10", "7")

	ids := f.issue(t, "STE-003", "5")

	var row models.StockLedgerEntry
	require.NoError(t, f.db.First(&row, ids[0]).Error)
	requireDecimalEqual(t, "-5", row.ActualQty)
	requireDecimalEqual(t, "6", row.ValuationRate)
	requireDecimalEqual(t, "-30", row.StockValueDifference)
	requireDecimalEqual(t, "15", row.QtyAfterTransaction)
	requireDecimalEqual(t, "90", row.StockValue)

	rate, err := workflow.GetValuationRate(f.db, f.item.ID, f.warehouse.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "6", rate)
}

func TestInsertSLEEntriesRunningBalanceWithinVoucher(t *testing.T) {
	f := newFixture(t)

	// Receipt then issue of the same item chain inside one voucher.
	ids := f.moveStock(t, "STE-001", []workflow.ProposedSLEEntry{
		{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec("10"), IncomingRate: dec("5")},
		{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec("-4")},
	})
	require.Len(t, ids, 2)

	var rows []models.StockLedgerEntry
	require.NoError(t, f.db.Where("id IN ?", ids).Order("id ASC").Find(&rows).Error)
	requireDecimalEqual(t, "10", rows[0].QtyAfterTransaction)
	requireDecimalEqual(t, "6", rows[1].QtyAfterTransaction)
	requireDecimalEqual(t, "30", rows[1].StockValue)
}

func TestInsertSLEEntriesStandardRateFallback(t *testing.T) {
	f := newFixture(t)

	// No incoming rate supplied; the item's standard rate (4) applies.
	ids := f.moveStock(t, "STE-001", []workflow.ProposedSLEEntry{
		{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec("10")},
	})

	var row models.StockLedgerEntry
	require.NoError(t, f.db.First(&row, ids[0]).Error)
	requireDecimalEqual(t, "4", row.IncomingRate)
	requireDecimalEqual(t, "40", row.StockValue)
	requireDecimalEqual(t, "4", row.ValuationRate)
}

func TestInsertSLEEntriesRejectsInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "STE-001", "3", "5")

	_, _, err := workflow.InsertSLEEntries(f.db, f.logger, workflow.SLEInsertArgs{
		Entries: []workflow.ProposedSLEEntry{
			{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec("-5")},
		},
		CompanyId:   f.company.ID,
		VoucherType: models.VoucherTypeStockEntry,
		VoucherNo:   "STE-002",
		PostingDate: postingDate(),
	})
	var insufficient *workflow.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	requireDecimalEqual(t, "3", insufficient.Available)
	requireDecimalEqual(t, "5", insufficient.Requested)

	// Nothing was written for the rejected voucher.
	var count int64
	require.NoError(t, f.db.Model(&models.StockLedgerEntry{}).
		Where("voucher_no = ?", "STE-002").Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestInsertSLEEntriesRejectsZeroQuantity(t *testing.T) {
	f := newFixture(t)

	_, _, err := workflow.InsertSLEEntries(f.db, f.logger, workflow.SLEInsertArgs{
		Entries: []workflow.ProposedSLEEntry{
			{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec("0")},
		},
		CompanyId:   f.company.ID,
		VoucherType: models.VoucherTypeStockEntry,
		VoucherNo:   "STE-001",
		PostingDate: postingDate(),
	})
	requireFailureKind(t, err, workflow.FailureZeroAmount)

	var count int64
	require.NoError(t, f.db.Model(&models.StockLedgerEntry{}).
		Where("voucher_no = ?", "STE-001").Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestGetValuationRateStandardRateFallback(t *testing.T) {
	f := newFixture(t)

	// No movements yet: the item's standard rate (4) stands in.
	rate, err := workflow.GetValuationRate(f.db, f.item.ID, f.warehouse.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "4", rate)

	// Once history exists, the ledger's rate wins.
	f.receive(t, "STE-001", "10", "5")
	rate, err = workflow.GetValuationRate(f.db, f.item.ID, f.warehouse.ID)
	require.NoError(t, err)
	requireDecimalEqual(t, "5", rate)
}

func TestInsertSLEEntriesIdempotencyConflict(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "STE-001", "10", "5")

	_, _, err := workflow.InsertSLEEntries(f.db, f.logger, workflow.SLEInsertArgs{
		Entries: []workflow.ProposedSLEEntry{
			{ItemId: f.item.ID, WarehouseId: f.warehouse.ID, ActualQty: dec("1"), IncomingRate: dec("5")},
		},
		CompanyId:   f.company.ID,
		VoucherType: models.VoucherTypeStockEntry,
		VoucherNo:   "STE-001",
		PostingDate: postingDate(),
	})
	var conflict *workflow.IdempotencyConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestInsertSLEEntriesQtyEqualsSumOfDeltas(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "STE-001", "10", "5")
	f.issue(t, "STE-002", "4")
	f.receive(t, "STE-003", "6", "8")

	var rows []models.StockLedgerEntry
	require.NoError(t, f.db.Where("item_id = ? AND warehouse_id = ? AND is_cancelled = ?",
		f.item.ID, f.warehouse.ID, false).Order("id ASC").Find(&rows).Error)

	sum := dec("0")
	for _, row := range rows {
		sum = sum.Add(row.ActualQty)
	}
	last := rows[len(rows)-1]
	requireDecimalEqual(t, sum.String(), last.QtyAfterTransaction)

	bal, err := workflow.GetStockBalance(f.db, f.item.ID, f.warehouse.ID, nil)
	require.NoError(t, err)
	requireDecimalEqual(t, sum.String(), bal.Qty)
}
