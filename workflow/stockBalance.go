package workflow

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/models"
	"bitbucket.org/mmdatafocus/ledger_core/utils"
)

// stockState returns the latest running (quantity, value) pair for an
// (item, warehouse) from the most recent ledger row. Cancelled mirror rows
// are included on purpose: a reversal mirror stores the corrected running
// state, so the chain continues from it.
func stockState(tx *gorm.DB, itemId, warehouseId int) (decimal.Decimal, decimal.Decimal, error) {
	var last models.StockLedgerEntry
	err := tx.Where("item_id = ? AND warehouse_id = ?", itemId, warehouseId).
		Order("id DESC").
		First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, decimal.Zero, nil
		}
		return decimal.Zero, decimal.Zero, err
	}
	return last.QtyAfterTransaction, last.StockValue, nil
}

// GetStockBalance returns the current (or as-of) quantity, valuation rate and
// stock value for (item, warehouse). Quantity is the sum of non-cancelled
// movement deltas; rate and value come from the most recent row.
//
// The stored, chain-derived stock value is authoritative. Recomputing
// quantity x rate is done only as a consistency check; divergence beyond
// rounding is logged, never silently substituted.
func GetStockBalance(tx *gorm.DB, itemId, warehouseId int, asOf *time.Time) (StockBalance, error) {
	q := tx.Where("item_id = ? AND warehouse_id = ? AND is_cancelled = ?", itemId, warehouseId, false)
	if asOf != nil {
		q = q.Where("posting_date_time <= ?", *asOf)
	}
	var rows []models.StockLedgerEntry
	if err := q.Find(&rows).Error; err != nil {
		return StockBalance{}, err
	}
	qty := decimal.Zero
	for _, row := range rows {
		qty = qty.Add(row.ActualQty)
	}

	lastQ := tx.Where("item_id = ? AND warehouse_id = ?", itemId, warehouseId)
	if asOf != nil {
		lastQ = lastQ.Where("posting_date_time <= ?", *asOf)
	}
	var last models.StockLedgerEntry
	rate, value := decimal.Zero, decimal.Zero
	err := lastQ.Order("id DESC").First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return StockBalance{}, err
	}
	if err == nil {
		rate = last.ValuationRate
		value = last.StockValue
	}

	if qty.IsPositive() && rate.IsPositive() {
		recomputed := qty.Mul(rate)
		if !utils.DecimalEqualWithin(recomputed, value, utils.EpsilonForPrecision(2)) {
			config.LogWarn(config.GetLogger(), "stockBalance.go", "GetStockBalance", "ValuationDrift",
				map[string]interface{}{"item_id": itemId, "warehouse_id": warehouseId},
				"stored stock value "+value.String()+" diverges from qty x rate "+recomputed.String())
		}
	}

	return StockBalance{Qty: qty, ValuationRate: rate, StockValue: value}, nil
}

// GetValuationRate returns the current moving-average valuation rate for
// (item, warehouse). When the pair has no ledger history yet, the item's
// standard rate stands in as the best estimate.
func GetValuationRate(tx *gorm.DB, itemId, warehouseId int) (decimal.Decimal, error) {
	var last models.StockLedgerEntry
	err := tx.Where("item_id = ? AND warehouse_id = ?", itemId, warehouseId).
		Order("id DESC").
		First(&last).Error
	if err == nil {
		return last.ValuationRate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	item, lookupErr := newRefCache().item(tx, itemId)
	if lookupErr != nil {
		return decimal.Zero, lookupErr
	}
	return item.StandardRate, nil
}
