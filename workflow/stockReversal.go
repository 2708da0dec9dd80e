package workflow

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/models"
)

// ReverseSLEEntries appends reversal rows for a voucher's active stock
// movements and cancels the originals.
//
// This preserves inventory auditability by never deleting original rows.
// The mirror negates the original quantity and rolls the running value back
// by the original row's stored value difference; the moving-average formula
// is deliberately not replayed, so a reversal undoes exactly what the
// original contributed. Mirror rows are persisted already cancelled: they
// carry the corrected running state for the chain but are not live stock.
func ReverseSLEEntries(tx *gorm.DB, logger *logrus.Logger, voucherType models.VoucherType, voucherNo string) ([]int, error) {
	var originals []models.StockLedgerEntry
	if err := tx.Where("voucher_type = ? AND voucher_no = ? AND is_cancelled = ?", voucherType, voucherNo, false).
		Order("id ASC").
		Find(&originals).Error; err != nil {
		return nil, err
	}
	if len(originals) == 0 {
		return nil, &NoActiveEntriesError{VoucherType: voucherType, VoucherNo: voucherNo}
	}

	type stockKey struct {
		ItemId      int
		WarehouseId int
	}
	type runningState struct {
		Qty   decimal.Decimal
		Value decimal.Decimal
	}
	states := make(map[stockKey]runningState)

	correlationId := uuid.NewString()
	ids := make([]int, 0, len(originals))
	for i := range originals {
		o := &originals[i]
		key := stockKey{ItemId: o.ItemId, WarehouseId: o.WarehouseId}
		state, seen := states[key]
		if !seen {
			qty, value, err := stockState(tx, o.ItemId, o.WarehouseId)
			if err != nil {
				return nil, err
			}
			state = runningState{Qty: qty, Value: value}
		}

		newQty := state.Qty.Sub(o.ActualQty)
		newValue := state.Value.Sub(o.StockValueDifference)

		var newRate decimal.Decimal
		switch {
		case newQty.IsZero():
			newRate = decimal.Zero
		case newQty.IsNegative():
			// Degenerate: later movements already consumed the reversed
			// receipt. Reuse the original rate rather than divide into a
			// negative quantity.
			newRate = o.ValuationRate
		default:
			newRate = newValue.Div(newQty).Round(valuationRateScale)
		}

		mirror := models.StockLedgerEntry{
			CompanyId:            o.CompanyId,
			PostingDateTime:      o.PostingDateTime,
			ItemId:               o.ItemId,
			WarehouseId:          o.WarehouseId,
			ActualQty:            o.ActualQty.Neg(),
			QtyAfterTransaction:  newQty,
			ValuationRate:        newRate,
			StockValue:           newValue,
			StockValueDifference: newValue.Sub(state.Value),
			IncomingRate:         decimal.Zero,
			VoucherType:          o.VoucherType,
			VoucherNo:            o.VoucherNo,
			BatchId:              o.BatchId,
			SerialNos:            o.SerialNos,
			IsCancelled:          true,
			ReversesSLEId:        &o.ID,
			FiscalYear:           o.FiscalYear,
			CorrelationId:        correlationId,
		}
		if err := tx.Create(&mirror).Error; err != nil {
			config.LogError(logger, "stockReversal.go", "ReverseSLEEntries", "CreateMirror", o.ID, err)
			return nil, err
		}
		ids = append(ids, mirror.ID)

		if err := tx.Model(&models.StockLedgerEntry{}).
			Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"IsCancelled":     true,
				"ReversedBySLEId": mirror.ID,
			}).Error; err != nil {
			config.LogError(logger, "stockReversal.go", "ReverseSLEEntries", "CancelOriginal", o.ID, err)
			return nil, err
		}

		states[key] = runningState{Qty: newQty, Value: newValue}
	}

	if len(ids) != len(originals) {
		return ids, fmt.Errorf("reverse stock: expected %d mirrors, created %d", len(originals), len(ids))
	}
	return ids, nil
}
