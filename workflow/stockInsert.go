package workflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/models"
	"bitbucket.org/mmdatafocus/ledger_core/utils"
)

// valuationRateScale matches the column scale of valuation_rate.
const valuationRateScale = 6

type SLEInsertArgs struct {
	Entries     []ProposedSLEEntry
	CompanyId   string             `validate:"required"`
	VoucherType models.VoucherType `validate:"required"`
	VoucherNo   string             `validate:"required"`
	PostingDate time.Time
	// FiscalYear is caller-supplied; when empty it is resolved from
	// PostingDate.
	FiscalYear string
}

// InsertSLEEntries posts a stock batch with moving-average valuation.
//
// Receipts fold the incoming value into the weighted average; issues go out
// at the average rate current immediately before the movement. Running
// quantity and value are threaded through the batch so several movements of
// one item chain correctly within a single voucher. Assumes the caller's
// open transaction; never commits.
func InsertSLEEntries(tx *gorm.DB, logger *logrus.Logger, args SLEInsertArgs) ([]int, []string, error) {
	if err := validate.Struct(args); err != nil {
		return nil, nil, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
	}

	if err := assertNoActiveSLEBatch(tx, args.VoucherType, args.VoucherNo); err != nil {
		return nil, nil, err
	}

	warnings, err := ValidateStockEntries(tx, logger, SLEValidationArgs{
		Entries:     args.Entries,
		CompanyId:   args.CompanyId,
		PostingDate: args.PostingDate,
	})
	if err != nil {
		return nil, warnings, err
	}

	cache := newRefCache()
	company, err := cache.company(tx, args.CompanyId)
	if err != nil {
		return nil, warnings, err
	}

	fiscalYear := args.FiscalYear
	if fiscalYear == "" {
		if fy, found, err := cache.fiscalYearFor(tx, args.CompanyId, args.PostingDate); err != nil {
			return nil, warnings, err
		} else if found {
			fiscalYear = fy.Name
		}
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
	ids := make([]int, 0, len(args.Entries))
	for _, e := range args.Entries {
		key := stockKey{ItemId: e.ItemId, WarehouseId: e.WarehouseId}
		state, seen := states[key]
		if !seen {
			qty, value, err := stockState(tx, e.ItemId, e.WarehouseId)
			if err != nil {
				return nil, warnings, err
			}
			state = runningState{Qty: qty, Value: value}
		}

		var newQty, newValue, newRate, incomingRate decimal.Decimal
		if e.ActualQty.IsPositive() {
			// Receipt: weighted-average the incoming value in.
			incomingRate = e.IncomingRate
			if incomingRate.IsZero() {
				item, err := cache.item(tx, e.ItemId)
				if err != nil {
					return nil, warnings, err
				}
				incomingRate = item.StandardRate
			}
			newQty = state.Qty.Add(e.ActualQty)
			newValue = utils.RoundToCurrency(state.Value.Add(e.ActualQty.Mul(incomingRate)), company.CurrencyPrecision)
			if newQty.IsPositive() {
				newRate = newValue.Div(newQty).Round(valuationRateScale)
			} else {
				newRate = incomingRate
			}
		} else {
			// Issue: out at the average rate current before the movement.
			var rate decimal.Decimal
			if state.Qty.IsPositive() {
				rate = state.Value.Div(state.Qty).Round(valuationRateScale)
			}
			outgoingValue := utils.RoundToCurrency(e.ActualQty.Neg().Mul(rate), company.CurrencyPrecision)
			newQty = state.Qty.Add(e.ActualQty)
			newValue = state.Value.Sub(outgoingValue)
			newRate = rate
			incomingRate = decimal.Zero
		}

		postingDateTime := e.PostingDateTime
		if postingDateTime.IsZero() {
			postingDateTime = args.PostingDate
		}

		row := models.StockLedgerEntry{
			CompanyId:            args.CompanyId,
			PostingDateTime:      postingDateTime,
			ItemId:               e.ItemId,
			WarehouseId:          e.WarehouseId,
			ActualQty:            e.ActualQty,
			QtyAfterTransaction:  newQty,
			ValuationRate:        newRate,
			StockValue:           newValue,
			StockValueDifference: newValue.Sub(state.Value),
			IncomingRate:         incomingRate,
			VoucherType:          args.VoucherType,
			VoucherNo:            args.VoucherNo,
			BatchId:              e.BatchId,
			SerialNos:            e.SerialNos,
			FiscalYear:           fiscalYear,
			CorrelationId:        correlationId,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return nil, warnings, &IdempotencyConflictError{VoucherType: args.VoucherType, VoucherNo: args.VoucherNo}
			}
			config.LogError(logger, "stockInsert.go", "InsertSLEEntries", "CreateSLE", row, err)
			return nil, warnings, err
		}
		ids = append(ids, row.ID)
		states[key] = runningState{Qty: newQty, Value: newValue}
	}

	return ids, warnings, nil
}
