package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
)

type SLEValidationArgs struct {
	Entries     []ProposedSLEEntry
	CompanyId   string `validate:"required"`
	PostingDate time.Time
}

// ValidateStockEntries checks a proposed stock batch. Item, warehouse and
// sufficiency failures are fatal; batch/serial tracking gaps and expired
// batches are advisory warnings. Nothing is written.
func ValidateStockEntries(tx *gorm.DB, logger *logrus.Logger, args SLEValidationArgs) ([]string, error) {
	warnings := make([]string, 0)

	if err := validate.Struct(args); err != nil {
		return warnings, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
	}

	cache := newRefCache()

	// Deltas already accepted earlier in this batch count toward
	// sufficiency, so a receipt followed by an issue validates as a unit.
	type stockKey struct {
		ItemId      int
		WarehouseId int
	}
	pending := make(map[stockKey]decimal.Decimal)

	for _, e := range args.Entries {
		if err := validate.Struct(e); err != nil {
			return warnings, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
		}

		// No-op movements are forbidden, same as zero-amount GL entries.
		if e.ActualQty.IsZero() {
			return warnings, &ValidationError{
				Kind:   FailureZeroAmount,
				ItemId: e.ItemId,
				Reason: "stock movement quantity cannot be zero",
			}
		}

		item, err := cache.item(tx, e.ItemId)
		if err != nil {
			return warnings, err
		}
		if !item.IsStockItem {
			return warnings, &ValidationError{
				Kind:   FailureItemNotStockable,
				ItemId: item.ID,
				Name:   item.Name,
				Reason: "item is not a stock item",
			}
		}
		if item.Disabled {
			return warnings, &ValidationError{
				Kind:   FailureItemNotStockable,
				ItemId: item.ID,
				Name:   item.Name,
				Reason: "item is disabled",
			}
		}

		warehouse, err := cache.warehouse(tx, e.WarehouseId)
		if err != nil {
			return warnings, err
		}
		if warehouse.IsGroup {
			return warnings, &ValidationError{
				Kind:        FailureWarehouseNotPostable,
				WarehouseId: warehouse.ID,
				Name:        warehouse.Name,
				Reason:      "group warehouses cannot hold stock",
			}
		}
		if warehouse.CompanyId != args.CompanyId {
			return warnings, &ValidationError{
				Kind:        FailureWarehouseCompany,
				WarehouseId: warehouse.ID,
				Name:        warehouse.Name,
				Reason:      fmt.Sprintf("warehouse belongs to company %s, posting company is %s", warehouse.CompanyId, args.CompanyId),
			}
		}

		// Batch reference checks: a dangling or mismatched batch is fatal,
		// tracking gaps are advisory.
		if e.BatchId > 0 {
			batch, err := cache.batch(tx, e.BatchId)
			if err != nil {
				if _, notFound := err.(*LookupError); notFound {
					return warnings, &ValidationError{
						Kind:   FailureBatchInvalid,
						ItemId: e.ItemId,
						Reason: fmt.Sprintf("batch %d does not exist", e.BatchId),
					}
				}
				return warnings, err
			}
			if batch.ItemId != e.ItemId {
				return warnings, &ValidationError{
					Kind:   FailureBatchInvalid,
					ItemId: e.ItemId,
					Reason: fmt.Sprintf("batch %s belongs to item %d, not item %d", batch.BatchNo, batch.ItemId, e.ItemId),
				}
			}
			if e.ActualQty.IsNegative() && batch.ExpiryDate != nil && batch.ExpiryDate.Before(args.PostingDate) {
				msg := fmt.Sprintf("batch %s expired on %s and is being issued", batch.BatchNo, batch.ExpiryDate.Format("2006-01-02"))
				warnings = append(warnings, msg)
				config.LogWarn(logger, "stockValidation.go", "ValidateStockEntries", "ExpiredBatch", batch.BatchNo, msg)
			}
		} else if item.HasBatch {
			warnings = append(warnings, fmt.Sprintf("item %s is batch-tracked but no batch was supplied", item.Name))
		}
		if item.HasSerial && e.SerialNos == "" {
			warnings = append(warnings, fmt.Sprintf("item %s is serial-tracked but no serial numbers were supplied", item.Name))
		}

		// Sufficiency: an issue must not drive the running balance negative.
		if e.ActualQty.IsNegative() {
			key := stockKey{ItemId: e.ItemId, WarehouseId: e.WarehouseId}
			bal, err := GetStockBalance(tx, e.ItemId, e.WarehouseId, nil)
			if err != nil {
				return warnings, err
			}
			available := bal.Qty.Add(pending[key])
			if available.Add(e.ActualQty).IsNegative() {
				return warnings, &InsufficientStockError{
					ItemId:      e.ItemId,
					WarehouseId: e.WarehouseId,
					Available:   available,
					Requested:   e.ActualQty.Neg(),
				}
			}
		}

		key := stockKey{ItemId: e.ItemId, WarehouseId: e.WarehouseId}
		pending[key] = pending[key].Add(e.ActualQty)
	}

	return warnings, nil
}
