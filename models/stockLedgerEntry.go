package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockLedgerEntry is one quantity/value movement of an item in a warehouse.
//
// Append-only: rows are never updated except to flip is_cancelled, and never
// deleted. QtyAfterTransaction and StockValue are running balances for the
// (item, warehouse) pair at insertion order.
type StockLedgerEntry struct {
	ID              int             `gorm:"primary_key" json:"id"`
	CompanyId       string          `gorm:"size:64;not null;index" json:"company_id"`
	PostingDateTime time.Time       `gorm:"not null;index" json:"posting_date_time"`
	ItemId          int             `gorm:"not null;index:idx_sle_item_wh,priority:1" json:"item_id"`
	WarehouseId     int             `gorm:"not null;index:idx_sle_item_wh,priority:2" json:"warehouse_id"`
	ActualQty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"actual_qty"`
	// Running balance for (item, warehouse) including this row.
	QtyAfterTransaction decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"qty_after_transaction"`
	ValuationRate       decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"valuation_rate"`
	StockValue          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_value"`
	// This row's contribution: new running value minus previous running value.
	StockValueDifference decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_value_difference"`
	IncomingRate         decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"incoming_rate"`
	VoucherType          VoucherType     `gorm:"size:30;not null;index:idx_sle_voucher,priority:1" json:"voucher_type"`
	VoucherNo            string          `gorm:"size:64;not null;index:idx_sle_voucher,priority:2" json:"voucher_no"`
	BatchId              int             `gorm:"index" json:"batch_id"`
	SerialNos            string          `gorm:"type:text" json:"serial_nos"`
	IsCancelled          bool            `gorm:"not null;default:false;index" json:"is_cancelled"`
	ReversesSLEId        *int            `gorm:"index" json:"reverses_sle_id"`
	ReversedBySLEId      *int            `gorm:"index" json:"reversed_by_sle_id"`
	FiscalYear           string          `gorm:"size:16" json:"fiscal_year"`
	CorrelationId        string          `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (sle *StockLedgerEntry) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: stock_ledger_entries cannot be deleted")
}

func (sle *StockLedgerEntry) BeforeUpdate(tx *gorm.DB) error {
	allowed := map[string]bool{
		"IsCancelled":     true,
		"ReversedBySLEId": true,
		"UpdatedAt":       true,
	}
	if tx == nil || tx.Statement == nil || tx.Statement.Schema == nil {
		return nil
	}
	for _, f := range tx.Statement.Schema.Fields {
		if tx.Statement.Changed(f.Name) && !allowed[f.Name] {
			return errors.New("immutable ledger: only cancellation fields may be updated on stock_ledger_entries")
		}
	}
	return nil
}
