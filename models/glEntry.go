package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GLEntry is one row of the general ledger.
//
// Ledger immutability guardrails:
// - gl_entries are append-only; the only permitted mutation is flipping
//   is_cancelled to true (paired with a reversal row).
// - Debit/credit/account never change after insert.
// - checksum chains each row to the previous row of the same company
//   (ordered by chain_seq), so retroactive edits are detectable.
type GLEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CompanyId   string          `gorm:"size:64;not null;index;index:idx_gl_company_chain,priority:1" json:"company_id"`
	PostingDate time.Time       `gorm:"not null;index" json:"posting_date"`
	AccountId   int             `gorm:"not null;index;index:idx_gl_account_date,priority:1" json:"account_id"`
	PartyType   PartyType       `gorm:"size:20" json:"party_type"`
	PartyId     string          `gorm:"size:64" json:"party_id"`
	Debit       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit"`
	// Base-currency amounts; equal to Debit/Credit when ExchangeRate is 1.
	DebitInBaseCurrency  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debit_in_base_currency"`
	CreditInBaseCurrency decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_in_base_currency"`
	Currency             string          `gorm:"size:8" json:"currency"`
	ExchangeRate         decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"exchange_rate"`
	VoucherType          VoucherType     `gorm:"size:30;not null;index:idx_gl_voucher,priority:1" json:"voucher_type"`
	VoucherNo            string          `gorm:"size:64;not null;index:idx_gl_voucher,priority:2" json:"voucher_no"`
	EntrySet             string          `gorm:"size:20;not null;default:'primary';index:idx_gl_voucher,priority:3" json:"entry_set"`
	CostCenterId         int             `gorm:"index" json:"cost_center_id"`
	ProjectId            string          `gorm:"size:64" json:"project_id"`
	FiscalYear           string          `gorm:"size:16" json:"fiscal_year"`
	IsCancelled          bool            `gorm:"not null;default:false;index" json:"is_cancelled"`
	// Reversal linkage (metadata-only updates, same pattern as stock rows).
	ReversesGLEntryId   *int   `gorm:"index" json:"reverses_gl_entry_id"`
	ReversedByGLEntryId *int   `gorm:"index" json:"reversed_by_gl_entry_id"`
	Remarks             string `gorm:"type:text" json:"remarks"`
	// Hash chain: explicit per-company sequence, so the chain's total order
	// does not depend on storage-level insertion ordering.
	ChainSeq      int64     `gorm:"not null;default:0;index:idx_gl_company_chain,priority:2" json:"chain_seq"`
	Checksum      string    `gorm:"size:64;not null" json:"checksum"`
	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *GLEntry) BeforeDelete(tx *gorm.DB) error {
	return errors.New("immutable ledger: gl_entries cannot be deleted")
}

func (e *GLEntry) BeforeUpdate(tx *gorm.DB) error {
	// Allow only cancellation and reversal linkage fields to be updated.
	allowed := map[string]bool{
		"IsCancelled":         true,
		"ReversedByGLEntryId": true,
		"UpdatedAt":           true,
	}
	if tx == nil || tx.Statement == nil || tx.Statement.Schema == nil {
		return nil
	}
	for _, f := range tx.Statement.Schema.Fields {
		if tx.Statement.Changed(f.Name) && !allowed[f.Name] {
			return errors.New("immutable ledger: only cancellation fields may be updated on gl_entries")
		}
	}
	return nil
}
