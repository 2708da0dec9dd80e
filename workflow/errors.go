package workflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/ledger_core/models"
)

// ValidationFailureKind is the closed set of reasons a GL or stock batch can
// be rejected. Callers switch on the kind instead of parsing messages.
type ValidationFailureKind string

const (
	FailureInvalidInput          ValidationFailureKind = "INVALID_INPUT"
	FailureUnbalanced            ValidationFailureKind = "UNBALANCED"
	FailureAccountNotFound       ValidationFailureKind = "ACCOUNT_NOT_FOUND"
	FailureAccountNotPostable    ValidationFailureKind = "ACCOUNT_NOT_POSTABLE"
	FailureAccountCompany        ValidationFailureKind = "ACCOUNT_COMPANY_MISMATCH"
	FailureFrozenAccount         ValidationFailureKind = "FROZEN_ACCOUNT"
	FailurePartyRequired         ValidationFailureKind = "PARTY_REQUIRED"
	FailureCostCenterRequired    ValidationFailureKind = "COST_CENTER_REQUIRED"
	FailureOpeningPLRestricted   ValidationFailureKind = "OPENING_PL_RESTRICTED"
	FailureCostCenterInvalid     ValidationFailureKind = "COST_CENTER_INVALID"
	FailureFiscalYearMissing     ValidationFailureKind = "FISCAL_YEAR_MISSING"
	FailureFiscalYearClosed      ValidationFailureKind = "FISCAL_YEAR_CLOSED"
	FailureBooksFrozen           ValidationFailureKind = "BOOKS_FROZEN"
	FailureZeroAmount            ValidationFailureKind = "ZERO_AMOUNT"
	FailureBudgetExceeded        ValidationFailureKind = "BUDGET_EXCEEDED"
	FailureItemNotStockable      ValidationFailureKind = "ITEM_NOT_STOCKABLE"
	FailureWarehouseNotPostable  ValidationFailureKind = "WAREHOUSE_NOT_POSTABLE"
	FailureWarehouseCompany      ValidationFailureKind = "WAREHOUSE_COMPANY_MISMATCH"
	FailureBatchInvalid          ValidationFailureKind = "BATCH_INVALID"
)

// ValidationError carries the failing kind plus structured context about the
// offending row. It aborts the whole batch.
type ValidationError struct {
	Kind         ValidationFailureKind
	AccountId    int
	CostCenterId int
	ItemId       int
	WarehouseId  int
	Name         string
	Reason       string
	// Difference is set for FailureUnbalanced (debit total minus credit
	// total) and FailureBudgetExceeded (overrun amount).
	Difference decimal.Decimal
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("validation failed [%s] %s: %s", e.Kind, e.Name, e.Reason)
	}
	return fmt.Sprintf("validation failed [%s]: %s", e.Kind, e.Reason)
}

// IdempotencyConflictError signals that an active (non-cancelled) batch
// already exists for the voucher key.
type IdempotencyConflictError struct {
	VoucherType models.VoucherType
	VoucherNo   string
	EntrySet    string
}

func (e *IdempotencyConflictError) Error() string {
	if e.EntrySet != "" {
		return fmt.Sprintf("duplicate posting: active entries already exist for %s %s (entry set %q)", e.VoucherType, e.VoucherNo, e.EntrySet)
	}
	return fmt.Sprintf("duplicate posting: active entries already exist for %s %s", e.VoucherType, e.VoucherNo)
}

// LookupError signals a missing reference row.
type LookupError struct {
	Entity string
	Key    string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

type InsufficientStockError struct {
	ItemId      int
	WarehouseId int
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d in warehouse %d: available %s, requested %s",
		e.ItemId, e.WarehouseId, e.Available.String(), e.Requested.String())
}

// CwipRestrictionError rejects manual journal postings to capital
// work-in-progress accounts; CWIP may only move through asset
// capitalization vouchers.
type CwipRestrictionError struct {
	AccountId int
	Name      string
}

func (e *CwipRestrictionError) Error() string {
	return fmt.Sprintf("account %q is capital work in progress and cannot be posted by a journal entry", e.Name)
}

type ExchangeRateError struct {
	Currency string
	Rate     decimal.Decimal
}

func (e *ExchangeRateError) Error() string {
	return fmt.Sprintf("invalid exchange rate %s for currency %s", e.Rate.String(), e.Currency)
}

// NoActiveEntriesError signals a reversal request for a voucher that has no
// active rows (never posted, or already fully reversed).
type NoActiveEntriesError struct {
	VoucherType models.VoucherType
	VoucherNo   string
}

func (e *NoActiveEntriesError) Error() string {
	return fmt.Sprintf("no active entries to reverse for %s %s", e.VoucherType, e.VoucherNo)
}

// ChainIntegrityError reports the first GL row whose stored checksum does
// not match the recomputed value.
type ChainIntegrityError struct {
	CompanyId string
	GLEntryId int
	ChainSeq  int64
	Stored    string
	Computed  string
}

func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("hash chain broken for company %s at seq %d (gl entry %d)", e.CompanyId, e.ChainSeq, e.GLEntryId)
}
