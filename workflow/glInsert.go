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

type GLInsertArgs struct {
	Entries     []ProposedGLEntry
	CompanyId   string             `validate:"required"`
	VoucherType models.VoucherType `validate:"required"`
	VoucherNo   string             `validate:"required"`
	PostingDate time.Time
	Remarks     string
	IsOpening   bool
	ActingRole  string
	// EntrySet defaults to "primary" when empty.
	EntrySet string
}

// PrepareMulticurrencyEntries computes base-currency debit/credit for each
// entry. Entries already in the base currency get a unit rate; foreign
// entries must carry a positive exchange rate. Returns a new slice.
func PrepareMulticurrencyEntries(entries []ProposedGLEntry, baseCurrency string, precision int32) ([]ProposedGLEntry, error) {
	prepared := make([]ProposedGLEntry, len(entries))
	for i, e := range entries {
		if e.Currency == "" || e.Currency == baseCurrency {
			e.Currency = baseCurrency
			e.ExchangeRate = decimal.NewFromInt(1)
			e.DebitInBaseCurrency = e.Debit
			e.CreditInBaseCurrency = e.Credit
		} else {
			if !e.ExchangeRate.IsPositive() {
				return nil, &ExchangeRateError{Currency: e.Currency, Rate: e.ExchangeRate}
			}
			e.DebitInBaseCurrency = utils.RoundToCurrency(e.Debit.Mul(e.ExchangeRate), precision)
			e.CreditInBaseCurrency = utils.RoundToCurrency(e.Credit.Mul(e.ExchangeRate), precision)
		}
		prepared[i] = e
	}
	return prepared, nil
}

// InsertGLEntries posts a validated batch to the general ledger.
//
// Order of operations: idempotency gate, sign normalization + checklist
// validation, CWIP restriction, multicurrency preparation, then row writes
// chained onto the company's checksum sequence. The function assumes it runs
// inside the caller's transaction and never commits; on error the caller
// must roll back. Returns the new row ids and any non-fatal warnings.
func InsertGLEntries(tx *gorm.DB, logger *logrus.Logger, args GLInsertArgs) ([]int, []string, error) {
	if err := validate.Struct(args); err != nil {
		return nil, nil, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
	}
	entrySet := args.EntrySet
	if entrySet == "" {
		entrySet = models.EntrySetPrimary
	}

	// The gate runs before any validation so duplicate retries fail fast.
	if err := assertNoActiveGLBatch(tx, args.VoucherType, args.VoucherNo, entrySet); err != nil {
		return nil, nil, err
	}

	entries, warnings, err := ValidateGLEntries(tx, logger, GLValidationArgs{
		Entries:     args.Entries,
		CompanyId:   args.CompanyId,
		PostingDate: args.PostingDate,
		VoucherType: args.VoucherType,
		IsOpening:   args.IsOpening,
		ActingRole:  args.ActingRole,
	})
	if err != nil {
		return nil, warnings, err
	}

	cache := newRefCache()
	company, err := cache.company(tx, args.CompanyId)
	if err != nil {
		return nil, warnings, err
	}

	// CWIP accounts only move through asset capitalization vouchers, never
	// manual journals. This is deliberately outside the checklist: the
	// checklist guards batch shape, this guards a voucher-type pairing.
	if args.VoucherType == models.VoucherTypeJournalEntry {
		for _, e := range entries {
			account, err := cache.account(tx, e.AccountId)
			if err != nil {
				return nil, warnings, err
			}
			if account.AccountType == models.AccountTypeCapitalWorkInProgress {
				return nil, warnings, &CwipRestrictionError{AccountId: account.ID, Name: account.Name}
			}
		}
	}

	entries, err = PrepareMulticurrencyEntries(entries, company.DefaultCurrency, company.CurrencyPrecision)
	if err != nil {
		return nil, warnings, err
	}

	fiscalYear, _, err := cache.fiscalYearFor(tx, args.CompanyId, args.PostingDate)
	if err != nil {
		return nil, warnings, err
	}

	tip, err := latestChainEntry(tx, args.CompanyId)
	if err != nil {
		return nil, warnings, err
	}
	prevChecksum := chainGenesis
	nextSeq := int64(0)
	if tip != nil {
		prevChecksum = tip.Checksum
		nextSeq = tip.ChainSeq + 1
	}

	correlationId := uuid.NewString()
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		remarks := e.Remarks
		if remarks == "" {
			remarks = args.Remarks
		}
		row := models.GLEntry{
			CompanyId:            args.CompanyId,
			PostingDate:          args.PostingDate,
			AccountId:            e.AccountId,
			PartyType:            e.PartyType,
			PartyId:              e.PartyId,
			Debit:                e.Debit,
			Credit:               e.Credit,
			DebitInBaseCurrency:  e.DebitInBaseCurrency,
			CreditInBaseCurrency: e.CreditInBaseCurrency,
			Currency:             e.Currency,
			ExchangeRate:         e.ExchangeRate,
			VoucherType:          args.VoucherType,
			VoucherNo:            args.VoucherNo,
			EntrySet:             entrySet,
			CostCenterId:         e.CostCenterId,
			ProjectId:            e.ProjectId,
			FiscalYear:           fiscalYear.Name,
			Remarks:              remarks,
			ChainSeq:             nextSeq,
			CorrelationId:        correlationId,
		}
		row.Checksum = computeGLChecksum(&row, prevChecksum)
		if err := tx.Create(&row).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return nil, warnings, &IdempotencyConflictError{VoucherType: args.VoucherType, VoucherNo: args.VoucherNo, EntrySet: entrySet}
			}
			config.LogError(logger, "glInsert.go", "InsertGLEntries", "CreateGLEntry", row, err)
			return nil, warnings, err
		}
		prevChecksum = row.Checksum
		nextSeq++
		ids = append(ids, row.ID)
	}

	return ids, warnings, nil
}
