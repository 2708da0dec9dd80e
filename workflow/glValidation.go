package workflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/models"
	"bitbucket.org/mmdatafocus/ledger_core/utils"
)

type GLValidationArgs struct {
	Entries     []ProposedGLEntry
	CompanyId   string `validate:"required"`
	PostingDate time.Time
	VoucherType models.VoucherType
	IsOpening   bool
	// ActingRole is matched against the company's frozen-entries role for
	// frozen accounts and frozen-period postings.
	ActingRole string
}

// NormalizeGLEntries flips negative amounts to the opposite side: a negative
// debit becomes a positive credit and vice versa. Each entry's amounts are
// rounded to the currency precision here, so the balance check and the
// persisted rows see identical numbers. Returns a new slice; the input is
// never mutated.
func NormalizeGLEntries(entries []ProposedGLEntry, precision int32) []ProposedGLEntry {
	normalized := make([]ProposedGLEntry, len(entries))
	for i, e := range entries {
		if e.Debit.IsNegative() {
			e.Credit = e.Credit.Add(e.Debit.Neg())
			e.Debit = decimal.Zero
		}
		if e.Credit.IsNegative() {
			e.Debit = e.Debit.Add(e.Credit.Neg())
			e.Credit = decimal.Zero
		}
		e.Debit = utils.RoundToCurrency(e.Debit, precision)
		e.Credit = utils.RoundToCurrency(e.Credit, precision)
		normalized[i] = e
	}
	return normalized
}

// ValidateGLEntries runs the posting checklist against a proposed batch.
//
// It returns the sign-normalized copy of the batch, non-fatal warnings
// collected so far, and the first fatal error. Checks run in a fixed order
// and the first failure aborts the batch. Nothing is written.
func ValidateGLEntries(tx *gorm.DB, logger *logrus.Logger, args GLValidationArgs) ([]ProposedGLEntry, []string, error) {
	warnings := make([]string, 0)

	if err := validate.Struct(args); err != nil {
		return nil, warnings, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
	}
	for _, e := range args.Entries {
		if err := validate.Struct(e); err != nil {
			return nil, warnings, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
		}
	}

	cache := newRefCache()
	company, err := cache.company(tx, args.CompanyId)
	if err != nil {
		return nil, warnings, err
	}

	entries := NormalizeGLEntries(args.Entries, company.CurrencyPrecision)

	// 1. Double-entry balance, on the already-rounded per-entry amounts.
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, e := range entries {
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		diff := totalDebit.Sub(totalCredit)
		return nil, warnings, &ValidationError{
			Kind:       FailureUnbalanced,
			Reason:     fmt.Sprintf("debit total %s does not equal credit total %s (difference %s)", totalDebit, totalCredit, diff),
			Difference: diff,
		}
	}

	// 2. Account postability.
	for _, e := range entries {
		account, err := cache.account(tx, e.AccountId)
		if err != nil {
			if _, notFound := err.(*LookupError); notFound {
				return nil, warnings, &ValidationError{
					Kind:      FailureAccountNotFound,
					AccountId: e.AccountId,
					Reason:    "account does not exist",
				}
			}
			return nil, warnings, err
		}
		if account.IsGroup {
			return nil, warnings, &ValidationError{
				Kind:      FailureAccountNotPostable,
				AccountId: account.ID,
				Name:      account.Name,
				Reason:    "group accounts cannot be posted to",
			}
		}
		if account.Disabled {
			return nil, warnings, &ValidationError{
				Kind:      FailureAccountNotPostable,
				AccountId: account.ID,
				Name:      account.Name,
				Reason:    "account is disabled",
			}
		}
	}

	// 3. Account-company affinity.
	for _, e := range entries {
		account, _ := cache.account(tx, e.AccountId)
		if account.CompanyId != args.CompanyId {
			return nil, warnings, &ValidationError{
				Kind:      FailureAccountCompany,
				AccountId: account.ID,
				Name:      account.Name,
				Reason:    fmt.Sprintf("account belongs to company %s, posting company is %s", account.CompanyId, args.CompanyId),
			}
		}
	}

	// 4. Frozen account.
	for _, e := range entries {
		account, _ := cache.account(tx, e.AccountId)
		if account.IsFrozen {
			if company.FrozenEntriesRole == "" || args.ActingRole != company.FrozenEntriesRole {
				return nil, warnings, &ValidationError{
					Kind:      FailureFrozenAccount,
					AccountId: account.ID,
					Name:      account.Name,
					Reason:    "account is frozen and the acting role is not permitted to post to it",
				}
			}
		}
	}

	// 5. Party requirement for receivable/payable accounts.
	for _, e := range entries {
		account, _ := cache.account(tx, e.AccountId)
		switch account.AccountType {
		case models.AccountTypeReceivable:
			if e.PartyType != models.PartyTypeCustomer || e.PartyId == "" {
				return nil, warnings, &ValidationError{
					Kind:      FailurePartyRequired,
					AccountId: account.ID,
					Name:      account.Name,
					Reason:    "receivable accounts require a customer party",
				}
			}
		case models.AccountTypePayable:
			if (e.PartyType != models.PartyTypeSupplier && e.PartyType != models.PartyTypeEmployee) || e.PartyId == "" {
				return nil, warnings, &ValidationError{
					Kind:      FailurePartyRequired,
					AccountId: account.ID,
					Name:      account.Name,
					Reason:    "payable accounts require a supplier or employee party",
				}
			}
		}
	}

	// 6. Cost center required on P&L accounts.
	for _, e := range entries {
		account, _ := cache.account(tx, e.AccountId)
		if account.RootType.IsProfitAndLoss() && e.CostCenterId == 0 {
			return nil, warnings, &ValidationError{
				Kind:      FailureCostCenterRequired,
				AccountId: account.ID,
				Name:      account.Name,
				Reason:    "income/expense postings require a cost center",
			}
		}
	}

	// 7. Opening entries must not touch the P&L.
	if args.IsOpening {
		for _, e := range entries {
			account, _ := cache.account(tx, e.AccountId)
			if account.RootType.IsProfitAndLoss() {
				return nil, warnings, &ValidationError{
					Kind:      FailureOpeningPLRestricted,
					AccountId: account.ID,
					Name:      account.Name,
					Reason:    "opening entries cannot post to income/expense accounts",
				}
			}
		}
	}

	// 8. Cost-center validity.
	for _, e := range entries {
		if e.CostCenterId == 0 {
			continue
		}
		cc, err := cache.costCenter(tx, e.CostCenterId)
		if err != nil {
			if _, notFound := err.(*LookupError); notFound {
				return nil, warnings, &ValidationError{
					Kind:         FailureCostCenterInvalid,
					CostCenterId: e.CostCenterId,
					Reason:       "cost center does not exist",
				}
			}
			return nil, warnings, err
		}
		if cc.IsGroup {
			return nil, warnings, &ValidationError{
				Kind:         FailureCostCenterInvalid,
				CostCenterId: cc.ID,
				Name:         cc.Name,
				Reason:       "group cost centers cannot be posted to",
			}
		}
		if cc.CompanyId != args.CompanyId {
			return nil, warnings, &ValidationError{
				Kind:         FailureCostCenterInvalid,
				CostCenterId: cc.ID,
				Name:         cc.Name,
				Reason:       fmt.Sprintf("cost center belongs to company %s, posting company is %s", cc.CompanyId, args.CompanyId),
			}
		}
	}

	// 9. Fiscal year must exist and be open.
	fiscalYear, found, err := cache.fiscalYearFor(tx, args.CompanyId, args.PostingDate)
	if err != nil {
		return nil, warnings, err
	}
	if !found {
		return nil, warnings, &ValidationError{
			Kind:   FailureFiscalYearMissing,
			Reason: fmt.Sprintf("no fiscal year covers posting date %s", args.PostingDate.Format("2006-01-02")),
		}
	}
	if fiscalYear.Closed {
		return nil, warnings, &ValidationError{
			Kind:   FailureFiscalYearClosed,
			Name:   fiscalYear.Name,
			Reason: fmt.Sprintf("fiscal year %s is closed", fiscalYear.Name),
		}
	}

	// 10. Books frozen through a date.
	if company.BooksFrozenTill != nil && !args.PostingDate.After(*company.BooksFrozenTill) {
		if company.FrozenEntriesRole == "" || args.ActingRole != company.FrozenEntriesRole {
			return nil, warnings, &ValidationError{
				Kind:   FailureBooksFrozen,
				Reason: fmt.Sprintf("books are frozen through %s", company.BooksFrozenTill.Format("2006-01-02")),
			}
		}
	}

	// 11. No-op entries are forbidden.
	for _, e := range entries {
		if e.Debit.IsZero() && e.Credit.IsZero() {
			account, _ := cache.account(tx, e.AccountId)
			return nil, warnings, &ValidationError{
				Kind:      FailureZeroAmount,
				AccountId: account.ID,
				Name:      account.Name,
				Reason:    "entry has neither debit nor credit",
			}
		}
	}

	// 12. Budget check per (account, cost center, fiscal year).
	budgetWarnings, err := checkBudgets(tx, logger, cache, entries, args.CompanyId, fiscalYear)
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, budgetWarnings...)

	return entries, warnings, nil
}

func checkBudgets(tx *gorm.DB, logger *logrus.Logger, cache *refCache, entries []ProposedGLEntry, companyId string, fiscalYear *models.FiscalYear) ([]string, error) {
	warnings := make([]string, 0)

	// Aggregate proposed debits so several lines against the same budget key
	// within one batch are counted together.
	type budgetKey struct {
		AccountId    int
		CostCenterId int
	}
	proposed := make(map[budgetKey]decimal.Decimal)
	for _, e := range entries {
		if e.CostCenterId == 0 || !e.Debit.IsPositive() {
			continue
		}
		key := budgetKey{AccountId: e.AccountId, CostCenterId: e.CostCenterId}
		proposed[key] = proposed[key].Add(e.Debit)
	}

	for key, proposedDebit := range proposed {
		var budget models.Budget
		err := tx.Where("company_id = ? AND account_id = ? AND cost_center_id = ? AND fiscal_year = ?",
			companyId, key.AccountId, key.CostCenterId, fiscalYear.Name).
			First(&budget).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return warnings, err
		}

		var prior []models.GLEntry
		if err := tx.Where("company_id = ? AND account_id = ? AND cost_center_id = ? AND fiscal_year = ? AND is_cancelled = ?",
			companyId, key.AccountId, key.CostCenterId, fiscalYear.Name, false).
			Find(&prior).Error; err != nil {
			return warnings, err
		}
		priorDebit := decimal.Zero
		for _, row := range prior {
			priorDebit = priorDebit.Add(row.Debit)
		}

		total := priorDebit.Add(proposedDebit)
		if total.Cmp(budget.BudgetAmount) <= 0 {
			continue
		}
		overrun := total.Sub(budget.BudgetAmount)
		if budget.Action == models.BudgetActionStop {
			return warnings, &ValidationError{
				Kind:         FailureBudgetExceeded,
				AccountId:    key.AccountId,
				CostCenterId: key.CostCenterId,
				Reason:       fmt.Sprintf("budget %s exceeded by %s", budget.BudgetAmount, overrun),
				Difference:   overrun,
			}
		}
		msg := fmt.Sprintf("budget for account %d / cost center %d exceeded by %s (budget %s, total %s)",
			key.AccountId, key.CostCenterId, overrun, budget.BudgetAmount, total)
		warnings = append(warnings, msg)
		config.LogWarn(logger, "glValidation.go", "checkBudgets", "BudgetOverrun", key, msg)
	}

	return warnings, nil
}
