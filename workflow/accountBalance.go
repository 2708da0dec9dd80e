package workflow

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/models"
	"bitbucket.org/mmdatafocus/ledger_core/utils"
)

// GetAccountBalance aggregates posted debits and credits for an account over
// non-cancelled rows, optionally bounded by an as-of posting date. Totals are
// rounded to the account company's currency precision. Summation happens on
// exact decimals in application code, never on database floats.
func GetAccountBalance(tx *gorm.DB, accountId int, asOf *time.Time) (AccountBalance, error) {
	cache := newRefCache()
	account, err := cache.account(tx, accountId)
	if err != nil {
		return AccountBalance{}, err
	}
	company, err := cache.company(tx, account.CompanyId)
	if err != nil {
		return AccountBalance{}, err
	}

	q := tx.Where("account_id = ? AND is_cancelled = ?", accountId, false)
	if asOf != nil {
		q = q.Where("posting_date <= ?", *asOf)
	}
	var rows []models.GLEntry
	if err := q.Find(&rows).Error; err != nil {
		return AccountBalance{}, err
	}

	debit, credit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		debit = debit.Add(row.Debit)
		credit = credit.Add(row.Credit)
	}
	debit = utils.RoundToCurrency(debit, company.CurrencyPrecision)
	credit = utils.RoundToCurrency(credit, company.CurrencyPrecision)

	return AccountBalance{
		Debit:   debit,
		Credit:  credit,
		Balance: debit.Sub(credit),
	}, nil
}
