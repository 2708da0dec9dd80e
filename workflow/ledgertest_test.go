package workflow_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bitbucket.org/mmdatafocus/ledger_core/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.MigrateTable(db))
	return db
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fixture seeds one company with a usable chart of accounts, a fiscal year
// covering 2026, a cost center, items and a warehouse.
type fixture struct {
	db     *gorm.DB
	logger *logrus.Logger

	company models.Company

	cash       models.Account
	revenue    models.Account
	expense    models.Account
	receivable models.Account
	payable    models.Account
	stockAcct  models.Account
	cogs       models.Account
	srnb       models.Account
	cwip       models.Account
	groupAcct  models.Account
	disabled   models.Account
	frozen     models.Account

	costCenter models.CostCenter
	groupCC    models.CostCenter

	item      models.Item
	batchItem models.Item
	warehouse models.Warehouse
	batch     models.Batch
}

func postingDate() time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:     newTestDB(t),
		logger: newTestLogger(),
	}

	f.company = models.Company{
		ID:                "acme",
		Name:              "Acme Trading Co",
		DefaultCurrency:   "USD",
		CurrencyPrecision: 2,
		FrozenEntriesRole: "Accounts Manager",
	}
	require.NoError(t, f.db.Create(&f.company).Error)

	require.NoError(t, f.db.Create(&models.FiscalYear{
		Name:      "FY2026",
		CompanyId: "acme",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}).Error)

	accounts := []*models.Account{
		{Name: "Cash", RootType: models.RootTypeAsset},
		{Name: "Sales Revenue", RootType: models.RootTypeIncome},
		{Name: "Office Expense", RootType: models.RootTypeExpense},
		{Name: "Debtors", RootType: models.RootTypeAsset, AccountType: models.AccountTypeReceivable},
		{Name: "Creditors", RootType: models.RootTypeLiability, AccountType: models.AccountTypePayable},
		{Name: "Stock In Hand", RootType: models.RootTypeAsset, AccountType: models.AccountTypeStock},
		{Name: "Cost of Goods Sold", RootType: models.RootTypeExpense, AccountType: models.AccountTypeCostOfGoodsSold},
		{Name: "Stock Received But Not Billed", RootType: models.RootTypeLiability, AccountType: models.AccountTypeStockReceivedNotBilled},
		{Name: "Capital Work In Progress", RootType: models.RootTypeAsset, AccountType: models.AccountTypeCapitalWorkInProgress},
		{Name: "Current Assets", RootType: models.RootTypeAsset, IsGroup: true},
		{Name: "Old Bank", RootType: models.RootTypeAsset, Disabled: true},
		{Name: "Reserved Fund", RootType: models.RootTypeEquity, IsFrozen: true},
	}
	for _, a := range accounts {
		a.CompanyId = "acme"
		a.Currency = "USD"
		require.NoError(t, f.db.Create(a).Error)
	}
	f.cash = *accounts[0]
	f.revenue = *accounts[1]
	f.expense = *accounts[2]
	f.receivable = *accounts[3]
	f.payable = *accounts[4]
	f.stockAcct = *accounts[5]
	f.cogs = *accounts[6]
	f.srnb = *accounts[7]
	f.cwip = *accounts[8]
	f.groupAcct = *accounts[9]
	f.disabled = *accounts[10]
	f.frozen = *accounts[11]

	f.costCenter = models.CostCenter{CompanyId: "acme", Name: "Main"}
	require.NoError(t, f.db.Create(&f.costCenter).Error)
	f.groupCC = models.CostCenter{CompanyId: "acme", Name: "All Cost Centers", IsGroup: true}
	require.NoError(t, f.db.Create(&f.groupCC).Error)

	f.item = models.Item{Name: "Widget", IsStockItem: true, StandardRate: decimal.NewFromInt(4)}
	require.NoError(t, f.db.Create(&f.item).Error)
	f.batchItem = models.Item{Name: "Serum", IsStockItem: true, HasBatch: true}
	require.NoError(t, f.db.Create(&f.batchItem).Error)

	f.warehouse = models.Warehouse{CompanyId: "acme", Name: "Main Store", AccountId: f.stockAcct.ID}
	require.NoError(t, f.db.Create(&f.warehouse).Error)

	expiry := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f.batch = models.Batch{BatchNo: "SRM-001", ItemId: f.batchItem.ID, ExpiryDate: &expiry}
	require.NoError(t, f.db.Create(&f.batch).Error)

	return f
}

// otherCompany seeds a second company with one postable account and one
// warehouse, for cross-company affinity tests.
func (f *fixture) otherCompany(t *testing.T) (models.Company, models.Account, models.Warehouse) {
	t.Helper()
	company := models.Company{ID: "globex", Name: "Globex", DefaultCurrency: "USD", CurrencyPrecision: 2}
	require.NoError(t, f.db.Create(&company).Error)
	account := models.Account{CompanyId: "globex", Name: "Globex Cash", RootType: models.RootTypeAsset, Currency: "USD"}
	require.NoError(t, f.db.Create(&account).Error)
	warehouse := models.Warehouse{CompanyId: "globex", Name: "Globex Store"}
	require.NoError(t, f.db.Create(&warehouse).Error)
	return company, account, warehouse
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}
