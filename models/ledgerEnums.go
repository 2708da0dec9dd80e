package models

// Root types classify accounts for balance-sheet vs P&L behaviour.
type AccountRootType string

const (
	RootTypeAsset     AccountRootType = "ASSET"
	RootTypeLiability AccountRootType = "LIABILITY"
	RootTypeEquity    AccountRootType = "EQUITY"
	RootTypeIncome    AccountRootType = "INCOME"
	RootTypeExpense   AccountRootType = "EXPENSE"
)

// IsProfitAndLoss reports whether postings to this root type hit the P&L.
func (rt AccountRootType) IsProfitAndLoss() bool {
	return rt == RootTypeIncome || rt == RootTypeExpense
}

// Account types with posting-time significance. Other account types exist in
// the chart of accounts but the engines treat them uniformly.
type AccountType string

const (
	AccountTypeReceivable             AccountType = "RECEIVABLE"
	AccountTypePayable                AccountType = "PAYABLE"
	AccountTypeStock                  AccountType = "STOCK"
	AccountTypeCostOfGoodsSold        AccountType = "COGS"
	AccountTypeStockReceivedNotBilled AccountType = "SRNB"
	AccountTypeCapitalWorkInProgress  AccountType = "CWIP"
)

type PartyType string

const (
	PartyTypeCustomer PartyType = "CUSTOMER"
	PartyTypeSupplier PartyType = "SUPPLIER"
	PartyTypeEmployee PartyType = "EMPLOYEE"
)

// Voucher types the posting engines recognise. The set is open-ended; only
// VoucherTypeJournalEntry carries special handling (CWIP restriction).
type VoucherType string

const (
	VoucherTypeJournalEntry    VoucherType = "JOURNAL_ENTRY"
	VoucherTypeSalesInvoice    VoucherType = "SALES_INVOICE"
	VoucherTypePurchaseInvoice VoucherType = "PURCHASE_INVOICE"
	VoucherTypeStockEntry      VoucherType = "STOCK_ENTRY"
	VoucherTypePayment         VoucherType = "PAYMENT"
)

// Entry sets distinguish independently reversible GL batches of one voucher.
const (
	EntrySetPrimary = "primary"
	EntrySetCogs    = "cogs"
)

// Budget overrun policy.
type BudgetAction string

const (
	BudgetActionStop BudgetAction = "STOP"
	BudgetActionWarn BudgetAction = "WARN"
)
