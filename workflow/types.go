package workflow

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/ledger_core/models"
)

var validate = validator.New()

// ProposedGLEntry is one line of a GL batch as supplied by the caller.
// Proposed entries are value objects: the engines never mutate them,
// normalization and multicurrency preparation return new slices.
type ProposedGLEntry struct {
	AccountId            int `validate:"required"`
	PartyType            models.PartyType
	PartyId              string
	Debit                decimal.Decimal
	Credit               decimal.Decimal
	DebitInBaseCurrency  decimal.Decimal
	CreditInBaseCurrency decimal.Decimal
	Currency             string
	ExchangeRate         decimal.Decimal
	CostCenterId         int
	ProjectId            string
	Remarks              string
}

// ProposedSLEEntry is one stock movement as supplied by the caller.
// ActualQty is signed: positive for receipts, negative for issues.
type ProposedSLEEntry struct {
	ItemId          int `validate:"required"`
	WarehouseId     int `validate:"required"`
	ActualQty       decimal.Decimal
	IncomingRate    decimal.Decimal
	PostingDateTime time.Time
	BatchId         int
	SerialNos       string
}

type AccountBalance struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

type StockBalance struct {
	Qty           decimal.Decimal
	ValuationRate decimal.Decimal
	StockValue    decimal.Decimal
}
