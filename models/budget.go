package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps debit postings to an (account, cost center) pair within a
// fiscal year. Action decides whether an overrun is fatal or advisory.
type Budget struct {
	ID           int             `gorm:"primary_key" json:"id"`
	CompanyId    string          `gorm:"size:64;not null;index" json:"company_id"`
	FiscalYear   string          `gorm:"size:16;not null;index:idx_budget_key,priority:3" json:"fiscal_year"`
	AccountId    int             `gorm:"not null;index:idx_budget_key,priority:1" json:"account_id"`
	CostCenterId int             `gorm:"not null;index:idx_budget_key,priority:2" json:"cost_center_id"`
	BudgetAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"budget_amount"`
	Action       BudgetAction    `gorm:"size:10;not null;default:'WARN'" json:"action"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
