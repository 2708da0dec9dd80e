package models

import "time"

// Reference tables. The posting engines read these by primary key and trust
// their attributes as ground truth for validation decisions; they are
// written by the surrounding system, never by this core.

type Account struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CompanyId   string          `gorm:"size:64;not null;index" json:"company_id"`
	Name        string          `gorm:"index;size:255;not null" json:"name"`
	RootType    AccountRootType `gorm:"size:20;not null;index" json:"root_type"`
	AccountType AccountType     `gorm:"size:20;index" json:"account_type"`
	IsGroup     bool            `gorm:"not null;default:false" json:"is_group"`
	Disabled    bool            `gorm:"not null;default:false" json:"disabled"`
	IsFrozen    bool            `gorm:"not null;default:false" json:"is_frozen"`
	Currency    string          `gorm:"size:8" json:"currency"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type CostCenter struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CompanyId string    `gorm:"size:64;not null;index" json:"company_id"`
	Name      string    `gorm:"index;size:255;not null" json:"name"`
	IsGroup   bool      `gorm:"not null;default:false" json:"is_group"`
	Disabled  bool      `gorm:"not null;default:false" json:"disabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Company struct {
	ID              string `gorm:"size:64;primary_key" json:"id"`
	Name            string `gorm:"size:255;not null" json:"name"`
	DefaultCurrency string `gorm:"size:8;not null" json:"default_currency"`
	// Decimal places used when rounding posted amounts.
	CurrencyPrecision int32 `gorm:"not null;default:2" json:"currency_precision"`
	// Books are frozen through this date; postings on or before it require
	// FrozenEntriesRole on the acting caller.
	BooksFrozenTill   *time.Time `json:"books_frozen_till"`
	FrozenEntriesRole string     `gorm:"size:100" json:"frozen_entries_role"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type FiscalYear struct {
	Name      string    `gorm:"size:16;primary_key" json:"name"`
	CompanyId string    `gorm:"size:64;primary_key" json:"company_id"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	Closed    bool      `gorm:"not null;default:false" json:"closed"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Covers reports whether d falls inside the fiscal year, inclusive of both
// boundary dates.
func (fy *FiscalYear) Covers(d time.Time) bool {
	return !d.Before(fy.StartDate) && !d.After(fy.EndDate)
}
