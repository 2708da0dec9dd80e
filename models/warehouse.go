package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          int    `gorm:"primary_key" json:"id"`
	Name        string `gorm:"index;size:255;not null" json:"name"`
	IsStockItem bool   `gorm:"not null;default:true" json:"is_stock_item"`
	Disabled    bool   `gorm:"not null;default:false" json:"disabled"`
	HasBatch    bool   `gorm:"not null;default:false" json:"has_batch"`
	HasSerial   bool   `gorm:"not null;default:false" json:"has_serial"`
	// Fallback incoming rate for receipts that do not carry one.
	StandardRate decimal.Decimal `gorm:"type:decimal(20,6);default:0" json:"standard_rate"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type Warehouse struct {
	ID        int    `gorm:"primary_key" json:"id"`
	CompanyId string `gorm:"size:64;not null;index" json:"company_id"`
	Name      string `gorm:"index;size:255;not null" json:"name"`
	IsGroup   bool   `gorm:"not null;default:false" json:"is_group"`
	// Stock account posted against by the perpetual inventory bridge.
	AccountId int       `gorm:"index" json:"account_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Batch struct {
	ID         int        `gorm:"primary_key" json:"id"`
	BatchNo    string     `gorm:"index;size:100;not null" json:"batch_no"`
	ItemId     int        `gorm:"index;not null" json:"item_id"`
	ExpiryDate *time.Time `json:"expiry_date"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
