package workflow

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/models"
)

// refCache memoizes reference-table lookups for the duration of one engine
// invocation. It is created per call and never shared, so no cross-request
// state leaks between postings.
type refCache struct {
	accounts    map[int]*models.Account
	costCenters map[int]*models.CostCenter
	companies   map[string]*models.Company
	items       map[int]*models.Item
	warehouses  map[int]*models.Warehouse
	batches     map[int]*models.Batch
}

func newRefCache() *refCache {
	return &refCache{
		accounts:    make(map[int]*models.Account),
		costCenters: make(map[int]*models.CostCenter),
		companies:   make(map[string]*models.Company),
		items:       make(map[int]*models.Item),
		warehouses:  make(map[int]*models.Warehouse),
		batches:     make(map[int]*models.Batch),
	}
}

func (c *refCache) account(tx *gorm.DB, id int) (*models.Account, error) {
	if a, ok := c.accounts[id]; ok {
		return a, nil
	}
	var a models.Account
	if err := tx.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &LookupError{Entity: "account", Key: fmt.Sprint(id)}
		}
		return nil, err
	}
	c.accounts[id] = &a
	return &a, nil
}

func (c *refCache) costCenter(tx *gorm.DB, id int) (*models.CostCenter, error) {
	if cc, ok := c.costCenters[id]; ok {
		return cc, nil
	}
	var cc models.CostCenter
	if err := tx.Where("id = ?", id).First(&cc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &LookupError{Entity: "cost center", Key: fmt.Sprint(id)}
		}
		return nil, err
	}
	c.costCenters[id] = &cc
	return &cc, nil
}

func (c *refCache) company(tx *gorm.DB, id string) (*models.Company, error) {
	if co, ok := c.companies[id]; ok {
		return co, nil
	}
	var co models.Company
	if err := tx.Where("id = ?", id).First(&co).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &LookupError{Entity: "company", Key: id}
		}
		return nil, err
	}
	c.companies[id] = &co
	return &co, nil
}

func (c *refCache) item(tx *gorm.DB, id int) (*models.Item, error) {
	if it, ok := c.items[id]; ok {
		return it, nil
	}
	var it models.Item
	if err := tx.Where("id = ?", id).First(&it).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &LookupError{Entity: "item", Key: fmt.Sprint(id)}
		}
		return nil, err
	}
	c.items[id] = &it
	return &it, nil
}

func (c *refCache) warehouse(tx *gorm.DB, id int) (*models.Warehouse, error) {
	if w, ok := c.warehouses[id]; ok {
		return w, nil
	}
	var w models.Warehouse
	if err := tx.Where("id = ?", id).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &LookupError{Entity: "warehouse", Key: fmt.Sprint(id)}
		}
		return nil, err
	}
	c.warehouses[id] = &w
	return &w, nil
}

func (c *refCache) batch(tx *gorm.DB, id int) (*models.Batch, error) {
	if b, ok := c.batches[id]; ok {
		return b, nil
	}
	var b models.Batch
	if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &LookupError{Entity: "batch", Key: fmt.Sprint(id)}
		}
		return nil, err
	}
	c.batches[id] = &b
	return &b, nil
}

// fiscalYearFor resolves the fiscal year covering d for a company.
// found=false with a nil error means no fiscal year covers the date; the
// caller decides how to report that.
func (c *refCache) fiscalYearFor(tx *gorm.DB, companyId string, d time.Time) (*models.FiscalYear, bool, error) {
	var fy models.FiscalYear
	err := tx.Where("company_id = ? AND start_date <= ? AND end_date >= ?", companyId, d, d).
		First(&fy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &fy, true, nil
}
