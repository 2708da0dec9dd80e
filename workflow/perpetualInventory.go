package workflow

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/models"
)

type PerpetualInventoryArgs struct {
	CompanyId string `validate:"required"`
	// SLEIds are the stock rows just inserted in this transaction.
	SLEIds []int
	// ContraAccountId overrides the default contra resolution, e.g. cost of
	// goods sold for a sale.
	ContraAccountId int
	CostCenterId    int
}

// CreatePerpetualInventoryGL derives balanced GL entry pairs from stock
// value movements: debit stock / credit contra for value coming in, the
// other way around for value going out.
//
// The bridge only builds the records; the caller feeds them to
// InsertGLEntries inside the same transaction. Movements whose stock or
// contra account cannot be resolved are skipped with a warning log, matching
// companies that run some warehouses outside perpetual inventory.
func CreatePerpetualInventoryGL(tx *gorm.DB, logger *logrus.Logger, args PerpetualInventoryArgs) ([]ProposedGLEntry, error) {
	if err := validate.Struct(args); err != nil {
		return nil, &ValidationError{Kind: FailureInvalidInput, Reason: err.Error()}
	}
	if len(args.SLEIds) == 0 {
		return []ProposedGLEntry{}, nil
	}

	var sles []models.StockLedgerEntry
	if err := tx.Where("id IN ?", args.SLEIds).Order("id ASC").Find(&sles).Error; err != nil {
		return nil, err
	}

	cache := newRefCache()
	glEntries := make([]ProposedGLEntry, 0, len(sles)*2)
	for i := range sles {
		sle := &sles[i]
		if sle.StockValueDifference.IsZero() {
			continue
		}

		stockAccountId, err := resolveStockAccount(tx, cache, args.CompanyId, sle.WarehouseId)
		if err != nil {
			return nil, err
		}
		if stockAccountId == 0 {
			config.LogWarn(logger, "perpetualInventory.go", "CreatePerpetualInventoryGL", "NoStockAccount",
				sle.ID, fmt.Sprintf("no stock account for warehouse %d; skipping GL for SLE %d", sle.WarehouseId, sle.ID))
			continue
		}

		contraAccountId := args.ContraAccountId
		if contraAccountId == 0 {
			// Receipt vs issue is decided by the movement's quantity, not the
			// value delta: a negative-value correction on a receipt still
			// belongs against stock received but not billed.
			contraType := models.AccountTypeStockReceivedNotBilled
			if sle.ActualQty.IsNegative() {
				contraType = models.AccountTypeCostOfGoodsSold
			}
			contraAccountId, err = findAccountByType(tx, args.CompanyId, contraType)
			if err != nil {
				return nil, err
			}
		}
		if contraAccountId == 0 {
			config.LogWarn(logger, "perpetualInventory.go", "CreatePerpetualInventoryGL", "NoContraAccount",
				sle.ID, fmt.Sprintf("no contra account resolvable; skipping GL for SLE %d", sle.ID))
			continue
		}

		amount := sle.StockValueDifference.Abs()
		remarks := fmt.Sprintf("Stock value change for item %d in warehouse %d", sle.ItemId, sle.WarehouseId)
		debitAccount, creditAccount := stockAccountId, contraAccountId
		if sle.StockValueDifference.IsNegative() {
			debitAccount, creditAccount = contraAccountId, stockAccountId
		}
		glEntries = append(glEntries,
			ProposedGLEntry{
				AccountId:    debitAccount,
				Debit:        amount,
				CostCenterId: args.CostCenterId,
				Remarks:      remarks,
			},
			ProposedGLEntry{
				AccountId:    creditAccount,
				Credit:       amount,
				CostCenterId: args.CostCenterId,
				Remarks:      remarks,
			},
		)
	}

	return glEntries, nil
}

// resolveStockAccount prefers the warehouse's linked account, then any stock
// account belonging to the company. Returns 0 when neither exists.
func resolveStockAccount(tx *gorm.DB, cache *refCache, companyId string, warehouseId int) (int, error) {
	warehouse, err := cache.warehouse(tx, warehouseId)
	if err != nil {
		return 0, err
	}
	if warehouse.AccountId > 0 {
		return warehouse.AccountId, nil
	}
	return findAccountByType(tx, companyId, models.AccountTypeStock)
}

func findAccountByType(tx *gorm.DB, companyId string, accountType models.AccountType) (int, error) {
	var account models.Account
	err := tx.Where("company_id = ? AND account_type = ? AND is_group = ? AND disabled = ?",
		companyId, accountType, false, false).
		Order("id ASC").
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.ID, nil
}
