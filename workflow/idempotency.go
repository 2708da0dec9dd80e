package workflow

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/models"
)

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// assertNoActiveGLBatch is the GL idempotency gate: at most one non-cancelled
// batch may exist per (voucher_type, voucher_no, entry_set). It runs before
// validation so a retried voucher fails fast.
//
// The existence check is racy between concurrent transactions; the caller's
// per-company posting lock (or serializable isolation) is the backstop.
func assertNoActiveGLBatch(tx *gorm.DB, voucherType models.VoucherType, voucherNo, entrySet string) error {
	var count int64
	if err := tx.Model(&models.GLEntry{}).
		Where("voucher_type = ? AND voucher_no = ? AND entry_set = ? AND is_cancelled = ?",
			voucherType, voucherNo, entrySet, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &IdempotencyConflictError{VoucherType: voucherType, VoucherNo: voucherNo, EntrySet: entrySet}
	}
	return nil
}

// assertNoActiveSLEBatch is the stock equivalent, keyed per voucher (stock
// postings carry no entry sets).
func assertNoActiveSLEBatch(tx *gorm.DB, voucherType models.VoucherType, voucherNo string) error {
	var count int64
	if err := tx.Model(&models.StockLedgerEntry{}).
		Where("voucher_type = ? AND voucher_no = ? AND is_cancelled = ?", voucherType, voucherNo, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &IdempotencyConflictError{VoucherType: voucherType, VoucherNo: voucherNo}
	}
	return nil
}
