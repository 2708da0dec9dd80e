package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/models"
)

// ReverseGLEntries cancels a voucher's GL postings by appending mirror rows.
//
// Design:
// - Posted rows are never deleted. Each active row gets a mirror with debit
//   and credit swapped, linked through ReversesGLEntryId.
// - Mirror rows are persisted already cancelled, and the originals are
//   flagged cancelled, so the voucher key frees up for reposting and balance
//   queries (which skip cancelled rows) see zero net change.
// - Mirror rows still join the company hash chain with the same append rule
//   as inserts, so the audit trail covers reversals too.
// - Reversal is privileged: the posting checklist does not re-run.
//
// All entry sets of the voucher are reversed together.
func ReverseGLEntries(tx *gorm.DB, logger *logrus.Logger, voucherType models.VoucherType, voucherNo string, postingDate time.Time) ([]int, error) {
	var originals []models.GLEntry
	if err := tx.Where("voucher_type = ? AND voucher_no = ? AND is_cancelled = ?", voucherType, voucherNo, false).
		Order("id ASC").
		Find(&originals).Error; err != nil {
		return nil, err
	}
	if len(originals) == 0 {
		return nil, &NoActiveEntriesError{VoucherType: voucherType, VoucherNo: voucherNo}
	}

	companyId := originals[0].CompanyId
	tip, err := latestChainEntry(tx, companyId)
	if err != nil {
		return nil, err
	}
	prevChecksum := chainGenesis
	nextSeq := int64(0)
	if tip != nil {
		prevChecksum = tip.Checksum
		nextSeq = tip.ChainSeq + 1
	}

	cache := newRefCache()
	fiscalYearName := ""
	if fy, found, err := cache.fiscalYearFor(tx, companyId, postingDate); err != nil {
		return nil, err
	} else if found {
		fiscalYearName = fy.Name
	}

	correlationId := uuid.NewString()
	ids := make([]int, 0, len(originals))
	for i := range originals {
		o := &originals[i]
		fy := fiscalYearName
		if fy == "" {
			fy = o.FiscalYear
		}
		mirror := models.GLEntry{
			CompanyId:            o.CompanyId,
			PostingDate:          postingDate,
			AccountId:            o.AccountId,
			PartyType:            o.PartyType,
			PartyId:              o.PartyId,
			Debit:                o.Credit,
			Credit:               o.Debit,
			DebitInBaseCurrency:  o.CreditInBaseCurrency,
			CreditInBaseCurrency: o.DebitInBaseCurrency,
			Currency:             o.Currency,
			ExchangeRate:         o.ExchangeRate,
			VoucherType:          o.VoucherType,
			VoucherNo:            o.VoucherNo,
			EntrySet:             o.EntrySet,
			CostCenterId:         o.CostCenterId,
			ProjectId:            o.ProjectId,
			FiscalYear:           fy,
			IsCancelled:          true,
			ReversesGLEntryId:    &o.ID,
			Remarks:              fmt.Sprintf("Reversal of GL entry %d", o.ID),
			ChainSeq:             nextSeq,
			CorrelationId:        correlationId,
		}
		mirror.Checksum = computeGLChecksum(&mirror, prevChecksum)
		if err := tx.Create(&mirror).Error; err != nil {
			config.LogError(logger, "glReversal.go", "ReverseGLEntries", "CreateMirror", o.ID, err)
			return nil, err
		}
		prevChecksum = mirror.Checksum
		nextSeq++
		ids = append(ids, mirror.ID)

		// Cancellation is a metadata-only update; the model hook rejects
		// anything beyond these fields.
		if err := tx.Model(&models.GLEntry{}).
			Where("id = ?", o.ID).
			Updates(map[string]interface{}{
				"IsCancelled":         true,
				"ReversedByGLEntryId": mirror.ID,
			}).Error; err != nil {
			config.LogError(logger, "glReversal.go", "ReverseGLEntries", "CancelOriginal", o.ID, err)
			return nil, err
		}
	}

	return ids, nil
}
