package models

import "gorm.io/gorm"

// MigrateTable creates or updates every table this core reads or writes.
// Reference tables are migrated too so a fresh database is usable in tests
// and local development; production schema ownership stays with the
// surrounding system.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&GLEntry{},
		&StockLedgerEntry{},
		&Account{},
		&CostCenter{},
		&Company{},
		&FiscalYear{},
		&Item{},
		&Warehouse{},
		&Batch{},
		&Budget{},
	)
}
