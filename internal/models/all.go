package models

import "gorm.io/gorm"

// All lists every model in migration order. Tests and DB_DRIVER=sqlite
// use it with AutoMigrate; postgres uses the SQL files in migrations/.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Account{},
		&Category{},
		&Transaction{},
		&TransactionCategory{},
		&CreditCard{},
		&CardInvoice{},
		&AuditLog{},
	}
}

// SetupJoinTables registers TransactionCategory as the join model behind
// Transaction.Categories so gorm reads and writes the same table the
// ledger store maintains by hand.
func SetupJoinTables(db *gorm.DB) error {
	return db.SetupJoinTable(&Transaction{}, "Categories", &TransactionCategory{})
}
