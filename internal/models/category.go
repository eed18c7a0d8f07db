package models

// Category is a user-defined label attached to transactions. It has no
// effect on balances.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:idx_categories_user_name" json:"name"`
	Color  string `gorm:"size:7" json:"color"`
}

// TransactionCategory links a transaction to one of its categories.
type TransactionCategory struct {
	TransactionID string `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	CategoryID    string `gorm:"type:uuid;primaryKey;index" json:"category_id"`
}
