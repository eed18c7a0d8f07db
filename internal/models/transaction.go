package models

import "time"

// TransactionKind represents the kind of ledger entry.
type TransactionKind string

const (
	TransactionKindIncome   TransactionKind = "INCOME"
	TransactionKindExpense  TransactionKind = "EXPENSE"
	TransactionKindTransfer TransactionKind = "TRANSFER"
)

// Valid reports whether k is a supported transaction kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindIncome, TransactionKindExpense, TransactionKindTransfer:
		return true
	}
	return false
}

// TransactionStatus controls whether a transaction moves money.
type TransactionStatus string

const (
	TransactionStatusPaid      TransactionStatus = "PAID"
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Valid reports whether s is a supported transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPaid, TransactionStatusPending, TransactionStatusCancelled:
		return true
	}
	return false
}

// Transaction represents a ledger entry. Only PAID transactions affect
// account balances.
type Transaction struct {
	Base
	UserID               string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind                 TransactionKind   `gorm:"not null" json:"kind"`
	Amount               int64             `gorm:"type:bigint;not null" json:"amount"`
	Description          string            `json:"description"`
	Counterparty         string            `json:"counterparty"`
	Date                 time.Time         `gorm:"not null;index" json:"date"`
	Status               TransactionStatus `gorm:"not null;index" json:"status"`
	SourceAccountID      string            `gorm:"type:uuid;not null;index" json:"source_account_id"`
	DestinationAccountID *string           `gorm:"type:uuid;index" json:"destination_account_id,omitempty"`

	// Relationships
	SourceAccount      *Account   `gorm:"foreignKey:SourceAccountID" json:"source_account,omitempty"`
	DestinationAccount *Account   `gorm:"foreignKey:DestinationAccountID" json:"destination_account,omitempty"`
	Categories         []Category `gorm:"many2many:transaction_categories;joinForeignKey:TransactionID;joinReferences:CategoryID" json:"categories,omitempty"`
}

// CategoryIDs returns the ids of the loaded categories.
func (t *Transaction) CategoryIDs() []string {
	ids := make([]string, 0, len(t.Categories))
	for i := range t.Categories {
		ids = append(ids, t.Categories[i].ID)
	}
	return ids
}
