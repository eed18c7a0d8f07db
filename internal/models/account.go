package models

// AccountKind represents the kind of money-holding account.
type AccountKind string

const (
	AccountKindChecking   AccountKind = "checking"
	AccountKindSavings    AccountKind = "savings"
	AccountKindInvestment AccountKind = "investment"
	AccountKindSalary     AccountKind = "salary"
)

// Valid reports whether k is one of the supported account kinds.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindChecking, AccountKindSavings, AccountKindInvestment, AccountKindSalary:
		return true
	}
	return false
}

// Account is a money-holding bucket. Balance is a running total in minor
// currency units and is only ever changed by the ledger engine.
type Account struct {
	Base
	UserID   string      `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_name" json:"user_id"`
	Name     string      `gorm:"not null;uniqueIndex:idx_accounts_user_name" json:"name"`
	Kind     AccountKind `gorm:"not null" json:"kind"`
	Balance  int64       `gorm:"type:bigint;not null;default:0" json:"balance"`
	IsActive bool        `gorm:"not null;default:true" json:"is_active"`
	Color    string      `gorm:"size:7" json:"color"`
}
