package models

// CreditCard describes a card and its billing days. Cards are plain data:
// no balance logic runs against them.
type CreditCard struct {
	Base
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_credit_cards_user_name" json:"user_id"`
	Name       string `gorm:"not null;uniqueIndex:idx_credit_cards_user_name" json:"name"`
	LimitCents int64  `gorm:"type:bigint;not null" json:"limit_cents"`
	ClosingDay int    `gorm:"not null" json:"closing_day"`
	DueDay     int    `gorm:"not null" json:"due_day"`
	Color      string `gorm:"size:7" json:"color"`

	Invoices []CardInvoice `gorm:"foreignKey:CreditCardID" json:"invoices,omitempty"`
}

// CardInvoice is the monthly statement of a card.
type CardInvoice struct {
	Base
	CreditCardID string `gorm:"type:uuid;not null;uniqueIndex:idx_card_invoices_period" json:"credit_card_id"`
	Month        int    `gorm:"not null;uniqueIndex:idx_card_invoices_period" json:"month"`
	Year         int    `gorm:"not null;uniqueIndex:idx_card_invoices_period" json:"year"`
	TotalCents   int64  `gorm:"type:bigint;not null;default:0" json:"total_cents"`
	Paid         bool   `gorm:"not null;default:false" json:"paid"`
}
