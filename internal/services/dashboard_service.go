package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/money"
)

const maxDashboardMonths = 24

// dashboardService computes summary figures from PAID transactions.
// Transfers move money between the user's own accounts and are left out.
type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db, now: time.Now}
}

type kindTotal struct {
	Kind  models.TransactionKind
	Total int64
}

// GetSummary returns the current net, the current month's figures and
// income/expense totals for the last months months, oldest first.
func (s *dashboardService) GetSummary(ctx context.Context, userID string, months int) (*DashboardSummary, error) {
	if months < 1 {
		months = 6
	}
	if months > maxDashboardMonths {
		months = maxDashboardMonths
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	rangeStart := monthStart.AddDate(0, -(months - 1), 0)
	db := s.db.WithContext(ctx)

	allTime, err := s.totals(db, userID, nil, nil)
	if err != nil {
		return nil, err
	}
	monthEnd := monthStart.AddDate(0, 1, 0)
	thisMonth, err := s.totals(db, userID, &monthStart, &monthEnd)
	if err != nil {
		return nil, err
	}

	var totalBalance int64
	if err := db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&totalBalance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	monthly, err := s.monthly(db, userID, rangeStart, months)
	if err != nil {
		return nil, err
	}

	var expenses decimal.Decimal
	for _, m := range monthly {
		expenses = expenses.Add(money.ToDecimal(m.Expense))
	}
	average := expenses.Div(decimal.NewFromInt(int64(len(monthly)))).Round(2)

	net := allTime[models.TransactionKindIncome] - allTime[models.TransactionKindExpense]
	return &DashboardSummary{
		Net:                   net,
		MonthIncome:           thisMonth[models.TransactionKindIncome],
		MonthExpense:          thisMonth[models.TransactionKindExpense],
		MonthNet:              thisMonth[models.TransactionKindIncome] - thisMonth[models.TransactionKindExpense],
		TotalBalance:          totalBalance,
		AverageMonthlyExpense: average.StringFixed(2),
		NetDisplay:            money.Format(net),
		TotalBalanceDisplay:   money.Format(totalBalance),
		Monthly:               monthly,
	}, nil
}

// totals sums PAID income and expense dated in [from, to). Nil bounds are open.
func (s *dashboardService) totals(db *gorm.DB, userID string, from, to *time.Time) (map[models.TransactionKind]int64, error) {
	q := db.Model(&models.Transaction{}).
		Select("kind, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND status = ? AND kind IN ?", userID, models.TransactionStatusPaid,
			[]models.TransactionKind{models.TransactionKindIncome, models.TransactionKindExpense})
	if from != nil {
		q = q.Where("date >= ?", *from)
	}
	if to != nil {
		q = q.Where("date < ?", *to)
	}

	var rows []kindTotal
	if err := q.Group("kind").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make(map[models.TransactionKind]int64, len(rows))
	for _, r := range rows {
		out[r.Kind] = r.Total
	}
	return out, nil
}

// monthly buckets PAID income and expense by calendar month. Bucketing
// happens here rather than in SQL so the query runs on every driver.
func (s *dashboardService) monthly(db *gorm.DB, userID string, from time.Time, months int) ([]MonthlyTotal, error) {
	var rows []models.Transaction
	err := db.Model(&models.Transaction{}).
		Select("kind, amount, date").
		Where("user_id = ? AND status = ? AND date >= ? AND kind IN ?", userID, models.TransactionStatusPaid, from,
			[]models.TransactionKind{models.TransactionKindIncome, models.TransactionKindExpense}).
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make([]MonthlyTotal, months)
	index := make(map[[2]int]int, months)
	for i := range out {
		m := from.AddDate(0, i, 0)
		out[i] = MonthlyTotal{Year: m.Year(), Month: int(m.Month())}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}

	for _, t := range rows {
		d := t.Date.UTC()
		i, ok := index[[2]int{d.Year(), int(d.Month())}]
		if !ok {
			continue
		}
		switch t.Kind {
		case models.TransactionKindIncome:
			out[i].Income += t.Amount
		case models.TransactionKindExpense:
			out[i].Expense += t.Amount
		}
	}
	for i := range out {
		out[i].Net = money.Format(out[i].Income - out[i].Expense)
	}
	return out, nil
}
