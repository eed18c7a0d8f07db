package services

import (
	"context"

	"gorm.io/gorm"

	"carteira/internal/events"
	"carteira/internal/ledger"
	"carteira/internal/logger"
	"carteira/internal/store"
)

// ledgerService runs balance audits outside the request path: the ops
// endpoints and ledgerctl.
type ledgerService struct {
	store     *store.GormStore
	publisher events.Publisher
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, publisher events.Publisher) LedgerServicer {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ledgerService{store: store.NewGormStore(db), publisher: publisher}
}

func (s *ledgerService) engine(userID string) *ledger.Engine {
	if userID == "" {
		return ledger.NewEngine(s.store)
	}
	return ledger.NewEngine(s.store.ForUser(userID))
}

// Verify reports drifted accounts without changing anything.
func (s *ledgerService) Verify(ctx context.Context, userID string) ([]ledger.Drift, error) {
	return s.engine(userID).Verify(ctx)
}

// Repair corrects drifted balances and announces the corrections.
func (s *ledgerService) Repair(ctx context.Context, userID string) ([]ledger.Drift, error) {
	drifts, err := s.engine(userID).Repair(ctx)
	if err != nil {
		return nil, err
	}
	if len(drifts) == 0 {
		return drifts, nil
	}

	deltas := make(map[string]int64, len(drifts))
	for _, d := range drifts {
		deltas[d.AccountID] = d.Delta()
	}
	logger.Get().Warnw("repaired drifted balances", "user_id", userID, "accounts", len(drifts))
	if err := s.publisher.Publish(ctx, events.New(events.BalancesRepaired, userID, "", deltas)); err != nil {
		logger.Get().Warnw("failed to publish event", "type", events.BalancesRepaired, "error", err)
	}
	return drifts, nil
}
