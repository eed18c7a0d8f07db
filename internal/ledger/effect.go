package ledger

import (
	"context"
	"fmt"
	"sort"

	"carteira/internal/models"
)

// Effect maps an account id to the signed balance delta, in minor units, a
// transaction implies.
type Effect map[string]int64

// ComputeEffect returns the deltas for a transaction with the given shape.
// Only PAID transactions move money. A TRANSFER without a destination has no
// effect at all rather than a one-legged one.
func ComputeEffect(kind models.TransactionKind, status models.TransactionStatus, amount int64, source string, destination *string) Effect {
	effect := Effect{}
	if status != models.TransactionStatusPaid {
		return effect
	}

	switch kind {
	case models.TransactionKindIncome:
		effect.add(source, amount)
	case models.TransactionKindExpense:
		effect.add(source, -amount)
	case models.TransactionKindTransfer:
		if destination == nil || *destination == "" {
			return effect
		}
		effect.add(source, -amount)
		effect.add(*destination, amount)
	}
	return effect
}

// EffectOf computes the effect of a stored transaction.
func EffectOf(t *models.Transaction) Effect {
	return ComputeEffect(t.Kind, t.Status, t.Amount, t.SourceAccountID, t.DestinationAccountID)
}

// Reverse returns the pointwise negation of e.
func (e Effect) Reverse() Effect {
	out := make(Effect, len(e))
	for id, delta := range e {
		out[id] = -delta
	}
	return out
}

// Merge adds other into e.
func (e Effect) Merge(other Effect) {
	for id, delta := range other {
		e.add(id, delta)
	}
}

// Net is the sum of all deltas. It is zero for every transfer.
func (e Effect) Net() int64 {
	var net int64
	for _, delta := range e {
		net += delta
	}
	return net
}

// Accounts returns the touched account ids in ascending order.
func (e Effect) Accounts() []string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsEmpty reports whether applying e would change nothing.
func (e Effect) IsEmpty() bool {
	for _, delta := range e {
		if delta != 0 {
			return false
		}
	}
	return true
}

func (e Effect) add(id string, delta int64) {
	e[id] += delta
}

// apply issues one relative update per touched account, in ascending id
// order so concurrent units lock rows in the same sequence.
func (e Effect) apply(ctx context.Context, store Store) error {
	for _, id := range e.Accounts() {
		delta := e[id]
		if delta == 0 {
			continue
		}
		if err := store.AdjustBalance(ctx, id, delta); err != nil {
			return fmt.Errorf("adjust balance of account %s by %d: %w", id, delta, err)
		}
	}
	return nil
}
