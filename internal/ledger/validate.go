package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/uuid"
)

// SelfCounterparty replaces the counterparty of every transfer: money moved
// between one's own accounts has no outside party.
const SelfCounterparty = "Me"

// Proposal is a transaction as submitted by a caller, before validation.
type Proposal struct {
	Kind                 models.TransactionKind
	AmountMinorUnits     int64
	Description          string
	Counterparty         string
	Date                 *time.Time
	Status               models.TransactionStatus
	CategoryIDs          []string
	SourceAccountID      string
	DestinationAccountID *string
}

// Validate checks p against the rules below, in order, and returns the first
// failure. On success it returns a normalized copy: ids in canonical form,
// duplicate category ids collapsed, destination dropped for non-transfers
// and the counterparty of transfers forced to SelfCounterparty. An id that
// is not a UUID names no row and fails the rule that looks it up.
//
//  1. kind is INCOME, EXPENSE or TRANSFER
//  2. amount is positive
//  3. status is PAID, PENDING or CANCELLED
//  4. source account exists and is active
//  5. at least one category, all existing
//  6. transfers: destination present, existing and different from source
func Validate(ctx context.Context, lookup Lookup, p Proposal) (Proposal, error) {
	if !p.Kind.Valid() {
		return p, apperrors.ErrInvalidKind
	}
	if p.AmountMinorUnits <= 0 {
		return p, apperrors.ErrInvalidAmount
	}
	if !p.Status.Valid() {
		return p, apperrors.ErrInvalidStatus
	}

	sourceID, ok := canonicalID(p.SourceAccountID)
	if !ok {
		return p, apperrors.ErrSourceAccountNotFound
	}
	p.SourceAccountID = sourceID
	source, err := lookup.FindAccount(ctx, p.SourceAccountID)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return p, apperrors.ErrSourceAccountNotFound
		}
		return p, err
	}
	if !source.IsActive {
		return p, apperrors.WithMessage(apperrors.ErrSourceAccountNotFound, "Source account is inactive")
	}

	categoryIDs, malformed := dedupe(p.CategoryIDs)
	if len(categoryIDs) == 0 && len(malformed) == 0 {
		return p, apperrors.ErrMissingCategory
	}
	p.CategoryIDs = categoryIDs
	missing := malformed
	if len(categoryIDs) > 0 {
		unknown, err := lookup.MissingCategories(ctx, categoryIDs)
		if err != nil {
			return p, err
		}
		missing = append(missing, unknown...)
	}
	if len(missing) > 0 {
		return p, apperrors.WithMessage(apperrors.ErrCategoryNotFound,
			fmt.Sprintf("Categories not found: %s", strings.Join(missing, ", ")))
	}

	if p.Kind != models.TransactionKindTransfer {
		p.DestinationAccountID = nil
		return p, nil
	}

	if p.DestinationAccountID == nil || strings.TrimSpace(*p.DestinationAccountID) == "" {
		return p, apperrors.ErrMissingDestination
	}
	destinationID, ok := canonicalID(*p.DestinationAccountID)
	if !ok {
		return p, apperrors.ErrDestinationAccountNotFound
	}
	p.DestinationAccountID = &destinationID
	if _, err := lookup.FindAccount(ctx, destinationID); err != nil {
		if errors.Is(err, ErrNoRows) {
			return p, apperrors.ErrDestinationAccountNotFound
		}
		return p, err
	}
	if destinationID == p.SourceAccountID {
		return p, apperrors.ErrSameAccountTransfer
	}

	p.Counterparty = SelfCounterparty
	return p, nil
}

// canonicalID returns the stored spelling of a UUID id.
func canonicalID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	canonical, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return canonical, true
}

// dedupe canonicalizes ids, dropping blanks and repeats. Ids that are not
// UUIDs come back separately.
func dedupe(ids []string) (valid, malformed []string) {
	seen := make(map[string]struct{}, len(ids))
	valid = make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if canonical, ok := canonicalID(id); ok {
			id = canonical
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if uuid.IsValid(id) {
			valid = append(valid, id)
		} else {
			malformed = append(malformed, id)
		}
	}
	return valid, malformed
}
