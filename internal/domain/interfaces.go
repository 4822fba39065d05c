package domain

import (
	"context"
	"errors"
)

// ErrSequenceUnavailable is returned when the numbering store cannot be reached
// or fails mid-transaction.
var ErrSequenceUnavailable = errors.New("quote sequence unavailable")

// SequenceRepository hands out per-year quote numbers. Two callers asking for
// the same year never get the same value.
type SequenceRepository interface {
	Next(ctx context.Context, year int) (int, error)
}

// ConditionRepository resolves condition texts.
type ConditionRepository interface {
	// TextsByIDs returns the texts of the active conditions among ids, in
	// display order.
	TextsByIDs(ctx context.Context, ids []string) ([]string, error)
	// Upsert inserts or replaces conditions by id.
	Upsert(ctx context.Context, conds []Condition) (int, error)
}
