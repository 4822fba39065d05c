package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/repository/builder"
)

const sequenceTable = "quote_sequences"

type sequenceRepository struct {
	db *sql.DB
}

// NewSequenceRepository creates a PostgreSQL backed SequenceRepository.
func NewSequenceRepository(db *sql.DB) domain.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments the counter of year inside one transaction. The row is
// created when missing and then locked with FOR UPDATE, so concurrent callers
// for the same year are serialized.
func (r *sequenceRepository) Next(ctx context.Context, year int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrSequenceUnavailable, err)
	}
	defer tx.Rollback()

	query, args := builder.NewSQLBuilder().Insert(sequenceTable, "year", "last_value").
		Values(year, 0).
		Suffix("ON CONFLICT (year) DO NOTHING").
		Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("%w: failed to create sequence row: %w", domain.ErrSequenceUnavailable, err)
	}

	query, args = builder.NewSQLBuilder().Select("last_value").
		From(sequenceTable).
		Where("year = ?", year).
		Suffix("FOR UPDATE").
		Build()
	var last int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return 0, fmt.Errorf("%w: failed to lock sequence row: %w", domain.ErrSequenceUnavailable, err)
	}

	next := last + 1
	query, args = builder.NewSQLBuilder().Update(sequenceTable).
		Set("last_value", next).
		Where("year = ?", year).
		Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("%w: failed to update sequence: %w", domain.ErrSequenceUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit sequence: %w", domain.ErrSequenceUnavailable, err)
	}
	return next, nil
}
