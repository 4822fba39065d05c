package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/repository/builder"
)

const conditionsTable = "condiciones_especificas"

type conditionRepository struct {
	db *sql.DB
}

// NewConditionRepository creates a PostgreSQL backed ConditionRepository.
func NewConditionRepository(db *sql.DB) domain.ConditionRepository {
	return &conditionRepository{db: db}
}

func (r *conditionRepository) TextsByIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = id
	}

	query, args := builder.NewSQLBuilder().Select("texto").
		From(conditionsTable).
		WhereIn("id", vals...).
		Where("activo = ?", true).
		OrderBy("orden ASC").
		OrderBy("created_at ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conditions: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan condition: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conditions: %w", err)
	}
	return texts, nil
}

func (r *conditionRepository) Upsert(ctx context.Context, conds []domain.Condition) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range conds {
		query, args := builder.NewSQLBuilder().Insert(conditionsTable, "id", "texto", "categoria", "orden", "activo").
			Values(c.ID, c.Text, c.Category, c.Order, c.Active).
			Suffix("ON CONFLICT (id) DO UPDATE SET texto = EXCLUDED.texto, categoria = EXCLUDED.categoria, orden = EXCLUDED.orden, activo = EXCLUDED.activo").
			Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to upsert condition %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit conditions: %w", err)
	}
	return len(conds), nil
}
