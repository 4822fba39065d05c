package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/locvowork/quotes_service/internal/domain"
	"github.com/locvowork/quotes_service/internal/logger"
	"github.com/locvowork/quotes_service/internal/repository"
	"github.com/locvowork/quotes_service/internal/repository/builder"
	"github.com/locvowork/quotes_service/pkg/pgexcel"
	"gopkg.in/yaml.v3"
)

type DataSeeder struct {
	db         *sql.DB
	conditions domain.ConditionRepository
}

func NewDataSeeder(db *sql.DB) *DataSeeder {
	return &DataSeeder{db: db, conditions: repository.NewConditionRepository(db)}
}

type conditionsFile struct {
	Conditions []struct {
		ID       string `yaml:"id"`
		Text     string `yaml:"texto"`
		Category string `yaml:"categoria"`
		Order    int    `yaml:"orden"`
		Active   *bool  `yaml:"activo"`
	} `yaml:"conditions"`
}

// LoadConditions parses a YAML conditions file. Conditions are active unless
// stated otherwise and default to their position as display order.
func LoadConditions(r io.Reader) ([]domain.Condition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading conditions: %w", err)
	}
	var file conditionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing conditions YAML: %w", err)
	}

	seen := make(map[string]bool, len(file.Conditions))
	out := make([]domain.Condition, 0, len(file.Conditions))
	for i, c := range file.Conditions {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, fmt.Errorf("condition %d: id is required", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("condition %d: duplicate id '%s'", i+1, id)
		}
		seen[id] = true
		if strings.TrimSpace(c.Text) == "" {
			return nil, fmt.Errorf("condition '%s': texto is required", id)
		}

		cond := domain.Condition{ID: id, Text: c.Text, Category: c.Category, Order: c.Order, Active: true}
		if cond.Order == 0 {
			cond.Order = i + 1
		}
		if c.Active != nil {
			cond.Active = *c.Active
		}
		out = append(out, cond)
	}
	return out, nil
}

// SeedConditions makes sure the schema exists and upserts conds.
func (ds *DataSeeder) SeedConditions(ctx context.Context, conds []domain.Condition) (int, error) {
	if err := EnsureSchema(ctx, ds.db); err != nil {
		return 0, err
	}
	n, err := ds.conditions.Upsert(ctx, conds)
	if err != nil {
		return 0, err
	}
	logger.InfoLog(ctx, "Seeded %d conditions", n)
	return n, nil
}

// ResetSequence sets the last issued number of year to value.
func (ds *DataSeeder) ResetSequence(ctx context.Context, year, value int) error {
	if value < 0 {
		return fmt.Errorf("sequence value must be >= 0, got %d", value)
	}
	if err := EnsureSchema(ctx, ds.db); err != nil {
		return err
	}

	query, args := builder.NewSQLBuilder().Insert(SequenceTable, "year", "last_value").
		Values(year, value).
		Suffix("ON CONFLICT (year) DO UPDATE SET last_value = EXCLUDED.last_value").
		Build()
	if _, err := ds.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to reset sequence for %d: %w", year, err)
	}
	logger.InfoLog(ctx, "Sequence %d reset to %d", year, value)
	return nil
}

// ExportCatalog writes the conditions and sequence tables to a workbook with
// one sheet each.
func (ds *DataSeeder) ExportCatalog(ctx context.Context, w io.Writer) error {
	query, args := builder.NewSQLBuilder().Select("id", "texto", "categoria", "orden", "activo").
		From(ConditionsTable).
		OrderBy("orden ASC").
		OrderBy("id ASC").
		Build()
	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query conditions: %w", err)
	}
	var conds []domain.Condition
	for rows.Next() {
		var c domain.Condition
		if err := rows.Scan(&c.ID, &c.Text, &c.Category, &c.Order, &c.Active); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan condition: %w", err)
		}
		conds = append(conds, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read conditions: %w", err)
	}

	query, args = builder.NewSQLBuilder().Select("year", "last_value").
		From(SequenceTable).
		OrderBy("year DESC").
		Build()
	rows, err = ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query sequences: %w", err)
	}
	defer rows.Close()
	var seqs []domain.SequenceState
	for rows.Next() {
		var s domain.SequenceState
		if err := rows.Scan(&s.Year, &s.LastValue); err != nil {
			return fmt.Errorf("failed to scan sequence: %w", err)
		}
		seqs = append(seqs, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read sequences: %w", err)
	}

	logger.InfoLog(ctx, "Exporting %d conditions and %d sequences", len(conds), len(seqs))
	return pgexcel.NewDataExporter().
		WithData("Condiciones", conds).
		WithData("Correlativos", seqs).
		Export(ctx, w)
}
