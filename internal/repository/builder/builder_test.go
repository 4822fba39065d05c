package builder

import (
	"testing"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("last_value").From("quote_sequences").Where("year = ?", 2026).Build()
		expected := "SELECT last_value FROM quote_sequences WHERE year = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 || args[0] != 2026 {
			t.Errorf("expected args [2026], got %v", args)
		}
	})

	t.Run("Insert with suffix", func(t *testing.T) {
		query, args := NewSQLBuilder().Insert("quote_sequences", "year", "last_value").
			Values(2026, 0).
			Suffix("ON CONFLICT (year) DO NOTHING").
			Build()
		expected := "INSERT INTO quote_sequences (year, last_value) VALUES ($1, $2) ON CONFLICT (year) DO NOTHING"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != 2026 || args[1] != 0 {
			t.Errorf("expected args [2026 0], got %v", args)
		}
	})

	t.Run("Update", func(t *testing.T) {
		query, args := NewSQLBuilder().Update("quote_sequences").Set("last_value", 13).Where("year = ?", 2026).Build()
		expected := "UPDATE quote_sequences SET last_value = $1 WHERE year = $2"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != 13 || args[1] != 2026 {
			t.Errorf("expected args [13 2026], got %v", args)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		query, args := NewSQLBuilder().Delete("condiciones_especificas").Where("activo = ?", false).Build()
		expected := "DELETE FROM condiciones_especificas WHERE activo = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 {
			t.Errorf("expected 1 arg, got %v", args)
		}
	})

	t.Run("Select for update", func(t *testing.T) {
		query, _ := NewSQLBuilder().Select("last_value").From("quote_sequences").
			Where("year = ?", 2026).
			Suffix("FOR UPDATE").
			Build()
		expected := "SELECT last_value FROM quote_sequences WHERE year = $1 FOR UPDATE"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
	})
}

func TestSQLBuilderWhereIn(t *testing.T) {
	t.Run("values", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("texto").
			From("condiciones_especificas").
			WhereIn("id", "a", "b", "c").
			Where("activo = ?", true).
			OrderBy("orden ASC").
			Build()
		expected := "SELECT texto FROM condiciones_especificas WHERE id IN ($1, $2, $3) AND activo = $4 ORDER BY orden ASC"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 4 || args[0] != "a" || args[3] != true {
			t.Errorf("unexpected args %v", args)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		query, args := NewSQLBuilder().Select("texto").From("condiciones_especificas").WhereIn("id").Limit(5).Build()
		expected := "SELECT texto FROM condiciones_especificas WHERE 1 = 0 LIMIT 5"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 0 {
			t.Errorf("expected no args, got %v", args)
		}
	})
}

func TestSQLBuilderBuildSafe(t *testing.T) {
	if _, _, err := NewSQLBuilder().Select("*").From("t").Where("a = ? AND b = ?", 1, 2).BuildSafe(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, _, err := NewSQLBuilder().Select("*").From("t").Where("a = ? AND b = ?", 1).BuildSafe(); err == nil {
		t.Error("expected error for missing argument")
	}
	if _, _, err := NewSQLBuilder().Select("*").From("t").Where("a = 1", 1).BuildSafe(); err == nil {
		t.Error("expected error for extra argument")
	}
}
