package builder

import (
	"testing"
)

func TestSQLBuilder(t *testing.T) {
	t.Run("Select", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id", "name").From("employees").Where("id = ?", 1).Build()
		expected := "SELECT id, name FROM employees WHERE id = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 || args[0] != 1 {
			t.Errorf("expected args [1], got %v", args)
		}
	})

	t.Run("Select with order and limit", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Select("id").From("employees").
			Where("phone = ?", "555").
			Where("id <> ?", int64(3)).
			OrderBy("id ASC").
			Limit(1).
			Build()
		expected := "SELECT id FROM employees WHERE phone = $1 AND id <> $2 ORDER BY id ASC LIMIT 1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != "555" || args[1] != int64(3) {
			t.Errorf("expected args [555 3], got %v", args)
		}
	})

	t.Run("Insert returning", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Insert("employees", "name", "email").Values("Alice", "a@x.com").Returning("id").Build()
		expected := "INSERT INTO employees (name, email) VALUES ($1, $2) RETURNING id"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 2 || args[0] != "Alice" || args[1] != "a@x.com" {
			t.Errorf("expected args [Alice a@x.com], got %v", args)
		}
	})

	t.Run("Update", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Update("employees").Set("name", "Bob").Set("email", "b@x.com").Where("id = ?", 1).Build()
		expected := "UPDATE employees SET name = $1, email = $2 WHERE id = $3"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 3 || args[0] != "Bob" || args[2] != 1 {
			t.Errorf("expected args [Bob b@x.com 1], got %v", args)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		b := NewSQLBuilder()
		query, args := b.Delete("employees").Where("id = ?", 7).Build()
		expected := "DELETE FROM employees WHERE id = $1"
		if query != expected {
			t.Errorf("expected %s, got %s", expected, query)
		}
		if len(args) != 1 || args[0] != 7 {
			t.Errorf("expected args [7], got %v", args)
		}
	})

	t.Run("Build is repeatable", func(t *testing.T) {
		b := NewSQLBuilder().Select("id").From("employees").Where("id = ?", 1)
		q1, a1 := b.Build()
		q2, a2 := b.Build()
		if q1 != q2 || len(a1) != len(a2) {
			t.Errorf("expected identical builds, got %q/%v and %q/%v", q1, a1, q2, a2)
		}
	})
}

func TestSQLBuilder_BuildSafe(t *testing.T) {
	t.Run("mismatched where args", func(t *testing.T) {
		_, _, err := NewSQLBuilder().Select("id").From("employees").Where("id = ? AND phone = ?", 1).BuildSafe()
		if err == nil {
			t.Fatal("expected error for missing argument")
		}
	})

	t.Run("mismatched insert values", func(t *testing.T) {
		_, _, err := NewSQLBuilder().Insert("employees", "name", "email").Values("Alice").BuildSafe()
		if err == nil {
			t.Fatal("expected error for missing value")
		}
	})

	t.Run("valid", func(t *testing.T) {
		query, args, err := NewSQLBuilder().Select("id").From("employees").Where("phone = ?", "1").BuildSafe()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if query != "SELECT id FROM employees WHERE phone = $1" || len(args) != 1 {
			t.Errorf("unexpected build %q %v", query, args)
		}
	})
}
