package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(crerr.Wrap(sql.ErrNoRows, "get kv entry")) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("connection refused")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestIsUndefinedTable(t *testing.T) {
	t.Run("matches 42P01", func(t *testing.T) {
		err := crerr.Wrap(&pq.Error{Code: "42P01", Message: `relation "kv_entries" does not exist`}, "select")
		if !IsUndefinedTable(err) {
			t.Fatalf("expected true for undefined table error")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if IsUndefinedTable(&pq.Error{Code: "23505"}) {
			t.Fatalf("expected false for unique violation")
		}
	})
}
