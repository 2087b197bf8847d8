package factory

import (
	"path/filepath"
	"testing"
)

func TestNewFromDSNSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	for _, dsn := range []string{path, "sqlite://" + path} {
		st, err := NewFromDSN(dsn)
		if err != nil {
			t.Fatalf("dsn %q: %v", dsn, err)
		}
		_ = st.Close()
	}
}

func TestNewFromDSNPostgres(t *testing.T) {
	// sql.Open is lazy; constructing a postgres store must not dial.
	st, err := NewFromDSN("postgres://user:pw@127.0.0.1:5432/sidekick")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}
	_ = st.Close()
}

func TestNewFromDSNEmpty(t *testing.T) {
	if _, err := NewFromDSN("   "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
