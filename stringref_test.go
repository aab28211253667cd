package edba

import "testing"

// StringRef is an alias for backend.StringRef (see stringref.go); the
// full comparator surface is tested in backend/stringref_test.go. This
// only confirms the alias round-trips and that ConnInfo/SelectVariant
// actually exercise it on a case-folded key/engine name.
func TestStringRefAliasUsedByConnInfoAndDialect(t *testing.T) {
	ci, err := ParseConnInfo("sqlite3:DB=test.db")
	if err != nil {
		t.Fatalf("ParseConnInfo: %v", err)
	}
	if !ci.Has("db") {
		t.Fatalf("Has(db) = false, want true (case-insensitive key lookup via StringRef)")
	}

	sql, err := SelectVariant("~MySQL~select 1~~select 2~", "mysql", 8, 0)
	if err != nil {
		t.Fatalf("SelectVariant: %v", err)
	}
	if sql != "select 1" {
		t.Fatalf("SelectVariant() = %q, want %q (case-insensitive engine match via StringRef)", sql, "select 1")
	}

	var _ StringRef = StringRef("x")
}
