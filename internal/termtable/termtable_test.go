package termtable

import "testing"

func TestIDForFirstSeenOrder(t *testing.T) {
	tbl := New()
	if id := tbl.IDFor("cat"); id != 0 {
		t.Errorf("first term id = %d, want 0", id)
	}
	if id := tbl.IDFor("dog"); id != 1 {
		t.Errorf("second term id = %d, want 1", id)
	}
	if id := tbl.IDFor("cat"); id != 0 {
		t.Errorf("repeat lookup id = %d, want 0", id)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestLookupAndTerm(t *testing.T) {
	tbl := New()
	tbl.IDFor("fish")
	id, ok := tbl.Lookup("fish")
	if !ok || id != 0 {
		t.Fatalf("Lookup(fish) = (%d, %v), want (0, true)", id, ok)
	}
	if _, ok := tbl.Lookup("missing"); ok {
		t.Error("Lookup(missing) found a term that was never assigned")
	}
	term, ok := tbl.Term(0)
	if !ok || term != "fish" {
		t.Fatalf("Term(0) = (%q, %v), want (fish, true)", term, ok)
	}
	if _, ok := tbl.Term(99); ok {
		t.Error("Term(99) should not resolve")
	}
}
