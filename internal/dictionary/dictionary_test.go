package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucerna-labs/blaze/internal/termtable"
)

func TestBuildBooleanMetricIsDocFreq(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postings")
	// term 0 ("alpha"): 2 postings. term 1 ("beta"): 1 posting.
	// universal line: term_id 2, every doc.
	content := "0 1 2\n1 2\n2 1 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table := termtable.New()
	table.IDFor("alpha")
	table.IDFor("beta")

	d, err := Build(path, table, false, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	alpha, ok := d.Lookup("alpha")
	if !ok {
		t.Fatal("alpha missing from dictionary")
	}
	if alpha.TermID != 0 || alpha.Metric != 2 {
		t.Errorf("alpha = %+v, want term_id 0 doc_freq 2", alpha)
	}

	beta, ok := d.Lookup("beta")
	if !ok {
		t.Fatal("beta missing from dictionary")
	}
	if beta.TermID != 1 || beta.Metric != 1 {
		t.Errorf("beta = %+v, want term_id 1 doc_freq 1", beta)
	}

	universal, ok := d.Universal()
	if !ok {
		t.Fatal("_universal missing from dictionary")
	}
	if universal.TermID != 2 {
		t.Errorf("_universal term_id = %d, want 2", universal.TermID)
	}
}

func TestBuildRankedMetricIsIDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postings")
	content := "0 1,1 2,1\n1 2,1\n2 1 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table := termtable.New()
	table.IDFor("alpha")
	table.IDFor("beta")

	d, err := Build(path, table, true, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	alpha, _ := d.Lookup("alpha")
	if alpha.Metric != 0 { // log(2/2) == 0
		t.Errorf("alpha idf = %v, want 0", alpha.Metric)
	}
	beta, _ := d.Lookup("beta")
	if beta.Metric <= 0 { // log(2/1) > 0
		t.Errorf("beta idf = %v, want > 0", beta.Metric)
	}
}

func TestByteOffsetPointsPastTermID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postings")
	content := "0 1 2\n1 3\n2 1 2 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table := termtable.New()
	table.IDFor("alpha")
	table.IDFor("beta")

	d, err := Build(path, table, false, 3)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	alpha, _ := d.Lookup("alpha")
	if alpha.ByteOffset != 2 { // "0 " is 2 bytes
		t.Errorf("alpha byte_offset = %d, want 2", alpha.ByteOffset)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw[alpha.ByteOffset : alpha.ByteOffset+3]); got != "1 2" {
		t.Errorf("byte_offset does not point at alpha's postings: got %q", got)
	}

	beta, _ := d.Lookup("beta")
	if got := string(raw[beta.ByteOffset : beta.ByteOffset+1]); got != "3" {
		t.Errorf("byte_offset does not point at beta's postings: got %q", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postings")
	content := "0 1,1 2,1\n1 2,1\n2 1 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table := termtable.New()
	table.IDFor("alpha")
	table.IDFor("beta")

	d, err := Build(path, table, true, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := filepath.Join(dir, "dict.json")
	if err := d.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(out, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for term, want := range d.Entries {
		got, ok := loaded.Lookup(term)
		if !ok {
			t.Fatalf("term %q missing after round trip", term)
		}
		if got.TermID != want.TermID || got.ByteOffset != want.ByteOffset {
			t.Errorf("term %q = %+v, want %+v", term, got, want)
		}
	}
}

func TestSaveBooleanMetricHasNoFraction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postings")
	if err := os.WriteFile(path, []byte("0 1 2\n1 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	table := termtable.New()
	table.IDFor("alpha")

	d, err := Build(path, table, false, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out := filepath.Join(dir, "dict.json")
	if err := d.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw); containsFraction(got) {
		t.Errorf("boolean dictionary contains a fractional metric: %s", got)
	}
}

func containsFraction(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] >= '0' && s[i+1] <= '9' {
			return true
		}
	}
	return false
}
