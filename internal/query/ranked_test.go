package query

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucerna-labs/blaze/internal/dictionary"
)

func buildRankedFixture(t *testing.T) (*dictionary.Dictionary, *os.File) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "postings")
	// doc1: cat=1.0. doc2: dog=1.0. doc3: cat=0.6, dog=0.8 (already
	// cosine-normalized lnc document vectors).
	content := "0 1,1 3,0.6\n1 2,1 3,0.8\n2 1 2 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	idf := math.Log(3.0 / 2.0) // N=3, doc_freq=2 for both terms
	dict := &dictionary.Dictionary{
		Ranked: true,
		Entries: map[string]dictionary.Entry{
			"cat":        {TermID: 0, Metric: idf, ByteOffset: 2},
			"dog":        {TermID: 1, Metric: idf, ByteOffset: 14},
			"_universal": {TermID: 2, Metric: 3, ByteOffset: 26},
		},
	}
	return dict, f
}

func TestRankedEvalOrdersByScoreThenDocID(t *testing.T) {
	dict, f := buildRankedFixture(t)
	e := NewRankedEvaluator(dict, f, 10)

	got, err := e.Eval("cat dog")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3: %v", len(got), got)
	}

	wantOrder := []int{3, 1, 2}
	for i, d := range got {
		if d.DocID != wantOrder[i] {
			t.Errorf("result[%d].DocID = %d, want %d (full: %v)", i, d.DocID, wantOrder[i], got)
		}
	}
	if got[1].Score != got[2].Score {
		t.Errorf("doc1 and doc2 should tie: %v vs %v", got[1].Score, got[2].Score)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("doc3 should outscore the tied pair: %v vs %v", got[0].Score, got[1].Score)
	}
}

func TestRankedEvalRespectsTopK(t *testing.T) {
	dict, f := buildRankedFixture(t)
	e := NewRankedEvaluator(dict, f, 1)

	got, err := e.Eval("cat dog")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].DocID != 3 {
		t.Errorf("top-1 result = doc %d, want doc 3", got[0].DocID)
	}
}

func TestRankedEvalDropsUnknownTerms(t *testing.T) {
	dict, f := buildRankedFixture(t)
	e := NewRankedEvaluator(dict, f, 10)

	got, err := e.Eval("cat spaceship")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	for _, d := range got {
		if d.DocID == 2 && d.Score > 0 {
			t.Errorf("doc2 has no 'cat', should not score from the dropped term: %v", got)
		}
	}
}

func TestRankedEvalEmptyQuery(t *testing.T) {
	dict, f := buildRankedFixture(t)
	e := NewRankedEvaluator(dict, f, 10)

	got, err := e.Eval("   ")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty query returned %v, want no results", got)
	}
}
