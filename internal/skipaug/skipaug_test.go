package skipaug

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/lucerna-labs/blaze/internal/posting"
)

func TestAddSkipPointersNineElements(t *testing.T) {
	// A list of 9 doc_ids has k=3; skips at indices 0 and 3 (index 6 has
	// no index 9 to land on), and the offset at index 0 equals
	// 2 + len(str(p1)) + len(str(p2)).
	postings := make([]posting.Posting, 9)
	for i := range postings {
		postings[i] = posting.Posting{DocID: 10 + i}
	}
	addSkipPointers(postings)

	for _, i := range []int{0, 3} {
		if !postings[i].HasSkip {
			t.Errorf("index %d should carry a skip pointer", i)
		}
	}
	for _, i := range []int{1, 2, 4, 5, 6, 7, 8} {
		if postings[i].HasSkip {
			t.Errorf("index %d should not carry a skip pointer", i)
		}
	}

	want := 2 + len(strconv.Itoa(postings[1].DocID)) + len(strconv.Itoa(postings[2].DocID))
	if postings[0].Skip != want {
		t.Errorf("skip at index 0 = %d, want %d", postings[0].Skip, want)
	}
}

func TestAddSkipPointersSmallListUnaugmented(t *testing.T) {
	postings := []posting.Posting{{DocID: 1}, {DocID: 2}, {DocID: 3}}
	addSkipPointers(postings) // k = floor(sqrt(3)) = 1, no skips
	for i, p := range postings {
		if p.HasSkip {
			t.Errorf("index %d should not carry a skip with k<=1", i)
		}
	}
}

func TestAugmentAppendsUniversalLine(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "postings")
	if err := os.WriteFile(in, []byte("0 1 3\n1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "postings.aug")

	if err := Augment(in, out, false, []int{1, 2, 3}); err != nil {
		t.Fatalf("Augment: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (2 real terms + universal)", len(lines))
	}

	universal, err := posting.ParseLine(lines[2], UniversalRanked)
	if err != nil {
		t.Fatalf("ParseLine(universal): %v", err)
	}
	if universal.TermID != 2 {
		t.Errorf("universal term_id = %d, want 2 (the real term count)", universal.TermID)
	}
	want := []int{1, 2, 3}
	if len(universal.Postings) != len(want) {
		t.Fatalf("universal postings = %v, want doc_ids %v", universal.Postings, want)
	}
	for i, p := range universal.Postings {
		if p.DocID != want[i] {
			t.Errorf("universal posting[%d] = %d, want %d", i, p.DocID, want[i])
		}
	}
}
