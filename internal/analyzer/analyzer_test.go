package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"The Quick-Brown Fox!", []string{"The", "Quick", "Brown", "Fox"}},
		{"price: $9.99", []string{"price", "9", "99"}},
		{"", nil},
		{"   ", nil},
	}
	for _, c := range cases {
		got := Tokenize(c.in)
		if len(got) != len(c.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestStemLowercases(t *testing.T) {
	got := Stem("RUNNING")
	if got != "run" {
		t.Errorf("Stem(RUNNING) = %q, want %q", got, "run")
	}
}

func TestTermsPipeline(t *testing.T) {
	got := Terms("The cats are running")
	want := []string{"the", "cat", "are", "run"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
}

func TestTermsKeepsUnicodeLetters(t *testing.T) {
	got := Terms("café")
	if len(got) != 1 {
		t.Fatalf("Terms(café) = %v, want one token", got)
	}
}

func TestTermsWithStopwords(t *testing.T) {
	got := TermsWithOptions("The cats are running", WithStopwords())
	want := []string{"cat", "run"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TermsWithOptions(stopwords) = %v, want %v", got, want)
	}
}

func TestTermsPreservesDuplicates(t *testing.T) {
	got := Terms("cat cat dog")
	if len(got) != 3 {
		t.Fatalf("Terms() dropped duplicates: %v", got)
	}
}
