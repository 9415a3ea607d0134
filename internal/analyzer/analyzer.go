// Package analyzer adapts the external tokenizer/stemmer collaborators that
// spec.md §1 treats as out of scope ("tokenize(text) -> sequence<string>",
// "stem(string) -> string") into the two concrete calls the indexing and
// query pipelines need.
//
// ═══════════════════════════════════════════════════════════════════════════════
// PIPELINE (spec.md §4.1)
// ═══════════════════════════════════════════════════════════════════════════════
//  1. Tokenize    → split text into words
//  2. Alnum filter → drop tokens that are not entirely letters/digits
//  3. Stem        → reduce to a root form (Porter-style)
//  4. Lowercase    → normalize case (defensive: the stemmer is assumed to
//     already lowercase; this is a no-op in that case)
//
// Unlike a general-purpose analyzer, this adapter does not remove stopwords
// or filter by minimum length — spec.md's algorithm has no such steps, and
// adding them would silently change which documents a query matches. Both
// capabilities are kept as opt-in (see WithStopwords) so the capability
// isn't thrown away, but the indexer and searcher never enable it.
package analyzer

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Options controls optional analysis stages. The zero value matches spec.md
// §4.1 exactly: no stopword removal, no length filter.
type Options struct {
	Stopwords   bool // remove common English stopwords before stemming
	MinRunes    int  // drop tokens shorter than this (0 disables the filter)
}

// WithStopwords returns Options with stopword removal enabled. Not used by
// the indexer or searcher; kept for callers that want the fuller pipeline.
func WithStopwords() Options {
	return Options{Stopwords: true}
}

// Terms runs the full pipeline over text and returns the sequence of terms
// in document order, duplicates included (callers compute term frequency
// from this sequence; see internal/blockwriter).
func Terms(text string) []string {
	return TermsWithOptions(text, Options{})
}

// TermsWithOptions is Terms with optional stages enabled.
func TermsWithOptions(text string, opts Options) []string {
	tokens := Tokenize(text)
	tokens = alnumFilter(tokens)

	if opts.Stopwords {
		tokens = stopwordFilter(tokens)
	}
	if opts.MinRunes > 0 {
		tokens = lengthFilter(tokens, opts.MinRunes)
	}

	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = Stem(tok)
	}
	return out
}

// Tokenize splits text into word-shaped runs, treating any run of
// whitespace or punctuation as a separator. This stands in for the
// "whitespace/punctuation tokenizer" spec.md assumes as an external
// collaborator.
//
//	"The Quick-Brown Fox!" → ["The", "Quick", "Brown", "Fox"]
//	"price: $9.99"         → ["price", "9", "99"]
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// Stem reduces a single word to its root form and lowercases it. This is
// the "well-known Porter-style stemmer exposed as stem(word) -> word" that
// spec.md §1 assumes; the implementation underneath is the Snowball
// (Porter2) English stemmer.
func Stem(word string) string {
	stemmed := snowballeng.Stem(word, false)
	return strings.ToLower(stemmed)
}

// alnumFilter drops tokens that are not entirely alphanumeric (spec.md
// §4.1 step 2). Tokenize already splits on whitespace, punctuation and
// symbols, so against this package's own tokenizer this only drops tokens
// that contain other non-letter/non-digit runes (combining marks, control
// characters). It also keeps the pipeline correct if Tokenize is swapped
// for a looser external tokenizer that lets punctuation-bearing tokens
// (e.g. "don't") through.
func alnumFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if isAlnum(token) {
			r = append(r, token)
		}
	}
	return r
}

func isAlnum(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// lengthFilter removes tokens shorter than minRunes. Opt-in only; see
// Options.MinRunes.
func lengthFilter(tokens []string, minRunes int) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) >= minRunes {
			r = append(r, token)
		}
	}
	return r
}

// stopwordFilter removes common English stopwords. Opt-in only; see
// Options.Stopwords.
func stopwordFilter(tokens []string) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := englishStopwords[strings.ToLower(token)]; !stop {
			r = append(r, token)
		}
	}
	return r
}

// englishStopwords is the standard SMART stopword list. struct{} values
// keep the set at zero bytes of payload per entry.
var englishStopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "can": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"hers": {}, "herself": {}, "him": {}, "himself": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"itself": {}, "just": {}, "me": {}, "more": {}, "most": {}, "my": {},
	"myself": {}, "no": {}, "nor": {}, "not": {}, "now": {}, "of": {}, "off": {},
	"on": {}, "once": {}, "only": {}, "or": {}, "other": {}, "our": {}, "ours": {},
	"ourselves": {}, "out": {}, "over": {}, "own": {}, "same": {}, "she": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "theirs": {}, "them": {}, "themselves": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "too": {}, "under": {}, "until": {}, "up": {}, "very": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "whom": {}, "why": {}, "will": {}, "with": {},
	"you": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {},
}
