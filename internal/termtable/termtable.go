// Package termtable holds the term → term_id assignment that is shared
// across every block written during indexing.
//
// spec.md's Design Notes call this out explicitly: "Term-to-id table
// across blocks is process-wide mutable state during indexing. Pass it by
// reference through the pipeline; do not make it implicit." This package is
// that explicit, reference-passed table — created once per indexer run and
// handed to the block writers and dictionary builder, never a
// package-level global.
package termtable

// Table assigns dense, nonnegative term_ids in first-seen order across an
// entire indexing run. Not safe for concurrent use: spec.md §5 specifies a
// single-threaded indexing pipeline, so no internal locking is needed.
type Table struct {
	ids   map[string]int
	terms []string
}

// New returns an empty table.
func New() *Table {
	return &Table{ids: make(map[string]int)}
}

// IDFor returns the term_id for term, assigning the next unused id the
// first time a term is seen. IDFor is the only way ids are created, so
// ids are guaranteed dense over [0, Len()).
func (t *Table) IDFor(term string) int {
	if id, ok := t.ids[term]; ok {
		return id
	}
	id := len(t.terms)
	t.ids[term] = id
	t.terms = append(t.terms, term)
	return id
}

// Lookup returns the term_id already assigned to term, if any.
func (t *Table) Lookup(term string) (int, bool) {
	id, ok := t.ids[term]
	return id, ok
}

// Term returns the term text for a previously assigned id.
func (t *Table) Term(id int) (string, bool) {
	if id < 0 || id >= len(t.terms) {
		return "", false
	}
	return t.terms[id], true
}

// Len returns the number of distinct terms assigned so far. Per spec.md
// invariant 4, this is also the term_id the synthetic "_universal" term
// receives once indexing completes.
func (t *Table) Len() int {
	return len(t.terms)
}
