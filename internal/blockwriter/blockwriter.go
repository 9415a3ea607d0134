// Package blockwriter implements the BSBI "invert one block" step
// (spec.md §4.2): accumulate (term, doc_id, weight?) tuples for a block
// of documents in memory, then flush them sorted by term_id to a
// numbered block file.
//
// Writing sorted by term_id — not by term text — lets the external
// merger (internal/merge) compare plain integers, and lets later blocks
// reuse term ids the earlier blocks already assigned without rewriting
// anything (spec.md §4.2 "Design rationale").
package blockwriter

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/lucerna-labs/blaze/internal/analyzer"
	"github.com/lucerna-labs/blaze/internal/posting"
	"github.com/lucerna-labs/blaze/internal/termtable"
)

// Writer accumulates postings for a single block. It is not safe for
// concurrent use — spec.md §5 specifies a single-threaded pipeline.
type Writer struct {
	table  *termtable.Table
	ranked bool

	postings map[int][]posting.Posting // term_id -> postings, arrival order
	docIDs   *roaring.Bitmap
}

// New returns an empty block writer. table is the process-wide term-to-id
// table (spec.md's Design Notes insist this is passed explicitly, never a
// package global). ranked selects whether postings carry a weight field.
func New(table *termtable.Table, ranked bool) *Writer {
	return &Writer{
		table:    table,
		ranked:   ranked,
		postings: make(map[int][]posting.Posting),
		docIDs:   roaring.NewBitmap(),
	}
}

// AddDocument folds one document's vector into the block. Documents must
// be added in ascending doc_id order within a block (spec.md §4.3's
// merge correctness depends on this, transitively, via the block's
// postings being doc_id-ascending per term).
func (w *Writer) AddDocument(vec analyzer.DocVector) {
	w.docIDs.Add(uint32(vec.DocID))

	for _, term := range vec.Terms {
		id := w.table.IDFor(term)
		p := posting.Posting{DocID: vec.DocID}
		if w.ranked {
			p.Weight = vec.Weight[term]
			p.HasWeight = true
		}
		w.postings[id] = append(w.postings[id], p)
	}
}

// DocIDs returns the set of doc_ids folded into this block so far. The
// caller (internal/indexer) accumulates these across blocks to build the
// "_universal" posting list — a roaring bitmap is used here because it
// both deduplicates and yields its contents pre-sorted via ToArray,
// avoiding a separate sort pass over what can be a large id set.
func (w *Writer) DocIDs() *roaring.Bitmap {
	return w.docIDs
}

// Empty reports whether the block holds no postings yet. A document with
// no terms adds no postings, so it leaves the block empty.
func (w *Writer) Empty() bool {
	return len(w.postings) == 0
}

// BlockName returns the zero-padded, 3-digit block filename for id,
// e.g. BlockName(7) == "block007" (spec.md §4.2).
func BlockName(id int) string {
	return fmt.Sprintf("block%03d", id)
}

// Flush writes the block sorted ascending by term_id to dir/BlockName(id)
// and returns the path written.
func (w *Writer) Flush(dir string, id int) (string, error) {
	termIDs := make([]int, 0, len(w.postings))
	for tid := range w.postings {
		termIDs = append(termIDs, tid)
	}
	sort.Ints(termIDs)

	path := dir + string(os.PathSeparator) + BlockName(id)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("blockwriter: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, tid := range termIDs {
		line := posting.Line{TermID: tid, Postings: w.postings[tid]}
		if _, err := bw.WriteString(line.Encode()); err != nil {
			return "", fmt.Errorf("blockwriter: write %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("blockwriter: flush %s: %w", path, err)
	}
	return path, nil
}
