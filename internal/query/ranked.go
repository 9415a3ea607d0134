package query

import (
	"container/heap"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/lucerna-labs/blaze/internal/analyzer"
	"github.com/lucerna-labs/blaze/internal/cursor"
	"github.com/lucerna-labs/blaze/internal/dictionary"
)

// DefaultTopK is the number of results a ranked query returns.
const DefaultTopK = 10

// RankedEvaluator scores documents with the ltc·lnc vector-space model:
// lnc document weights (already baked into the postings file by
// internal/analyzer.Vectorize) and ltc query weights computed here, both
// cosine-normalized, scored by dot product.
type RankedEvaluator struct {
	dict     *dictionary.Dictionary
	postings *os.File
	topK     int
}

// NewRankedEvaluator builds an evaluator over dict and an already-open
// postings file built in ranked mode. topK <= 0 uses DefaultTopK.
func NewRankedEvaluator(dict *dictionary.Dictionary, postings *os.File, topK int) *RankedEvaluator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RankedEvaluator{dict: dict, postings: postings, topK: topK}
}

// ScoredDoc pairs a doc_id with its cosine score.
type ScoredDoc struct {
	DocID int
	Score float64
}

// Eval tokenizes and stems query exactly as indexing does, builds its
// ltc query vector, and returns up to topK matching documents ordered by
// descending score, ties broken by ascending doc_id.
func (e *RankedEvaluator) Eval(query string) ([]ScoredDoc, error) {
	terms := analyzer.Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}

	type weighted struct {
		entry  dictionary.Entry
		weight float64
	}
	queryWeights := make(map[string]weighted, len(tf))
	var sumSquares float64
	for term, count := range tf {
		entry, ok := e.dict.Lookup(term)
		if !ok {
			continue // dictionary-absent query terms are dropped, not errors
		}
		l := 1 + math.Log10(float64(count))
		w := l * entry.Metric // entry.Metric is idf for a ranked dictionary
		queryWeights[term] = weighted{entry: entry, weight: w}
		sumSquares += w * w
	}
	if len(queryWeights) == 0 {
		return nil, nil
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return nil, nil
	}

	scores := make(map[int]float64)
	for term, wq := range queryWeights {
		normalizedWQ := wq.weight / norm
		fc, err := cursor.NewFileCursor(e.postings, wq.entry.ByteOffset, true)
		if err != nil {
			return nil, fmt.Errorf("query: reading postings for %q: %w", term, err)
		}
		for !fc.AtEnd() {
			p := fc.Posting()
			scores[p.DocID] += normalizedWQ * p.Weight
			if err := fc.Advance(); err != nil {
				return nil, err
			}
		}
	}

	return topK(scores, e.topK), nil
}

// topK selects the topK highest-scoring documents via a fixed-size
// min-heap, the same bounded-selection pattern as a running top-N merge:
// push every candidate, and whenever the heap exceeds capacity, evict
// its current minimum. Ties are broken by doc_id: of two equal scores,
// the smaller doc_id is the one kept.
func topK(scores map[int]float64, k int) []ScoredDoc {
	h := &scoreHeap{}
	heap.Init(h)
	for docID, score := range scores {
		heap.Push(h, ScoredDoc{DocID: docID, Score: score})
		if h.Len() > k {
			heap.Pop(h)
		}
	}

	out := make([]ScoredDoc, h.Len())
	copy(out, *h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

// scoreHeap is a min-heap of ScoredDoc ordered so that the weakest
// candidate — lowest score, or (on a tie) the larger doc_id — is always
// at the root and is what Pop discards first.
type scoreHeap []ScoredDoc

func (h scoreHeap) Len() int { return len(h) }

func (h scoreHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}

func (h scoreHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap) Push(x any) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
