// Package merge implements spec.md §4.3's external merger: pairwise
// 2-way merge of block files until a single file remains.
package merge

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lucerna-labs/blaze/internal/blockwriter"
	"github.com/lucerna-labs/blaze/internal/posting"
)

// AllocID returns the next unused block id. Callers typically back this
// with a simple counter seeded past the last block the indexer wrote,
// since merged blocks share the same block### id space (spec.md §4.3:
// "Each new merged block gets the next unused block id, monotonically
// increasing across rounds").
type AllocID func() int

// All repeatedly 2-way merges blockPaths, round by round, until one file
// remains, and returns its path. Every intermediate input file — both
// the originals and the merged outputs of earlier rounds — is deleted as
// it is consumed, per spec.md §4.3 ("Delete both input files at end of
// merge").
func All(dir string, blockPaths []string, ranked bool, alloc AllocID) (string, error) {
	if len(blockPaths) == 0 {
		return "", fmt.Errorf("merge: no block files to merge")
	}

	current := append([]string(nil), blockPaths...)
	for len(current) > 1 {
		sortByBlockID(current)

		next := make([]string, 0, (len(current)+1)/2)
		i := 0
		for ; i+1 < len(current); i += 2 {
			a, b := current[i], current[i+1]
			id := alloc()
			out := filepath.Join(dir, blockwriter.BlockName(id))
			if err := mergeTwo(a, b, out, ranked); err != nil {
				return "", err
			}
			if err := os.Remove(a); err != nil {
				return "", fmt.Errorf("merge: remove %s: %w", a, err)
			}
			if err := os.Remove(b); err != nil {
				return "", fmt.Errorf("merge: remove %s: %w", b, err)
			}
			next = append(next, out)
		}
		if i < len(current) {
			// Trailing unpaired file: rename to a fresh block id rather
			// than carrying its old id forward, so the id sequence used
			// by this round is contiguous (spec.md §4.3).
			last := current[i]
			id := alloc()
			renamed := filepath.Join(dir, blockwriter.BlockName(id))
			if err := os.Rename(last, renamed); err != nil {
				return "", fmt.Errorf("merge: rename %s: %w", last, err)
			}
			next = append(next, renamed)
		}
		current = next
	}
	return current[0], nil
}

// mergeTwo performs one 2-way merge of sorted block files a and b into
// out, following spec.md §4.3's line-at-a-time comparison.
func mergeTwo(pathA, pathB, outPath string, ranked bool) error {
	fa, err := os.Open(pathA)
	if err != nil {
		return fmt.Errorf("merge: open %s: %w", pathA, err)
	}
	defer fa.Close()
	fb, err := os.Open(pathB)
	if err != nil {
		return fmt.Errorf("merge: open %s: %w", pathB, err)
	}
	defer fb.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("merge: create %s: %w", outPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	sa := bufio.NewScanner(fa)
	sb := bufio.NewScanner(fb)
	okA := sa.Scan()
	okB := sb.Scan()

	for okA && okB {
		lineA, err := posting.ParseLine(sa.Text(), ranked)
		if err != nil {
			return fmt.Errorf("merge: %s: %w", pathA, err)
		}
		lineB, err := posting.ParseLine(sb.Text(), ranked)
		if err != nil {
			return fmt.Errorf("merge: %s: %w", pathB, err)
		}

		switch {
		case lineA.TermID < lineB.TermID:
			if _, err := bw.WriteString(lineA.Encode()); err != nil {
				return err
			}
			okA = sa.Scan()
		case lineB.TermID < lineA.TermID:
			if _, err := bw.WriteString(lineB.Encode()); err != nil {
				return err
			}
			okB = sb.Scan()
		default:
			merged, err := concatenateEqualTerms(lineA, lineB)
			if err != nil {
				return err
			}
			if _, err := bw.WriteString(merged.Encode()); err != nil {
				return err
			}
			okA = sa.Scan()
			okB = sb.Scan()
		}
	}
	for okA {
		lineA, err := posting.ParseLine(sa.Text(), ranked)
		if err != nil {
			return fmt.Errorf("merge: %s: %w", pathA, err)
		}
		if _, err := bw.WriteString(lineA.Encode()); err != nil {
			return err
		}
		okA = sa.Scan()
	}
	for okB {
		lineB, err := posting.ParseLine(sb.Text(), ranked)
		if err != nil {
			return fmt.Errorf("merge: %s: %w", pathB, err)
		}
		if _, err := bw.WriteString(lineB.Encode()); err != nil {
			return err
		}
		okB = sb.Scan()
	}
	if err := sa.Err(); err != nil {
		return fmt.Errorf("merge: scan %s: %w", pathA, err)
	}
	if err := sb.Err(); err != nil {
		return fmt.Errorf("merge: scan %s: %w", pathB, err)
	}
	return bw.Flush()
}

// concatenateEqualTerms merges two lines that share a term_id. Because
// the indexer partitions documents into blocks in ascending doc_id
// order, the two posting lists are guaranteed to occupy disjoint,
// ordered doc_id ranges (spec.md §4.3's "Ordering property"), so the
// merge is a concatenation of whichever side holds the smaller doc_ids
// first — no element-wise interleaving required. The ranked build
// relies on this directly; it is harmless for the Boolean build too.
func concatenateEqualTerms(a, b posting.Line) (posting.Line, error) {
	if len(a.Postings) == 0 || len(b.Postings) == 0 {
		return posting.Line{}, fmt.Errorf("merge: term_id %d has an empty posting list", a.TermID)
	}

	first, second := a, b
	if b.Postings[0].DocID < a.Postings[0].DocID {
		first, second = b, a
	}

	merged := make([]posting.Posting, 0, len(first.Postings)+len(second.Postings))
	merged = append(merged, first.Postings...)
	merged = append(merged, second.Postings...)

	for i := 1; i < len(merged); i++ {
		if merged[i].DocID <= merged[i-1].DocID {
			// Two blocks produced overlapping doc_id ranges for the same
			// term: the single-threaded partitioning invariant the whole
			// merge algorithm depends on has been violated. This is a
			// logic bug, not a recoverable condition.
			panic(fmt.Sprintf("merge: non-monotone doc_id after merge for term_id %d: %d after %d",
				a.TermID, merged[i].DocID, merged[i-1].DocID))
		}
	}

	return posting.Line{TermID: a.TermID, Postings: merged}, nil
}

func sortByBlockID(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return blockID(paths[i]) < blockID(paths[j])
	})
}

func blockID(path string) int {
	base := filepath.Base(path)
	n, err := strconv.Atoi(strings.TrimPrefix(base, "block"))
	if err != nil {
		return -1
	}
	return n
}
