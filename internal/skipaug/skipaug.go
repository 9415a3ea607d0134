// Package skipaug implements spec.md §4.4: a single pass over the final
// merged postings file that rewrites every line with embedded skip
// pointers, then appends the synthetic "_universal" posting list used to
// implement NOT without materializing a complement on the fly.
package skipaug

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/lucerna-labs/blaze/internal/posting"
)

// UniversalRanked is always false: the "_universal" posting list exists
// only to answer membership questions for the Boolean NOT operator (see
// internal/query/boolean.go); it is never scored, so spec.md's silence
// on whether it carries a weight field is resolved here in favor of the
// lighter doc_id[,skip]-only shape, independent of whether the real
// terms in this build carry weights. internal/query decodes the
// "_universal" line with this constant rather than the build's overall
// ranked flag.
const UniversalRanked = false

// Augment reads the final merged postings file at inPath, adds skip
// pointers to every line, appends the "_universal" line, and writes the
// result to outPath. universal must already be the ascending, duplicate
// -free list of every doc_id in the collection.
func Augment(inPath, outPath string, ranked bool, universal []int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("skipaug: open %s: %w", inPath, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("skipaug: create %s: %w", outPath, err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	// Some collections produce long posting lines (a common term can
	// touch every document); grow past bufio.Scanner's 64KiB default to
	// avoid "token too long" on those.
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	termCount := 0
	for scanner.Scan() {
		line, err := posting.ParseLine(scanner.Text(), ranked)
		if err != nil {
			return fmt.Errorf("skipaug: %s: %w", inPath, err)
		}
		addSkipPointers(line.Postings)
		if _, err := bw.WriteString(line.Encode()); err != nil {
			return fmt.Errorf("skipaug: write %s: %w", outPath, err)
		}
		termCount++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("skipaug: scan %s: %w", inPath, err)
	}

	universalPostings := make([]posting.Posting, len(universal))
	for i, docID := range universal {
		universalPostings[i] = posting.Posting{DocID: docID}
	}
	addSkipPointers(universalPostings)

	universalLine := posting.Line{TermID: termCount, Postings: universalPostings}
	if _, err := bw.WriteString(universalLine.Encode()); err != nil {
		return fmt.Errorf("skipaug: write %s: %w", outPath, err)
	}
	return bw.Flush()
}

// addSkipPointers implements spec.md §4.4's skip placement and offset
// formula in place:
//
//	k = floor(sqrt(n))
//	skip at index i iff k > 1 and i mod k == 0 and i+k < n
//	skip value = (k-1) + sum(BodyWidth(postings[i+1 .. i+k-1]))
//
// The (k-1) term accounts for the whitespace separator before each of
// the k-1 skipped posting tokens; BodyWidth accounts for the tokens
// themselves, excluding any skip suffix they might carry (a skip offset
// is defined purely in terms of the un-augmented token width, spec.md
// §4.4).
func addSkipPointers(postings []posting.Posting) {
	n := len(postings)
	k := int(math.Sqrt(float64(n)))
	if k <= 1 {
		return
	}
	for i := 0; i+k < n; i += k {
		width := k - 1
		for j := i + 1; j < i+k; j++ {
			width += postings[j].BodyWidth()
		}
		postings[i].Skip = width
		postings[i].HasSkip = true
	}
}
