// Package stats computes the small collection-statistics report the
// indexer prints after a build completes: how many documents and terms
// went in, and how large posting lists are on average. This is not part
// of the on-disk index — it exists purely to give an operator a sanity
// check on what was just built.
package stats

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lucerna-labs/blaze/internal/posting"
	"github.com/lucerna-labs/blaze/internal/skipaug"
)

// Report summarizes one completed index build.
type Report struct {
	TotalDocuments         int
	TotalTerms             int
	TotalPostings          int
	AveragePostingsPerTerm float64
}

// String renders the report as a single human-readable line, suitable
// for a log message.
func (r Report) String() string {
	return fmt.Sprintf("documents=%d terms=%d postings=%d avg_postings_per_term=%.2f",
		r.TotalDocuments, r.TotalTerms, r.TotalPostings, r.AveragePostingsPerTerm)
}

// Compute scans the final postings file once and reports on it.
// totalTerms is the real (non-"_universal") term count, used both to
// compute the average and to recognize the synthetic "_universal" line
// by its term_id.
func Compute(postingsPath string, ranked bool, totalTerms int) (Report, error) {
	f, err := os.Open(postingsPath)
	if err != nil {
		return Report{}, fmt.Errorf("stats: open %s: %w", postingsPath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var totalPostings, totalDocuments int
	for scanner.Scan() {
		raw := scanner.Text()
		head, _, found := strings.Cut(raw, " ")
		if !found {
			return Report{}, fmt.Errorf("stats: malformed line %q", raw)
		}
		termID, err := strconv.Atoi(head)
		if err != nil {
			return Report{}, fmt.Errorf("stats: bad term_id %q: %w", head, err)
		}

		isUniversal := termID == totalTerms
		lineRanked := ranked
		if isUniversal {
			lineRanked = skipaug.UniversalRanked
		}
		line, err := posting.ParseLine(raw, lineRanked)
		if err != nil {
			return Report{}, fmt.Errorf("stats: %s: %w", postingsPath, err)
		}

		if isUniversal {
			totalDocuments = len(line.Postings)
			continue
		}
		totalPostings += len(line.Postings)
	}
	if err := scanner.Err(); err != nil {
		return Report{}, fmt.Errorf("stats: scan %s: %w", postingsPath, err)
	}

	var avg float64
	if totalTerms > 0 {
		avg = float64(totalPostings) / float64(totalTerms)
	}
	return Report{
		TotalDocuments:         totalDocuments,
		TotalTerms:             totalTerms,
		TotalPostings:          totalPostings,
		AveragePostingsPerTerm: avg,
	}, nil
}
