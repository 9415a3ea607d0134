// Package dictionary implements spec.md §4.5: a single pass over the
// final, skip-augmented postings file that builds the term → (term_id,
// metric, byte_offset) map used for O(1) posting-list lookup at search
// time, and its JSON serialization (spec.md §6).
package dictionary

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/lucerna-labs/blaze/internal/posting"
	"github.com/lucerna-labs/blaze/internal/skipaug"
	"github.com/lucerna-labs/blaze/internal/termtable"
)

// Entry is one dictionary value: spec.md §3's "(term_id, idf_or_doc_freq,
// byte_offset)". Metric holds doc_freq for a Boolean build or idf for a
// ranked build; Dictionary.Ranked says which.
type Entry struct {
	TermID     int
	Metric     float64
	ByteOffset int64
}

// Dictionary is the whole term → Entry map, held entirely in memory at
// search time (spec.md §4.5: "The dictionary fits entirely in memory").
type Dictionary struct {
	Ranked  bool
	Entries map[string]Entry
}

// Lookup returns the entry for term, if indexed.
func (d *Dictionary) Lookup(term string) (Entry, bool) {
	e, ok := d.Entries[term]
	return e, ok
}

// Universal returns the dictionary entry for the synthetic "_universal"
// term, which every build produces.
func (d *Dictionary) Universal() (Entry, bool) {
	return d.Lookup("_universal")
}

// Build walks the final postings file at postingsPath once and produces
// its dictionary. table must be the same term-to-id table the indexing
// pipeline used, so term ids can be resolved back to term text;
// totalDocs is N, used for idf in a ranked build.
func Build(postingsPath string, table *termtable.Table, ranked bool, totalDocs int) (*Dictionary, error) {
	f, err := os.Open(postingsPath)
	if err != nil {
		return nil, fmt.Errorf("dictionary: open %s: %w", postingsPath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	entries := make(map[string]Entry, table.Len()+1)
	universalTermID := table.Len()
	var offset int64

	for scanner.Scan() {
		raw := scanner.Text()
		head, _, found := strings.Cut(raw, " ")
		if !found {
			return nil, fmt.Errorf("dictionary: malformed line %q", raw)
		}
		postingsOffset := offset + int64(len(head)) + 1

		isUniversal := false
		lineRanked := ranked
		// A line's term_id tells us whether it's the synthetic
		// "_universal" line before we even decode it, since that line's
		// term_id is always the count of real terms (spec.md invariant 4).
		if headID, err := posting.ParseLine(raw, skipaug.UniversalRanked); err == nil && headID.TermID == universalTermID {
			isUniversal = true
			lineRanked = skipaug.UniversalRanked
		}

		line, err := posting.ParseLine(raw, lineRanked)
		if err != nil {
			return nil, fmt.Errorf("dictionary: %s: %w", postingsPath, err)
		}

		term := "_universal"
		if !isUniversal {
			t, ok := table.Term(line.TermID)
			if !ok {
				return nil, fmt.Errorf("dictionary: unknown term_id %d", line.TermID)
			}
			term = t
		}

		df := len(line.Postings)
		var metric float64
		switch {
		case isUniversal:
			metric = float64(df)
		case ranked:
			metric = math.Log(float64(totalDocs) / float64(df))
		default:
			metric = float64(df)
		}

		entries[term] = Entry{TermID: line.TermID, Metric: metric, ByteOffset: postingsOffset}
		offset += int64(len(raw)) + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dictionary: scan %s: %w", postingsPath, err)
	}

	return &Dictionary{Ranked: ranked, Entries: entries}, nil
}

// Save serializes the dictionary as a JSON object keyed by term,
// 2-space indented, matching spec.md §6: each value is
// [term_id, metric, byte_offset], with metric an integer for a Boolean
// build and a float for a ranked build.
func (d *Dictionary) Save(path string) error {
	raw := make(map[string][]any, len(d.Entries))
	for term, e := range d.Entries {
		var metric any
		if d.Ranked {
			metric = e.Metric
		} else {
			metric = int64(math.Round(e.Metric))
		}
		raw[term] = []any{e.TermID, metric, e.ByteOffset}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("dictionary: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dictionary: write %s: %w", path, err)
	}
	return nil
}

// Load reads a dictionary file written by Save. ranked must match the
// build mode the postings file alongside it was produced with — the
// file format does not record this itself, so the caller (the searcher
// CLI) carries it from its own -mode flag, exactly as it must already
// keep the dictionary and postings paths paired correctly.
func Load(path string, ranked bool) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: read %s: %w", path, err)
	}

	var raw map[string][]json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("dictionary: decode %s: %w", path, err)
	}

	entries := make(map[string]Entry, len(raw))
	for term, fields := range raw {
		if len(fields) != 3 {
			return nil, fmt.Errorf("dictionary: malformed entry for %q", term)
		}
		termID, err := fields[0].Int64()
		if err != nil {
			return nil, fmt.Errorf("dictionary: bad term_id for %q: %w", term, err)
		}
		metric, err := fields[1].Float64()
		if err != nil {
			return nil, fmt.Errorf("dictionary: bad metric for %q: %w", term, err)
		}
		byteOffset, err := fields[2].Int64()
		if err != nil {
			return nil, fmt.Errorf("dictionary: bad byte_offset for %q: %w", term, err)
		}
		entries[term] = Entry{TermID: int(termID), Metric: metric, ByteOffset: byteOffset}
	}

	return &Dictionary{Ranked: ranked, Entries: entries}, nil
}
