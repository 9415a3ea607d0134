// Package posting implements the codec for one postings-file line
// (spec.md §3 "Posting", §6 "Postings file") and for the individual
// posting tokens within it.
//
// A postings line has the shape:
//
//	<term_id> <p0>[,<skip0>][ <p1>[,<skip1>] ...]\n
//
// where <pi> is either "<doc_id>" (Boolean build) or "<doc_id>,<weight>"
// (ranked build), and a skip annotation — when present — is always the
// last comma-separated field of a token.
package posting

import (
	"fmt"
	"strconv"
	"strings"
)

// Posting is one entry of a posting list: a document id, an optional
// lnc-normalized term weight (ranked build only), and an optional skip
// offset attached by internal/skipaug.
type Posting struct {
	DocID     int
	Weight    float64
	HasWeight bool
	Skip      int
	HasSkip   bool
}

// FormatWeight renders a weight the same way on every call, so that a
// width computed from FormatWeight's output always matches the bytes
// Encode actually writes (internal/skipaug depends on this).
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

// Encode renders one posting token, e.g. "7", "7,3" (ranked, no skip),
// "7,12" (boolean, with skip), or "7,0.83,12" (ranked, with skip).
func (p Posting) Encode() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(p.DocID))
	if p.HasWeight {
		b.WriteByte(',')
		b.WriteString(FormatWeight(p.Weight))
	}
	if p.HasSkip {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(p.Skip))
	}
	return b.String()
}

// BodyWidth is the byte width of the posting token without any skip
// suffix — i.e. "<doc_id>" or "<doc_id>,<weight>". spec.md §4.4 defines
// a skip offset as a count of bytes over exactly these token widths (plus
// separators), so the augmenter needs this independent of whether *this*
// posting itself carries a skip.
func (p Posting) BodyWidth() int {
	n := len(strconv.Itoa(p.DocID))
	if p.HasWeight {
		n += 1 + len(FormatWeight(p.Weight))
	}
	return n
}

// DecodeToken parses one posting token. ranked selects whether a weight
// field is expected, resolving the ambiguity spec.md's Design Notes
// mention: a 2-field token is "doc_id,skip" in a Boolean build but
// "doc_id,weight" in a ranked build. The build mode is known globally
// from the dictionary/postings pairing, never per-line.
func DecodeToken(tok string, ranked bool) (Posting, error) {
	fields := strings.Split(tok, ",")
	var p Posting

	docID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Posting{}, fmt.Errorf("posting: bad doc_id %q: %w", fields[0], err)
	}
	p.DocID = docID
	fields = fields[1:]

	if ranked {
		if len(fields) == 0 {
			return Posting{}, fmt.Errorf("posting: ranked token %q missing weight", tok)
		}
		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Posting{}, fmt.Errorf("posting: bad weight %q: %w", fields[0], err)
		}
		p.Weight = w
		p.HasWeight = true
		fields = fields[1:]
	}

	if len(fields) == 1 {
		skip, err := strconv.Atoi(fields[0])
		if err != nil {
			return Posting{}, fmt.Errorf("posting: bad skip %q: %w", fields[0], err)
		}
		p.Skip = skip
		p.HasSkip = true
		fields = fields[1:]
	}

	if len(fields) != 0 {
		return Posting{}, fmt.Errorf("posting: unexpected extra fields in %q", tok)
	}
	return p, nil
}

// Line is one parsed postings-file line: a term_id and its ascending
// posting list (spec.md invariants 2 and 3).
type Line struct {
	TermID   int
	Postings []Posting
}

// Encode renders a full postings line, including the trailing newline.
func (l Line) Encode() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(l.TermID))
	for _, p := range l.Postings {
		b.WriteByte(' ')
		b.WriteString(p.Encode())
	}
	b.WriteByte('\n')
	return b.String()
}

// ParseLine parses one postings-file line (without its trailing newline).
func ParseLine(line string, ranked bool) (Line, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Line{}, fmt.Errorf("posting: empty line")
	}
	termID, err := strconv.Atoi(fields[0])
	if err != nil {
		return Line{}, fmt.Errorf("posting: bad term_id %q: %w", fields[0], err)
	}

	out := Line{TermID: termID, Postings: make([]Posting, 0, len(fields)-1)}
	for _, tok := range fields[1:] {
		p, err := DecodeToken(tok, ranked)
		if err != nil {
			return Line{}, err
		}
		out.Postings = append(out.Postings, p)
	}
	return out, nil
}
