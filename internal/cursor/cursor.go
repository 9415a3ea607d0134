// Package cursor implements the uniform cursor abstraction spec.md's
// Design Notes call for: the Boolean evaluator must walk on-disk,
// skip-augmented posting lines and in-memory intermediate result lists
// through the same interface.
//
// The "skip ahead instead of single-stepping" idea is adapted from the
// teacher's skiplist.go, which built an express-lane Node/Tower structure
// for positional (phrase) search — a spec Non-goal here. What survives is
// the express-lane *idea*: jump by a precomputed stride rather than
// walking one element at a time. On disk that stride is the byte offset
// spec.md §4.4 bakes into the posting line; in memory it is computed once
// as floor(sqrt(n)) from the list length, exactly as spec.md's Design
// Notes specify for SliceCursor.
package cursor

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/lucerna-labs/blaze/internal/posting"
)

// IntCursor walks an ascending sequence of document ids, optionally
// accelerated by a skip pointer.
type IntCursor interface {
	// Value returns the doc_id at the current position. Only valid when
	// !AtEnd().
	Value() int
	// AtEnd reports whether the cursor has been advanced past the last
	// element.
	AtEnd() bool
	// Advance moves to the next element (single step).
	Advance() error
	// TrySkip attempts to jump ahead using this cursor's skip pointer. It
	// only commits the jump if doing so would still land at a doc_id
	// <= target; it reports whether it moved.
	TrySkip(target int) (bool, error)
}

// ─────────────────────────────────────────────────────────────────────────
// SliceCursor: an in-memory ascending []int, e.g. an intermediate Boolean
// result or the _universal list already materialized in memory.
// ─────────────────────────────────────────────────────────────────────────

type SliceCursor struct {
	values []int
	idx    int
	stride int
}

// NewSliceCursor wraps an ascending, duplicate-free slice. The skip
// stride is floor(sqrt(n)), recomputed once since n is fixed.
func NewSliceCursor(values []int) *SliceCursor {
	stride := int(math.Sqrt(float64(len(values))))
	return &SliceCursor{values: values, stride: stride}
}

func (c *SliceCursor) Value() int {
	return c.values[c.idx]
}

func (c *SliceCursor) AtEnd() bool {
	return c.idx >= len(c.values)
}

func (c *SliceCursor) Advance() error {
	if c.AtEnd() {
		return nil
	}
	c.idx++
	return nil
}

func (c *SliceCursor) TrySkip(target int) (bool, error) {
	if c.stride <= 1 || c.AtEnd() {
		return false, nil
	}
	dest := c.idx + c.stride
	if dest >= len(c.values) {
		return false, nil
	}
	if c.values[dest] > target {
		return false, nil
	}
	c.idx = dest
	return true, nil
}

// ─────────────────────────────────────────────────────────────────────────
// FileCursor: an on-disk, skip-augmented posting list, read by absolute
// byte offset per spec.md §5 ("seeks must not be buffered in a way that
// invalidates offsets").
// ─────────────────────────────────────────────────────────────────────────

type FileCursor struct {
	f      *os.File
	ranked bool

	offset int64 // byte offset of the current token's first byte
	cur    posting.Posting
	next   int64 // byte offset one past the current token's trailing separator, if any
	atEnd  bool
}

// NewFileCursor opens a cursor at startOffset, which must be the first
// byte of a posting token (spec.md's dictionary byte_offset convention).
func NewFileCursor(f *os.File, startOffset int64, ranked bool) (*FileCursor, error) {
	c := &FileCursor{f: f, ranked: ranked, offset: startOffset}
	if err := c.load(startOffset); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileCursor) Value() int {
	return c.cur.DocID
}

// Posting returns the full decoded posting at the current position,
// weight included — the ranked evaluator needs the weight field that
// Value alone discards.
func (c *FileCursor) Posting() posting.Posting {
	return c.cur
}

func (c *FileCursor) AtEnd() bool {
	return c.atEnd
}

func (c *FileCursor) Advance() error {
	if c.atEnd {
		return nil
	}
	if c.next < 0 {
		c.atEnd = true
		return nil
	}
	return c.load(c.next)
}

func (c *FileCursor) TrySkip(target int) (bool, error) {
	if c.atEnd || !c.cur.HasSkip {
		return false, nil
	}
	dest := c.next + int64(c.cur.Skip)
	peek, peekNext, atEnd, err := c.readTokenAt(dest)
	if err != nil {
		return false, err
	}
	if atEnd || peek.DocID > target {
		return false, nil
	}
	c.offset = dest
	c.cur = peek
	c.next = peekNext
	c.atEnd = false
	return true, nil
}

// load parses the token starting at offset and makes it the cursor's
// current position.
func (c *FileCursor) load(offset int64) error {
	p, next, atEnd, err := c.readTokenAt(offset)
	if err != nil {
		return err
	}
	c.offset = offset
	c.cur = p
	c.next = next
	c.atEnd = atEnd
	return nil
}

// readTokenAt decodes the posting token starting at offset without
// mutating cursor state, per the decoding contract of spec.md §4.4: read
// up to the next ' ' or '\n'. It returns the offset one past that
// terminator (-1 if the terminator was '\n', since there is no next
// posting on this line), and whether offset itself was already at/after
// the end of the file (an empty read).
func (c *FileCursor) readTokenAt(offset int64) (posting.Posting, int64, bool, error) {
	const initial = 64
	buf := make([]byte, initial)
	for {
		n, err := c.f.ReadAt(buf, offset)
		if n == 0 && err != nil && err != io.EOF {
			return posting.Posting{}, 0, false, fmt.Errorf("cursor: read at %d: %w", offset, err)
		}
		if n == 0 {
			return posting.Posting{}, 0, true, nil
		}
		chunk := buf[:n]
		for i, b := range chunk {
			if b == ' ' || b == '\n' {
				tok := string(chunk[:i])
				p, decErr := posting.DecodeToken(tok, c.ranked)
				if decErr != nil {
					return posting.Posting{}, 0, false, decErr
				}
				if b == '\n' {
					return p, -1, false, nil
				}
				return p, offset + int64(i) + 1, false, nil
			}
		}
		if err == io.EOF {
			// Unterminated trailing token: treat EOF as the terminator.
			tok := string(chunk)
			p, decErr := posting.DecodeToken(tok, c.ranked)
			if decErr != nil {
				return posting.Posting{}, 0, false, decErr
			}
			return p, -1, false, nil
		}
		buf = make([]byte, len(buf)*2)
	}
}

// ParseTermID recovers a term_id from the bytes immediately preceding a
// dictionary byte_offset, per spec.md invariant 5: "read_line_from_offset
// - len(term_id_text) - 1 recovers the term_id". No package in this
// module calls it; the dictionary builder and stats reader parse the
// term_id from each line themselves.
func ParseTermID(text string) (int, error) {
	return strconv.Atoi(text)
}
