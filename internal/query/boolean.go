// Package query implements the Boolean and ranked query evaluators: the
// fan-in that turns a query string into doc_ids by walking the cursor
// abstraction over on-disk posting lines (see internal/cursor).
package query

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/lucerna-labs/blaze/internal/analyzer"
	"github.com/lucerna-labs/blaze/internal/cursor"
	"github.com/lucerna-labs/blaze/internal/dictionary"
	"github.com/lucerna-labs/blaze/internal/skipaug"
)

// ErrMalformed reports a Boolean query whose operator/operand shape could
// not be evaluated (unbalanced parentheses, an operator missing an
// operand, or similar). Callers are expected to log this and continue
// with the next query rather than abort the run.
var ErrMalformed = errors.New("query: malformed boolean expression")

// BooleanEvaluator answers AND/OR/NOT/ANDNOT queries over a dictionary
// and its paired postings file.
type BooleanEvaluator struct {
	dict     *dictionary.Dictionary
	postings *os.File
	ranked   bool // whether term lines in postings carry a weight field
}

// NewBooleanEvaluator builds an evaluator over dict and an already-open
// postings file. ranked must match the mode the postings file was built
// with, so posting tokens are decoded with the right field shape.
func NewBooleanEvaluator(dict *dictionary.Dictionary, postings *os.File, ranked bool) *BooleanEvaluator {
	return &BooleanEvaluator{dict: dict, postings: postings, ranked: ranked}
}

// Eval parses and evaluates query, returning the ascending, duplicate
// -free list of matching doc_ids.
func (e *BooleanEvaluator) Eval(query string) ([]int, error) {
	tokens := classifyAll(tokenize(query))
	tokens = collapseNots(tokens)
	tokens = foldAndNot(tokens)

	postfix, err := toPostfix(tokens)
	if err != nil {
		return nil, err
	}
	return e.evalPostfix(postfix)
}

// ─────────────────────────────────────────────────────────────────────────
// Lexing
// ─────────────────────────────────────────────────────────────────────────

// tokKind distinguishes operators, grouping, and operands in a query.
type tokKind int

const (
	tokTerm tokKind = iota
	tokAnd
	tokOr
	tokNot
	tokAndNot // folded "AND NOT", not user-written
	tokLParen
	tokRParen
)

type tok struct {
	kind tokKind
	term string // populated only when kind == tokTerm
}

// tokenize splits a query into raw words and parenthesis characters.
// Parentheses are token boundaries even with no surrounding whitespace:
// "(cat AND dog)" yields five tokens.
func tokenize(query string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range query {
		switch {
		case r == '(' || r == ')':
			flush()
			out = append(out, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// classifyAll turns raw words into typed tokens. Operators are matched
// case-sensitively against the exact uppercase spellings "AND", "OR",
// "NOT"; every other token — including a lowercase "and" — is a search
// term, stemmed and lowercased exactly as indexing does.
func classifyAll(raw []string) []tok {
	out := make([]tok, len(raw))
	for i, r := range raw {
		switch r {
		case "AND":
			out[i] = tok{kind: tokAnd}
		case "OR":
			out[i] = tok{kind: tokOr}
		case "NOT":
			out[i] = tok{kind: tokNot}
		case "(":
			out[i] = tok{kind: tokLParen}
		case ")":
			out[i] = tok{kind: tokRParen}
		default:
			out[i] = tok{kind: tokTerm, term: analyzer.Stem(r)}
		}
	}
	return out
}

// collapseNots reduces any run of consecutive NOT tokens to zero or one,
// by parity: "NOT NOT NOT x" means "NOT x", "NOT NOT x" means "x".
func collapseNots(tokens []tok) []tok {
	out := make([]tok, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i].kind != tokNot {
			out = append(out, tokens[i])
			continue
		}
		count := 0
		for i < len(tokens) && tokens[i].kind == tokNot {
			count++
			i++
		}
		i-- // outer loop's i++ re-steps onto the first non-NOT token
		if count%2 == 1 {
			out = append(out, tok{kind: tokNot})
		}
	}
	return out
}

// foldAndNot rewrites every "AND NOT" pair into a single ANDNOT operator,
// producing a fresh token sequence rather than mutating tokens with a
// placeholder — the teacher's skiplist.go used an _IGNORE sentinel for a
// similar rewrite, which left the placeholder observable to later passes;
// emitting a new slice avoids that class of bug entirely.
func foldAndNot(tokens []tok) []tok {
	out := make([]tok, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if tokens[i].kind == tokAnd && i+1 < len(tokens) && tokens[i+1].kind == tokNot {
			out = append(out, tok{kind: tokAndNot})
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────
// Shunting-yard → postfix
// ─────────────────────────────────────────────────────────────────────────

// precedence ranks binary/unary operators: ANDNOT binds tightest, then
// NOT, then AND, then OR. All are left-associative.
func precedence(k tokKind) int {
	switch k {
	case tokOr:
		return 1
	case tokAnd:
		return 2
	case tokNot:
		return 3
	case tokAndNot:
		return 4
	}
	return 0
}

func isOperator(k tokKind) bool {
	return k == tokAnd || k == tokOr || k == tokNot || k == tokAndNot
}

// toPostfix runs Dijkstra's shunting-yard algorithm over tokens, handling
// NOT as a unary prefix operator of its own precedence tier.
func toPostfix(tokens []tok) ([]tok, error) {
	var output []tok
	var stack []tok

	for _, t := range tokens {
		switch {
		case t.kind == tokTerm:
			output = append(output, t)
		case t.kind == tokLParen:
			stack = append(stack, t)
		case t.kind == tokRParen:
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.kind == tokLParen {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return nil, fmt.Errorf("%w: unmatched )", ErrMalformed)
			}
		case isOperator(t.kind):
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.kind == tokLParen || precedence(top.kind) < precedence(t.kind) {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, t)
		default:
			return nil, fmt.Errorf("%w: unrecognized token", ErrMalformed)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.kind == tokLParen {
			return nil, fmt.Errorf("%w: unmatched (", ErrMalformed)
		}
		output = append(output, top)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrMalformed)
	}
	return output, nil
}

// ─────────────────────────────────────────────────────────────────────────
// Evaluation
// ─────────────────────────────────────────────────────────────────────────

func (e *BooleanEvaluator) evalPostfix(postfix []tok) ([]int, error) {
	var stack []cursor.IntCursor

	pop := func() (cursor.IntCursor, error) {
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: operator missing operand", ErrMalformed)
		}
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return c, nil
	}

	for _, t := range postfix {
		switch t.kind {
		case tokTerm:
			c, err := e.termCursor(t.term)
			if err != nil {
				return nil, err
			}
			stack = append(stack, c)
		case tokNot:
			a, err := pop()
			if err != nil {
				return nil, err
			}
			universal, err := e.universalCursor()
			if err != nil {
				return nil, err
			}
			result, err := diff(universal, a)
			if err != nil {
				return nil, err
			}
			stack = append(stack, cursor.NewSliceCursor(result))
		case tokAnd:
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			result, err := intersect(a, b)
			if err != nil {
				return nil, err
			}
			stack = append(stack, cursor.NewSliceCursor(result))
		case tokOr:
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			result, err := union(a, b)
			if err != nil {
				return nil, err
			}
			stack = append(stack, cursor.NewSliceCursor(result))
		case tokAndNot:
			b, err := pop()
			if err != nil {
				return nil, err
			}
			a, err := pop()
			if err != nil {
				return nil, err
			}
			result, err := diff(a, b)
			if err != nil {
				return nil, err
			}
			stack = append(stack, cursor.NewSliceCursor(result))
		default:
			return nil, fmt.Errorf("%w: unexpected token in postfix", ErrMalformed)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%w: %d operands left over", ErrMalformed, len(stack))
	}
	return drain(stack[0])
}

func (e *BooleanEvaluator) termCursor(term string) (cursor.IntCursor, error) {
	entry, ok := e.dict.Lookup(term)
	if !ok {
		return cursor.NewSliceCursor(nil), nil
	}
	return cursor.NewFileCursor(e.postings, entry.ByteOffset, e.ranked)
}

func (e *BooleanEvaluator) universalCursor() (cursor.IntCursor, error) {
	entry, ok := e.dict.Universal()
	if !ok {
		return nil, fmt.Errorf("query: dictionary has no _universal entry")
	}
	return cursor.NewFileCursor(e.postings, entry.ByteOffset, skipaug.UniversalRanked)
}

// drain walks c to completion and collects every value it visits.
func drain(c cursor.IntCursor) ([]int, error) {
	var out []int
	for !c.AtEnd() {
		out = append(out, c.Value())
		if err := c.Advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// intersect merges a and b, skip-assisted, keeping only values present
// in both.
func intersect(a, b cursor.IntCursor) ([]int, error) {
	var out []int
	for !a.AtEnd() && !b.AtEnd() {
		switch {
		case a.Value() == b.Value():
			out = append(out, a.Value())
			if err := a.Advance(); err != nil {
				return nil, err
			}
			if err := b.Advance(); err != nil {
				return nil, err
			}
		case a.Value() < b.Value():
			if err := advanceOrSkip(a, b.Value()); err != nil {
				return nil, err
			}
		default:
			if err := advanceOrSkip(b, a.Value()); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// union merges a and b, keeping every value present in either.
func union(a, b cursor.IntCursor) ([]int, error) {
	var out []int
	for !a.AtEnd() && !b.AtEnd() {
		switch {
		case a.Value() == b.Value():
			out = append(out, a.Value())
			if err := a.Advance(); err != nil {
				return nil, err
			}
			if err := b.Advance(); err != nil {
				return nil, err
			}
		case a.Value() < b.Value():
			out = append(out, a.Value())
			if err := a.Advance(); err != nil {
				return nil, err
			}
		default:
			out = append(out, b.Value())
			if err := b.Advance(); err != nil {
				return nil, err
			}
		}
	}
	for !a.AtEnd() {
		out = append(out, a.Value())
		if err := a.Advance(); err != nil {
			return nil, err
		}
	}
	for !b.AtEnd() {
		out = append(out, b.Value())
		if err := b.Advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// diff merges a and b, keeping values present in a but not in b
// ("a minus b"). NOT x is diff(universal, x); "p ANDNOT q" is diff(p, q).
func diff(a, b cursor.IntCursor) ([]int, error) {
	var out []int
	for !a.AtEnd() && !b.AtEnd() {
		switch {
		case a.Value() == b.Value():
			if err := a.Advance(); err != nil {
				return nil, err
			}
			if err := b.Advance(); err != nil {
				return nil, err
			}
		case a.Value() < b.Value():
			out = append(out, a.Value())
			if err := a.Advance(); err != nil {
				return nil, err
			}
		default:
			if err := advanceOrSkip(b, a.Value()); err != nil {
				return nil, err
			}
		}
	}
	for !a.AtEnd() {
		out = append(out, a.Value())
		if err := a.Advance(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// advanceOrSkip tries c's skip pointer toward target first, falling back
// to a single step when no skip is available or it would overshoot.
func advanceOrSkip(c cursor.IntCursor, target int) error {
	ok, err := c.TrySkip(target)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.Advance()
}
