package mapping

import (
	"strings"

	"github.com/teranos/duet/ast"
)

// scanner assigns spans with a single left-to-right pass. The cursor never
// moves backward, which is the tie-break policy that makes repeated
// identical sub-expressions resolve in source order.
type scanner struct {
	text string
	m    *Mapping
}

// opSpellings lists the source spellings a canonical operator may have.
// The parser canonicalizes "&&"/"||"/"!" so hand-typed text can differ from
// the operator stored in the tree.
var opSpellings = map[string][]string{
	"and": {"and", "&&"},
	"or":  {"or", "||"},
	"not": {"not", "!"},
}

func spellings(op string) []string {
	if s, ok := opSpellings[op]; ok {
		return s
	}
	return []string{op}
}

// scan maps n and its descendants starting the token search at offset.
// It returns the node's span and the cursor position after it.
func (s *scanner) scan(n ast.Node, offset int) (Span, int) {
	switch t := n.(type) {
	case *ast.Constant:
		span, next := s.locate([]string{ast.RenderConstant(t)}, offset)
		s.m.record(t.ID, span)
		return span, next

	case *ast.Symbol:
		span, next := s.locate([]string{t.Name}, offset)
		s.m.record(t.ID, span)
		return span, next

	case *ast.Grouping:
		return s.scanGrouping(t, offset)

	case *ast.FunctionCall:
		return s.scanCall(t, offset)

	case *ast.Operator:
		return s.scanOperator(t, offset)
	}

	return Span{Start: offset, End: offset}, offset
}

func (s *scanner) scanGrouping(g *ast.Grouping, offset int) (Span, int) {
	openSpan, afterOpen := s.locate([]string{"("}, offset)
	if openSpan.Width() == 0 {
		// No parenthesis in the text; fall back to the bare content
		span, next := s.scan(g.Content, offset)
		s.m.record(g.ID, span)
		return span, next
	}

	_, contentNext := s.scan(g.Content, afterOpen)

	close := matchingParen(s.text, openSpan.Start)
	if close < 0 {
		span := Span{Start: openSpan.Start, End: contentNext}
		s.m.record(g.ID, span)
		return span, contentNext
	}

	span := Span{Start: openSpan.Start, End: close + 1}
	s.m.record(g.ID, span)
	return span, close + 1
}

func (s *scanner) scanCall(c *ast.FunctionCall, offset int) (Span, int) {
	nameSpan, afterName := s.locate([]string{c.Name}, offset)
	openSpan, cur := s.locate([]string{"("}, afterName)

	for i, arg := range c.Args {
		if i > 0 {
			_, cur = s.locate([]string{","}, cur)
		}
		_, cur = s.scan(arg, cur)
	}

	end := cur
	if openSpan.Width() > 0 {
		if close := matchingParen(s.text, openSpan.Start); close >= 0 {
			end = close + 1
		}
	}

	// The call's range spans name start to closing parenthesis inclusive
	span := Span{Start: nameSpan.Start, End: end}
	s.m.record(c.ID, span)
	return span, end
}

func (s *scanner) scanOperator(op *ast.Operator, offset int) (Span, int) {
	switch len(op.Operands) {
	case 1:
		opSpan, afterOp := s.locate(spellings(op.Op), offset)
		operandSpan, next := s.scan(op.Operands[0], afterOp)
		span := Span{Start: opSpan.Start, End: operandSpan.End}
		if span.End < span.Start {
			span = Span{Start: offset, End: offset}
		}
		s.m.record(op.ID, span)
		return span, next

	case 2:
		leftSpan, afterLeft := s.scan(op.Operands[0], offset)
		_, afterOp := s.locate(spellings(op.Op), afterLeft)
		rightSpan, next := s.scan(op.Operands[1], afterOp)
		// The operator's range never includes surrounding parentheses;
		// those belong to an enclosing grouping
		span := Span{Start: leftSpan.Start, End: rightSpan.End}
		s.m.record(op.ID, span)
		return span, next

	case 3:
		condSpan, afterCond := s.scan(op.Operands[0], offset)
		_, afterQ := s.locate([]string{"?"}, afterCond)
		_, afterThen := s.scan(op.Operands[1], afterQ)
		_, afterColon := s.locate([]string{":"}, afterThen)
		elseSpan, next := s.scan(op.Operands[2], afterColon)
		span := Span{Start: condSpan.Start, End: elseSpan.End}
		s.m.record(op.ID, span)
		return span, next
	}

	span := Span{Start: offset, End: offset}
	s.m.record(op.ID, span)
	return span, offset
}

// locate finds the first occurrence of any candidate token at or after
// offset, earliest match winning. Corrupt or hand-edited text that no longer
// contains the token yields a degenerate zero-width span at the cursor, so
// mapping always completes.
func (s *scanner) locate(candidates []string, offset int) (Span, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}

	best := -1
	bestLen := 0
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		idx := indexToken(s.text, cand, offset)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best || (idx == best && len(cand) > bestLen) {
			best = idx
			bestLen = len(cand)
		}
	}

	if best < 0 {
		return Span{Start: offset, End: offset}, offset
	}
	return Span{Start: best, End: best + bestLen}, best + bestLen
}

// indexToken finds token in text at or after from. Identifier-like tokens
// must fall on word boundaries so "age" never matches inside "package".
func indexToken(text, token string, from int) int {
	wordlike := isWordByte(token[0])
	for from <= len(text)-len(token) {
		idx := strings.Index(text[from:], token)
		if idx < 0 {
			return -1
		}
		at := from + idx
		if !wordlike || isWordBoundary(text, at, len(token)) {
			return at
		}
		from = at + 1
	}
	return -1
}

func isWordBoundary(text string, at, length int) bool {
	if at > 0 && isWordByte(text[at-1]) {
		return false
	}
	end := at + length
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// matchingParen returns the index of the ')' matching the '(' at open,
// depth-counting nested parentheses, or -1 if unbalanced.
func matchingParen(text string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
