// Package parser turns expression source text into the intermediate tree.
//
// The grammar is a conventional expression grammar with precedence climbing:
// binary arithmetic, comparisons, logical and/or/not (word or symbolic
// spellings), function calls, grouping parentheses, the ternary conditional
// and string literals. Parsing is total over its declared result: every
// failure is reported as a *ParseError carrying a source range, never a
// panic.
package parser

import (
	"fmt"

	"github.com/teranos/duet/ast"
)

// canonicalOps maps alternate operator spellings to the canonical form
// stored in the tree. Code generation emits the canonical form.
var canonicalOps = map[string]string{
	"&&": "and",
	"||": "or",
	"!":  "not",
}

// Parse parses expression source text into an intermediate tree. On failure
// the returned error is always a *ParseError.
func Parse(source string) (ast.Node, error) {
	tokens, lexErr := tokenize(source)
	if lexErr != nil {
		return nil, lexErr
	}

	p := &exprParser{tokens: tokens}
	node, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenEOF {
		tok := p.peek()
		return nil, NewParseError(ErrorKindSyntax, "unexpected trailing input").
			WithToken(tok.text).
			WithRange(tok.rng).
			WithSuggestion("remove text after the expression")
	}
	return node, nil
}

type exprParser struct {
	tokens []token
	pos    int
}

func (p *exprParser) peek() token {
	return p.tokens[p.pos]
}

func (p *exprParser) next() token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// acceptOperator consumes the next token if it is one of the given operator
// spellings and returns its canonical form.
func (p *exprParser) acceptOperator(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokenOperator {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			p.next()
			if canonical, ok := canonicalOps[op]; ok {
				return canonical, true
			}
			return op, true
		}
	}
	return "", false
}

// parseTernary handles the loosest level: cond ? then : else
func (p *exprParser) parseTernary() (ast.Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenQuestion {
		return cond, nil
	}
	p.next()

	thenBranch, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenColon {
		tok := p.peek()
		return nil, NewParseError(ErrorKindSyntax, "expected ':' in conditional expression").
			WithToken(tok.text).
			WithRange(tok.rng).
			WithSuggestion("write the conditional as cond ? a : b")
	}
	p.next()

	elseBranch, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return ast.NewOperator("?:", cond, thenBranch, elseBranch), nil
}

func (p *exprParser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("or", "||")
		if !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left, right)
	}
}

func (p *exprParser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("and", "&&")
		if !ok {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left, right)
	}
}

// parseNot handles prefix logical negation, which binds looser than
// comparisons: "not a > b" negates the whole comparison.
func (p *exprParser) parseNot() (ast.Node, error) {
	if op, ok := p.acceptOperator("not", "!"); ok {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewOperator(op, operand), nil
	}
	return p.parseEquality()
}

func (p *exprParser) parseEquality() (ast.Node, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("==", "!=")
		if !ok {
			return left, nil
		}
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left, right)
	}
}

func (p *exprParser) parseRelational() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("<=", ">=", "<", ">")
		if !ok {
			return left, nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left, right)
	}
}

func (p *exprParser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left, right)
	}
}

func (p *exprParser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOperator("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewOperator(op, left, right)
	}
}

func (p *exprParser) parseUnary() (ast.Node, error) {
	if op, ok := p.acceptOperator("-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewOperator(op, operand), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (ast.Node, error) {
	tok := p.peek()

	switch tok.kind {
	case tokenNumber:
		p.next()
		c := ast.NewConstant(ast.Number(tok.num))
		c.Raw = tok.text
		return c, nil

	case tokenString:
		p.next()
		c := ast.NewConstant(ast.String(tok.str))
		c.Raw = tok.text
		return c, nil

	case tokenIdent:
		p.next()
		switch tok.text {
		case "true":
			c := ast.NewConstant(ast.Bool(true))
			c.Raw = tok.text
			return c, nil
		case "false":
			c := ast.NewConstant(ast.Bool(false))
			c.Raw = tok.text
			return c, nil
		}
		if p.peek().kind == tokenLParen {
			return p.parseCallArgs(tok.text)
		}
		return ast.NewSymbol(tok.text), nil

	case tokenLParen:
		p.next()
		content, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokenRParen {
			bad := p.peek()
			return nil, NewParseError(ErrorKindSyntax, "expected ')'").
				WithToken(bad.text).
				WithRange(bad.rng).
				WithSuggestion("close the parenthesized group")
		}
		p.next()
		return ast.NewGrouping(content), nil

	case tokenEOF:
		return nil, NewParseError(ErrorKindSyntax, "unexpected end of expression").
			WithRange(tok.rng).
			WithSuggestion("complete the expression")

	default:
		return nil, NewParseError(ErrorKindSyntax, fmt.Sprintf("unexpected token %q", tok.text)).
			WithToken(tok.text).
			WithRange(tok.rng)
	}
}

// parseCallArgs parses the argument list of a function call whose name has
// already been consumed. The opening parenthesis is the current token.
func (p *exprParser) parseCallArgs(name string) (ast.Node, error) {
	p.next() // consume '('

	if p.peek().kind == tokenRParen {
		bad := p.peek()
		return nil, NewParseError(ErrorKindSemantic, fmt.Sprintf("function %q called with no arguments", name)).
			WithToken(bad.text).
			WithRange(bad.rng).
			WithSuggestion("every function call takes at least one argument")
	}

	var args []ast.Node
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch p.peek().kind {
		case tokenComma:
			p.next()
		case tokenRParen:
			p.next()
			return ast.NewCall(name, args...), nil
		default:
			bad := p.peek()
			return nil, NewParseError(ErrorKindSyntax, "expected ',' or ')' in argument list").
				WithToken(bad.text).
				WithRange(bad.rng)
		}
	}
}
