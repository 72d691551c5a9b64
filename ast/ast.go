// Package ast defines the intermediate representation shared by the visual
// and textual expression editors: a closed tagged union of expression nodes,
// the operator precedence classes used for code generation, and structural
// helpers (validation, formatting, analysis, equality).
package ast

import (
	"github.com/google/uuid"
)

// Node is one element of the intermediate expression tree. The set of
// implementations is closed: Constant, Symbol, Operator, FunctionCall and
// Grouping. Conversion code switches exhaustively over these five variants.
type Node interface {
	// NodeID returns the stable identity used by the position mapper.
	NodeID() string
	// Order returns the precedence class of the node as an expression
	// (see order.go). Lower binds tighter; atomic nodes are 0.
	Order() int

	node()
}

// NewID generates a fresh node identity. Parser-built nodes get these;
// nodes converted from the visual tree keep the visual node's ID so that
// highlight lookups line up across representations.
func NewID() string {
	return uuid.NewString()
}

// ValueKind discriminates constant values.
type ValueKind int

const (
	ValueNumber ValueKind = iota
	ValueString
	ValueBool
)

// Value is a constant literal: a number, a string or a boolean.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

// Number builds a numeric value
func Number(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// String builds a string value
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// Bool builds a boolean value
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// Constant is a literal value. Raw, when non-empty, preserves the exact
// lexeme the constant was parsed from (e.g. "2.0" for the number 2) so that
// the position mapper can locate it in the source text and code generation
// can round-trip the user's spelling.
type Constant struct {
	ID    string
	Value Value
	Raw   string
}

// Symbol is a variable reference by name.
type Symbol struct {
	ID   string
	Name string
}

// Operator applies a unary, binary or ternary operator to its operands.
// Operands are never empty; the ternary conditional uses Op "?:" with
// operands [condition, then, else].
type Operator struct {
	ID       string
	Op       string
	Operands []Node
}

// FunctionCall applies a named function to its arguments.
type FunctionCall struct {
	ID   string
	Name string
	Args []Node
}

// Grouping records user-typed parentheses around Content. Tree nesting
// already encodes precedence, so groupings exist only to preserve the text
// form; the visual converter elides them.
type Grouping struct {
	ID      string
	Content Node
}

func (c *Constant) NodeID() string     { return c.ID }
func (s *Symbol) NodeID() string       { return s.ID }
func (o *Operator) NodeID() string     { return o.ID }
func (f *FunctionCall) NodeID() string { return f.ID }
func (g *Grouping) NodeID() string     { return g.ID }

func (c *Constant) Order() int     { return OrderAtomic }
func (s *Symbol) Order() int       { return OrderAtomic }
func (f *FunctionCall) Order() int { return OrderAtomic }

// Order of a grouping is atomic: its parentheses shield the content from
// the surrounding precedence context.
func (g *Grouping) Order() int { return OrderAtomic }

func (o *Operator) Order() int {
	order, ok := OperatorOrder(o.Op, len(o.Operands))
	if !ok {
		// Unknown operators render as an atomic placeholder
		return OrderAtomic
	}
	return order
}

func (c *Constant) node()     {}
func (s *Symbol) node()       {}
func (o *Operator) node()     {}
func (f *FunctionCall) node() {}
func (g *Grouping) node()     {}

// NewConstant builds a constant with a fresh ID
func NewConstant(v Value) *Constant {
	return &Constant{ID: NewID(), Value: v}
}

// NewSymbol builds a symbol with a fresh ID
func NewSymbol(name string) *Symbol {
	return &Symbol{ID: NewID(), Name: name}
}

// NewOperator builds an operator node with a fresh ID
func NewOperator(op string, operands ...Node) *Operator {
	return &Operator{ID: NewID(), Op: op, Operands: operands}
}

// NewCall builds a function call node with a fresh ID
func NewCall(name string, args ...Node) *FunctionCall {
	return &FunctionCall{ID: NewID(), Name: name, Args: args}
}

// NewGrouping wraps content in a grouping node with a fresh ID
func NewGrouping(content Node) *Grouping {
	return &Grouping{ID: NewID(), Content: content}
}

// Children returns the child nodes of n in source order. Leaves return nil.
func Children(n Node) []Node {
	switch t := n.(type) {
	case *Constant, *Symbol:
		return nil
	case *Operator:
		return t.Operands
	case *FunctionCall:
		return t.Args
	case *Grouping:
		if t.Content == nil {
			return nil
		}
		return []Node{t.Content}
	}
	return nil
}

// Walk visits n and every descendant in depth-first source order. The walk
// stops early if fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, child := range Children(n) {
		if child == nil {
			continue
		}
		if !Walk(child, fn) {
			return false
		}
	}
	return true
}
