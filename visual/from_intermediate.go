package visual

import (
	"fmt"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/typehint"
)

// FromIntermediate converts an intermediate tree to a visual block tree
// using the default variable type-hint policy. Grouping nodes are elided:
// tree nesting already encodes precedence, so parentheses have no block.
func FromIntermediate(n ast.Node) (*Node, []Warning) {
	return FromIntermediateWithHints(n, typehint.Default())
}

// FromIntermediateWithHints converts with an explicit hint policy. A nil
// policy disables value-type seeding on variable blocks.
func FromIntermediateWithHints(n ast.Node, hints typehint.Policy) (*Node, []Warning) {
	if n == nil {
		return nil, nil
	}
	b := &blockBuilder{hints: hints}
	node := b.build(n)
	return node, b.warnings
}

type blockBuilder struct {
	hints    typehint.Policy
	warnings []Warning
}

func (b *blockBuilder) warn(id, format string, args ...any) {
	b.warnings = append(b.warnings, Warning{NodeID: id, Message: fmt.Sprintf(format, args...)})
}

func (b *blockBuilder) build(n ast.Node) *Node {
	switch t := n.(type) {
	case *ast.Constant:
		return b.buildConstant(t)

	case *ast.Symbol:
		fields := map[string]any{"name": t.Name}
		if b.hints != nil {
			if hint := b.hints.Hint(t.Name); hint != typehint.HintUnknown {
				fields["value_type"] = string(hint)
			}
		}
		return &Node{Kind: KindVariable, ID: t.ID, Fields: fields}

	case *ast.Grouping:
		// Elided: the content is inlined
		return b.build(t.Content)

	case *ast.FunctionCall:
		slots := make(map[string]*Node, len(t.Args))
		for i, arg := range t.Args {
			slots[fmt.Sprintf("arg%d", i)] = b.build(arg)
		}
		return &Node{
			Kind:   KindFunctionCall,
			ID:     t.ID,
			Fields: map[string]any{"name": t.Name},
			Slots:  slots,
		}

	case *ast.Operator:
		return b.buildOperator(t)
	}

	return nil
}

func (b *blockBuilder) buildConstant(c *ast.Constant) *Node {
	switch c.Value.Kind {
	case ast.ValueString:
		return &Node{Kind: KindText, ID: c.ID, Fields: map[string]any{"value": c.Value.Str}}
	case ast.ValueBool:
		return &Node{Kind: KindBoolean, ID: c.ID, Fields: map[string]any{"value": c.Value.Bool}}
	default:
		return &Node{Kind: KindNumber, ID: c.ID, Fields: map[string]any{"value": c.Value.Num}}
	}
}

func (b *blockBuilder) buildOperator(op *ast.Operator) *Node {
	switch len(op.Operands) {
	case 1:
		kind := KindNegate
		if op.Op == "not" {
			kind = KindNot
		} else if op.Op != "-" {
			b.warn(op.ID, "unsupported unary operator %q; block replaced with placeholder", op.Op)
			return placeholderBlock(op.ID)
		}
		return &Node{
			Kind:  kind,
			ID:    op.ID,
			Slots: map[string]*Node{SlotOperand: b.build(op.Operands[0])},
		}

	case 2:
		kind, ok := binaryKind(op.Op)
		if !ok {
			b.warn(op.ID, "unsupported binary operator %q; block replaced with placeholder", op.Op)
			return placeholderBlock(op.ID)
		}
		return &Node{
			Kind:   kind,
			ID:     op.ID,
			Fields: map[string]any{"op": op.Op},
			Slots: map[string]*Node{
				SlotLeft:  b.build(op.Operands[0]),
				SlotRight: b.build(op.Operands[1]),
			},
		}

	case 3:
		if op.Op != "?:" {
			b.warn(op.ID, "unsupported ternary operator %q; block replaced with placeholder", op.Op)
			return placeholderBlock(op.ID)
		}
		return &Node{
			Kind: KindConditional,
			ID:   op.ID,
			Slots: map[string]*Node{
				SlotCondition: b.build(op.Operands[0]),
				SlotThen:      b.build(op.Operands[1]),
				SlotElse:      b.build(op.Operands[2]),
			},
		}
	}

	b.warn(op.ID, "operator %q has unsupported arity %d; block replaced with placeholder", op.Op, len(op.Operands))
	return placeholderBlock(op.ID)
}

// binaryKind maps a binary operator to its block kind
func binaryKind(op string) (string, bool) {
	switch op {
	case "+", "-", "*", "/", "%":
		return KindArithmetic, true
	case "<", "<=", ">", ">=", "==", "!=":
		return KindCompare, true
	case "and", "or":
		return KindLogic, true
	}
	return "", false
}

// placeholderBlock is the visual counterpart of the Constant(0) placeholder
func placeholderBlock(id string) *Node {
	return &Node{Kind: KindNumber, ID: id, Fields: map[string]any{"value": float64(0)}}
}
