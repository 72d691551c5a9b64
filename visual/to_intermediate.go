package visual

import (
	"fmt"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/errors"
)

// ToIntermediate converts a visual block tree to the intermediate tree.
// The conversion is total: an unknown kind, a missing slot or operand, or a
// cyclic input degrades that subtree to a neutral Constant(0) placeholder
// and a warning instead of aborting the whole tree. A nil input yields nil.
func ToIntermediate(n *Node) (ast.Node, []Warning) {
	if n == nil {
		return nil, nil
	}
	c := &converter{visited: map[*Node]bool{}}
	node := c.convert(n)
	return node, c.warnings
}

type converter struct {
	visited  map[*Node]bool
	warnings []Warning
}

func (c *converter) warn(id, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{NodeID: id, Message: fmt.Sprintf(format, args...)})
}

// placeholder is the neutral substitute for an unconvertible subtree
func placeholder(id string) ast.Node {
	return &ast.Constant{ID: id, Value: ast.Number(0)}
}

func (c *converter) convert(n *Node) ast.Node {
	if n == nil {
		return nil
	}
	if c.visited[n] {
		c.warn(n.ID, "cycle detected at node %q; subtree replaced with placeholder", n.ID)
		return placeholder(ast.NewID())
	}
	c.visited[n] = true

	id := nodeID(n)

	switch n.Kind {
	case KindNumber:
		value, ok := fieldNumber(n, "value")
		if !ok {
			c.warn(id, "number block %q has no value field", id)
		}
		return &ast.Constant{ID: id, Value: ast.Number(value)}

	case KindText:
		value, ok := fieldString(n, "value")
		if !ok {
			c.warn(id, "text block %q has no value field", id)
		}
		return &ast.Constant{ID: id, Value: ast.String(value)}

	case KindBoolean:
		value, ok := fieldBool(n, "value")
		if !ok {
			c.warn(id, "boolean block %q has no value field", id)
		}
		return &ast.Constant{ID: id, Value: ast.Bool(value)}

	case KindVariable:
		name, ok := fieldString(n, "name")
		if !ok || name == "" {
			c.warn(id, "variable block %q has no name; subtree replaced with placeholder", id)
			return placeholder(id)
		}
		return &ast.Symbol{ID: id, Name: name}

	case KindArithmetic, KindCompare, KindLogic:
		op, ok := fieldString(n, "op")
		if !ok || !ast.KnownOperator(op, 2) {
			c.warnings = append(c.warnings, Warning{
				NodeID:  id,
				Message: fmt.Sprintf("%s block %q has unsupported operator %q; subtree replaced with placeholder", n.Kind, id, op),
				Err:     errors.Wrapf(errors.ErrUnknownOperator, "operator %q", op),
			})
			return placeholder(id)
		}
		left := c.convertSlot(n, SlotLeft, id)
		right := c.convertSlot(n, SlotRight, id)
		return &ast.Operator{ID: id, Op: op, Operands: []ast.Node{left, right}}

	case KindNot:
		operand := c.convertSlot(n, SlotOperand, id)
		return &ast.Operator{ID: id, Op: "not", Operands: []ast.Node{operand}}

	case KindNegate:
		operand := c.convertSlot(n, SlotOperand, id)
		return &ast.Operator{ID: id, Op: "-", Operands: []ast.Node{operand}}

	case KindConditional:
		cond := c.convertSlot(n, SlotCondition, id)
		thenBranch := c.convertSlot(n, SlotThen, id)
		elseBranch := c.convertSlot(n, SlotElse, id)
		return &ast.Operator{ID: id, Op: "?:", Operands: []ast.Node{cond, thenBranch, elseBranch}}

	case KindFunctionCall:
		name, ok := fieldString(n, "name")
		if !ok || name == "" {
			c.warn(id, "function call block %q has no name; subtree replaced with placeholder", id)
			return placeholder(id)
		}
		var args []ast.Node
		for i := 0; ; i++ {
			slot := fmt.Sprintf("arg%d", i)
			child, exists := n.Slots[slot]
			if !exists {
				break
			}
			if child == nil {
				c.warn(id, "function call %q has empty argument slot %s", name, slot)
				args = append(args, placeholder(ast.NewID()))
				continue
			}
			args = append(args, c.convert(child))
		}
		if len(args) == 0 {
			c.warn(id, "function call %q has no arguments; subtree replaced with placeholder", name)
			return placeholder(id)
		}
		return &ast.FunctionCall{ID: id, Name: name, Args: args}
	}

	c.warnings = append(c.warnings, Warning{
		NodeID:  id,
		Message: fmt.Sprintf("unknown node kind %q; subtree replaced with placeholder", n.Kind),
		Err:     errors.WrapUnknownNodeKind(n.Kind),
	})
	return placeholder(id)
}

// convertSlot converts a named child, substituting a placeholder when the
// slot is empty
func (c *converter) convertSlot(n *Node, slot, parentID string) ast.Node {
	child := n.Slots[slot]
	if child == nil {
		c.warn(parentID, "%s block %q missing slot %q", n.Kind, parentID, slot)
		return placeholder(ast.NewID())
	}
	return c.convert(child)
}
