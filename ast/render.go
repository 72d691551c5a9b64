package ast

import (
	"strconv"
	"strings"
)

// Render generates source text for the tree, inserting parentheses only
// where precedence requires them. The result reparses to an equivalent tree;
// it is not guaranteed to be byte-identical to the text the tree came from.
func Render(n Node) string {
	text, _ := RenderWarn(n)
	return text
}

// RenderWarn is Render plus the warnings produced for structural mismatches
// (unknown operators). Mismatched nodes degrade to a "0" placeholder; the
// function never fails.
func RenderWarn(n Node) (string, []string) {
	if n == nil {
		return "", nil
	}
	var sb strings.Builder
	var warnings []string
	renderAt(&sb, n, OrderMax, &warnings)
	return sb.String(), warnings
}

// renderAt writes n, wrapping it in parentheses when its order exceeds the
// loosest order the context admits.
func renderAt(sb *strings.Builder, n Node, allowed int, warnings *[]string) {
	if n == nil {
		sb.WriteString("0")
		*warnings = append(*warnings, "nil node rendered as placeholder")
		return
	}
	if n.Order() > allowed {
		sb.WriteString("(")
		renderNode(sb, n, warnings)
		sb.WriteString(")")
		return
	}
	renderNode(sb, n, warnings)
}

func renderNode(sb *strings.Builder, n Node, warnings *[]string) {
	switch t := n.(type) {
	case *Constant:
		sb.WriteString(RenderConstant(t))

	case *Symbol:
		sb.WriteString(t.Name)

	case *Grouping:
		sb.WriteString("(")
		renderAt(sb, t.Content, OrderMax, warnings)
		sb.WriteString(")")

	case *FunctionCall:
		sb.WriteString(t.Name)
		sb.WriteString("(")
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			renderAt(sb, arg, OrderMax, warnings)
		}
		sb.WriteString(")")

	case *Operator:
		renderOperator(sb, t, warnings)
	}
}

func renderOperator(sb *strings.Builder, op *Operator, warnings *[]string) {
	order, known := OperatorOrder(op.Op, len(op.Operands))
	if !known {
		sb.WriteString("0")
		*warnings = append(*warnings, "unknown operator "+strconv.Quote(op.Op)+" rendered as placeholder")
		return
	}

	switch len(op.Operands) {
	case 1:
		if op.Op == "not" {
			sb.WriteString("not ")
		} else {
			sb.WriteString(op.Op)
		}
		// Unary operators nest without parens: not not x, --x
		renderAt(sb, op.Operands[0], order, warnings)

	case 2:
		// Left-associative: the left child may share the operator's order,
		// the right child must bind strictly tighter.
		renderAt(sb, op.Operands[0], order, warnings)
		sb.WriteString(" ")
		sb.WriteString(op.Op)
		sb.WriteString(" ")
		renderAt(sb, op.Operands[1], order-1, warnings)

	case 3:
		// cond ? then : else, right-associative in the else branch
		renderAt(sb, op.Operands[0], order-1, warnings)
		sb.WriteString(" ? ")
		renderAt(sb, op.Operands[1], order-1, warnings)
		sb.WriteString(" : ")
		renderAt(sb, op.Operands[2], order, warnings)
	}
}

// RenderConstant renders a single constant literal. The parsed lexeme is
// preferred when present so user spelling (e.g. "2.0") survives a round trip.
func RenderConstant(c *Constant) string {
	if c.Raw != "" {
		return c.Raw
	}
	switch c.Value.Kind {
	case ValueNumber:
		return strconv.FormatFloat(c.Value.Num, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(c.Value.Str)
	case ValueBool:
		if c.Value.Bool {
			return "true"
		}
		return "false"
	}
	return "0"
}
