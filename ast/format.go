package ast

// Format normalizes a tree for code generation: groupings whose parentheses
// are redundant in their context are elided, everything else is preserved.
// The input tree is not mutated; shared leaves are reused.
func Format(n Node) Node {
	if n == nil {
		return nil
	}
	return formatAt(n, OrderMax)
}

// formatAt rebuilds n given the loosest order its context admits. A grouping
// is redundant when its content would not need parentheses anyway.
func formatAt(n Node, allowed int) Node {
	switch t := n.(type) {
	case *Constant, *Symbol:
		return n

	case *Grouping:
		if t.Content == nil {
			return n
		}
		content := formatAt(t.Content, allowed)
		if content.Order() <= allowed {
			return content
		}
		return &Grouping{ID: t.ID, Content: content}

	case *FunctionCall:
		args := make([]Node, len(t.Args))
		for i, arg := range t.Args {
			args[i] = formatAt(arg, OrderMax)
		}
		return &FunctionCall{ID: t.ID, Name: t.Name, Args: args}

	case *Operator:
		order, known := OperatorOrder(t.Op, len(t.Operands))
		if !known {
			return n
		}
		operands := make([]Node, len(t.Operands))
		switch len(t.Operands) {
		case 1:
			operands[0] = formatAt(t.Operands[0], order)
		case 2:
			operands[0] = formatAt(t.Operands[0], order)
			operands[1] = formatAt(t.Operands[1], order-1)
		case 3:
			operands[0] = formatAt(t.Operands[0], order-1)
			operands[1] = formatAt(t.Operands[1], order-1)
			operands[2] = formatAt(t.Operands[2], order)
		}
		return &Operator{ID: t.ID, Op: t.Op, Operands: operands}
	}
	return n
}
