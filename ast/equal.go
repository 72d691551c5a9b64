package ast

// Equal reports structural equality of two trees, ignoring node identity
// and constant lexemes (values are compared, not spellings).
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case *Constant:
		tb, ok := b.(*Constant)
		return ok && valueEqual(ta.Value, tb.Value)
	case *Symbol:
		tb, ok := b.(*Symbol)
		return ok && ta.Name == tb.Name
	case *Operator:
		tb, ok := b.(*Operator)
		if !ok || ta.Op != tb.Op || len(ta.Operands) != len(tb.Operands) {
			return false
		}
		for i := range ta.Operands {
			if !Equal(ta.Operands[i], tb.Operands[i]) {
				return false
			}
		}
		return true
	case *FunctionCall:
		tb, ok := b.(*FunctionCall)
		if !ok || ta.Name != tb.Name || len(ta.Args) != len(tb.Args) {
			return false
		}
		for i := range ta.Args {
			if !Equal(ta.Args[i], tb.Args[i]) {
				return false
			}
		}
		return true
	case *Grouping:
		tb, ok := b.(*Grouping)
		return ok && Equal(ta.Content, tb.Content)
	}
	return false
}

// EqualModuloGrouping is Equal after eliding every grouping wrapper on both
// sides. This is the equivalence used by the round-trip properties, since
// groupings only preserve user-typed parentheses.
func EqualModuloGrouping(a, b Node) bool {
	return Equal(StripGrouping(a), StripGrouping(b))
}

// StripGrouping returns a copy of the tree with every Grouping node elided
// (its content inlined).
func StripGrouping(n Node) Node {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *Constant, *Symbol:
		return n
	case *Grouping:
		return StripGrouping(t.Content)
	case *Operator:
		operands := make([]Node, len(t.Operands))
		for i, operand := range t.Operands {
			operands[i] = StripGrouping(operand)
		}
		return &Operator{ID: t.ID, Op: t.Op, Operands: operands}
	case *FunctionCall:
		args := make([]Node, len(t.Args))
		for i, arg := range t.Args {
			args[i] = StripGrouping(arg)
		}
		return &FunctionCall{ID: t.ID, Name: t.Name, Args: args}
	}
	return n
}

func valueEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValueNumber:
		return a.Num == b.Num
	case ValueString:
		return a.Str == b.Str
	case ValueBool:
		return a.Bool == b.Bool
	}
	return false
}
