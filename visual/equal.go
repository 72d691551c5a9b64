package visual

// Equal reports structural equality of two block trees: same kinds, fields,
// slots and sibling chains. Node identity is ignored, and numeric field
// values compare across int/float64 representations (JSON decoding produces
// float64 where typed construction may use ints).
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind != b.Kind {
		return false
	}
	if !fieldsEqual(a.Fields, b.Fields) {
		return false
	}
	if len(a.Slots) != len(b.Slots) {
		return false
	}
	for name, child := range a.Slots {
		if !Equal(child, b.Slots[name]) {
			return false
		}
	}
	return Equal(a.Next, b.Next)
}

func fieldsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
