package ast

import "sort"

// Functions returns the sorted set of function names called anywhere in the
// tree.
func Functions(n Node) []string {
	seen := map[string]struct{}{}
	Walk(n, func(node Node) bool {
		if call, ok := node.(*FunctionCall); ok && call.Name != "" {
			seen[call.Name] = struct{}{}
		}
		return true
	})
	return sortedKeys(seen)
}

// Variables returns the sorted set of symbol names referenced anywhere in
// the tree.
func Variables(n Node) []string {
	seen := map[string]struct{}{}
	Walk(n, func(node Node) bool {
		if sym, ok := node.(*Symbol); ok && sym.Name != "" {
			seen[sym.Name] = struct{}{}
		}
		return true
	})
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
