// Package typehint guesses the value type of a variable from its name.
//
// The guess is a heuristic, not a contract: it exists so the visual editor
// can seed a sensible input widget for a symbol block. Callers must treat
// the result as advisory and replaceable; real type inference can be swapped
// in behind the Policy interface without touching the converters.
package typehint

import "strings"

// Hint is the guessed value type of a variable.
type Hint string

const (
	HintNumber  Hint = "number"
	HintString  Hint = "string"
	HintBoolean Hint = "boolean"
	HintUnknown Hint = "unknown"
)

// Policy maps a variable name to a type hint.
type Policy interface {
	Hint(name string) Hint
}

// NamePolicy guesses from prefix/suffix/substring matches on the variable
// name. Rule order: boolean prefixes, numeric affixes, string affixes.
type NamePolicy struct {
	BooleanPrefixes []string
	NumberAffixes   []string
	StringAffixes   []string
}

// Default returns the stock name-matching policy.
func Default() Policy {
	return &NamePolicy{
		BooleanPrefixes: []string{"is_", "has_", "can_", "should_"},
		NumberAffixes:   []string{"count", "num", "age", "amount", "total", "price", "qty", "size", "score"},
		StringAffixes:   []string{"name", "text", "title", "label", "desc", "email", "id"},
	}
}

// Hint implements Policy
func (p *NamePolicy) Hint(name string) Hint {
	lower := strings.ToLower(name)

	for _, prefix := range p.BooleanPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return HintBoolean
		}
	}
	for _, affix := range p.NumberAffixes {
		if strings.HasPrefix(lower, affix) || strings.HasSuffix(lower, affix) {
			return HintNumber
		}
	}
	for _, affix := range p.StringAffixes {
		if strings.Contains(lower, affix) {
			return HintString
		}
	}
	return HintUnknown
}

// Fixed is a Policy that returns the same hint for every name. Useful in
// tests and for hosts that disable guessing.
type Fixed Hint

// Hint implements Policy
func (f Fixed) Hint(string) Hint { return Hint(f) }
