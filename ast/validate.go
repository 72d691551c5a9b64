package ast

import (
	"fmt"
)

// ValidationResult reports whether a tree is well-formed, with one message
// per violation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate checks the structural invariants of an intermediate tree:
// operators and calls are known and fully populated, no operand or argument
// is nil, symbols and calls carry names. It never panics on malformed input.
func Validate(n Node) ValidationResult {
	var errs []string
	if n == nil {
		return ValidationResult{Valid: false, Errors: []string{"empty expression"}}
	}
	validateNode(n, &errs)
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validateNode(n Node, errs *[]string) {
	switch t := n.(type) {
	case *Constant:
		// Any value is fine

	case *Symbol:
		if t.Name == "" {
			*errs = append(*errs, "symbol with empty name")
		}

	case *Operator:
		if len(t.Operands) == 0 {
			*errs = append(*errs, fmt.Sprintf("operator %q with no operands", t.Op))
			return
		}
		if !KnownOperator(t.Op, len(t.Operands)) {
			*errs = append(*errs, fmt.Sprintf("unknown operator %q with arity %d", t.Op, len(t.Operands)))
		}
		for i, operand := range t.Operands {
			if operand == nil {
				*errs = append(*errs, fmt.Sprintf("operator %q missing operand %d", t.Op, i))
				continue
			}
			validateNode(operand, errs)
		}

	case *FunctionCall:
		if t.Name == "" {
			*errs = append(*errs, "function call with empty name")
		}
		if len(t.Args) == 0 {
			*errs = append(*errs, fmt.Sprintf("function call %q with no arguments", t.Name))
			return
		}
		for i, arg := range t.Args {
			if arg == nil {
				*errs = append(*errs, fmt.Sprintf("function call %q missing argument %d", t.Name, i))
				continue
			}
			validateNode(arg, errs)
		}

	case *Grouping:
		if t.Content == nil {
			*errs = append(*errs, "grouping with no content")
			return
		}
		validateNode(t.Content, errs)
	}
}
