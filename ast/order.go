package ast

// Precedence classes ("orders") used by code generation. Lower numbers bind
// tighter. A child expression is parenthesized only when its own order is
// numerically greater than what its context admits.
const (
	OrderAtomic         = 0 // constants, symbols, calls, parenthesized groups
	OrderUnary          = 1 // unary minus
	OrderMultiplicative = 2 // * / %
	OrderAdditive       = 3 // + -
	OrderRelational     = 4 // < <= > >=
	OrderEquality       = 5 // == !=
	OrderLogicalNot     = 6 // not
	OrderLogicalAnd     = 7 // and
	OrderLogicalOr      = 8 // or
	OrderConditional    = 9 // cond ? a : b
)

// OrderMax is the loosest order; a child allowed OrderMax never needs parens.
const OrderMax = OrderConditional

var binaryOrders = map[string]int{
	"*":   OrderMultiplicative,
	"/":   OrderMultiplicative,
	"%":   OrderMultiplicative,
	"+":   OrderAdditive,
	"-":   OrderAdditive,
	"<":   OrderRelational,
	"<=":  OrderRelational,
	">":   OrderRelational,
	">=":  OrderRelational,
	"==":  OrderEquality,
	"!=":  OrderEquality,
	"and": OrderLogicalAnd,
	"or":  OrderLogicalOr,
}

// OperatorOrder returns the precedence class for an operator with the given
// arity, and whether the combination is known.
func OperatorOrder(op string, arity int) (int, bool) {
	switch arity {
	case 1:
		switch op {
		case "-":
			return OrderUnary, true
		case "not":
			return OrderLogicalNot, true
		}
	case 2:
		if order, ok := binaryOrders[op]; ok {
			return order, true
		}
	case 3:
		if op == "?:" {
			return OrderConditional, true
		}
	}
	return 0, false
}

// KnownOperator reports whether op/arity has a conversion and rendering rule
func KnownOperator(op string, arity int) bool {
	_, ok := OperatorOrder(op, arity)
	return ok
}
