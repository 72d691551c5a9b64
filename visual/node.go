// Package visual defines the block tree edited by the structural editor and
// its conversions to and from the intermediate tree. Conversions are total:
// structural mismatches degrade to placeholder nodes with warnings, never a
// failure that could wedge the synchronization controller.
package visual

import (
	"encoding/json"

	"github.com/teranos/duet/ast"
)

// Node is one block of the visual editor's tree. Kind selects the
// conversion rule; Slots are named single-child attachment points (binary
// operands, function arguments); Next chains sibling nodes for list-like
// constructs. A node graph must be a tree: no slot or Next may point back
// toward an ancestor.
type Node struct {
	Kind   string           `json:"kind"`
	ID     string           `json:"id"`
	Fields map[string]any   `json:"fields,omitempty"`
	Slots  map[string]*Node `json:"slots,omitempty"`
	Next   *Node            `json:"next,omitempty"`
}

// The closed catalog of expression block kinds.
const (
	KindNumber       = "number"        // Fields: value (number)
	KindText         = "text"          // Fields: value (string)
	KindBoolean      = "boolean"       // Fields: value (bool)
	KindVariable     = "variable"      // Fields: name, optional value_type hint
	KindArithmetic   = "arithmetic"    // Fields: op in + - * / %; Slots: left, right
	KindCompare      = "compare"       // Fields: op in < <= > >= == !=; Slots: left, right
	KindLogic        = "logic"         // Fields: op in and or; Slots: left, right
	KindNot          = "not"           // Slots: operand
	KindNegate       = "negate"        // Slots: operand
	KindConditional  = "conditional"   // Slots: condition, then, else
	KindFunctionCall = "function_call" // Fields: name; Slots: arg0..argN
)

// Slot names used by the catalog
const (
	SlotLeft      = "left"
	SlotRight     = "right"
	SlotOperand   = "operand"
	SlotCondition = "condition"
	SlotThen      = "then"
	SlotElse      = "else"
)

// Warning reports a structural mismatch that was degraded to a placeholder
// during conversion.
type Warning struct {
	NodeID  string `json:"node_id,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (w Warning) Error() string {
	return w.Message
}

// MarshalJSON round-trips the node through the collaborator editor's wire
// format.
func (n *Node) MarshalJSON() ([]byte, error) {
	type plain Node
	return json.Marshal((*plain)(n))
}

// UnmarshalJSON accepts the collaborator editor's wire format.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	return json.Unmarshal(data, (*plain)(n))
}

// CheckTree verifies that the node graph reachable from n is a tree:
// no slot or Next pointer may revisit a node. Conversion refuses cyclic
// input with a placeholder rather than recursing forever.
func CheckTree(n *Node) bool {
	seen := map[*Node]bool{}
	var walk func(*Node) bool
	walk = func(cur *Node) bool {
		if cur == nil {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, child := range cur.Slots {
			if !walk(child) {
				return false
			}
		}
		return walk(cur.Next)
	}
	return walk(n)
}

// fieldString reads a string field, tolerating absence
func fieldString(n *Node, key string) (string, bool) {
	if n.Fields == nil {
		return "", false
	}
	v, ok := n.Fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// fieldNumber reads a numeric field. JSON decoding produces float64; typed
// construction may use ints.
func fieldNumber(n *Node, key string) (float64, bool) {
	if n.Fields == nil {
		return 0, false
	}
	switch v := n.Fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// fieldBool reads a boolean field
func fieldBool(n *Node, key string) (bool, bool) {
	if n.Fields == nil {
		return false, false
	}
	v, ok := n.Fields[key].(bool)
	return v, ok
}

// nodeID returns the node's identity, minting one when the editor omitted it
func nodeID(n *Node) string {
	if n.ID != "" {
		return n.ID
	}
	return ast.NewID()
}
