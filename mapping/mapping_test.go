package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/duet/ast"
	"github.com/teranos/duet/parser"
)

func parse(t *testing.T, source string) ast.Node {
	t.Helper()
	node, err := parser.Parse(source)
	require.NoError(t, err)
	return node
}

// spanText returns the text a node's span covers
func spanText(t *testing.T, m *Mapping, id string) string {
	t.Helper()
	span, ok := m.FindPositionByElement(id)
	require.True(t, ok)
	return m.Text()[span.Start:span.End]
}

func TestCreateMapsEveryNode(t *testing.T) {
	text := "1 + 2 * 3"
	tree := parse(t, text)
	m := Create(tree, text)

	count := 0
	ast.Walk(tree, func(n ast.Node) bool {
		count++
		_, ok := m.FindPositionByElement(n.NodeID())
		assert.True(t, ok, "node %s unmapped", n.NodeID())
		return true
	})
	assert.Equal(t, count, m.Len())
}

func TestSpansMatchSubexpressions(t *testing.T) {
	text := "1 + 2 * 3"
	tree := parse(t, text)
	m := Create(tree, text)

	plus := tree.(*ast.Operator)
	one := plus.Operands[0]
	times := plus.Operands[1].(*ast.Operator)

	assert.Equal(t, "1", spanText(t, m, one.NodeID()))
	assert.Equal(t, "2 * 3", spanText(t, m, times.NodeID()))
	assert.Equal(t, text, spanText(t, m, plus.NodeID()))

	oneSpan, _ := m.FindPositionByElement(one.NodeID())
	assert.Equal(t, Span{Start: 0, End: 1}, oneSpan)
	timesSpan, _ := m.FindPositionByElement(times.NodeID())
	assert.Equal(t, Span{Start: 4, End: 9}, timesSpan)
}

func TestPointQueryReturnsInnermost(t *testing.T) {
	text := "1 + 2 * 3"
	tree := parse(t, text)
	m := Create(tree, text)

	plus := tree.(*ast.Operator)
	times := plus.Operands[1].(*ast.Operator)
	two := times.Operands[0]

	// Offset 4 is "2": innermost is the constant, not the product or sum
	id, ok := m.FindElementByPosition(4)
	require.True(t, ok)
	assert.Equal(t, two.NodeID(), id)

	// Offset 1 is the space before "+": only the sum covers it
	id, ok = m.FindElementByPosition(1)
	require.True(t, ok)
	assert.Equal(t, plus.NodeID(), id)

	_, ok = m.FindElementByPosition(99)
	assert.False(t, ok)
	_, ok = m.FindElementByPosition(-1)
	assert.False(t, ok)
}

func TestDuplicateTokensMapLeftToRight(t *testing.T) {
	text := "a + a + a"
	tree := parse(t, text)
	m := Create(tree, text)

	outer := tree.(*ast.Operator)
	inner := outer.Operands[0].(*ast.Operator)

	first, _ := m.FindPositionByElement(inner.Operands[0].NodeID())
	second, _ := m.FindPositionByElement(inner.Operands[1].NodeID())
	third, _ := m.FindPositionByElement(outer.Operands[1].NodeID())

	assert.Equal(t, Span{Start: 0, End: 1}, first)
	assert.Equal(t, Span{Start: 4, End: 5}, second)
	assert.Equal(t, Span{Start: 8, End: 9}, third)
}

func TestOperatorSpellingVariants(t *testing.T) {
	// The tree stores canonical "and"; the text spells it "&&"
	text := "a && b"
	tree := parse(t, text)
	m := Create(tree, text)

	and := tree.(*ast.Operator)
	assert.Equal(t, "and", and.Op)
	assert.Equal(t, text, spanText(t, m, and.NodeID()))
	assert.Equal(t, "a", spanText(t, m, and.Operands[0].NodeID()))
	assert.Equal(t, "b", spanText(t, m, and.Operands[1].NodeID()))
}

func TestGroupingSpanIncludesParens(t *testing.T) {
	text := "(1 + 2) * 3"
	tree := parse(t, text)
	m := Create(tree, text)

	times := tree.(*ast.Operator)
	group := times.Operands[0].(*ast.Grouping)
	sum := group.Content

	assert.Equal(t, "(1 + 2)", spanText(t, m, group.NodeID()))
	assert.Equal(t, "1 + 2", spanText(t, m, sum.NodeID()))
}

func TestCallSpanIncludesArgumentList(t *testing.T) {
	text := "max(a + b, 2)"
	tree := parse(t, text)
	m := Create(tree, text)

	call := tree.(*ast.FunctionCall)
	assert.Equal(t, text, spanText(t, m, call.NodeID()))
	assert.Equal(t, "a + b", spanText(t, m, call.Args[0].NodeID()))
	assert.Equal(t, "2", spanText(t, m, call.Args[1].NodeID()))
}

func TestTernarySpan(t *testing.T) {
	text := "a > 1 ? b : c"
	tree := parse(t, text)
	m := Create(tree, text)

	cond := tree.(*ast.Operator)
	require.Equal(t, "?:", cond.Op)
	assert.Equal(t, text, spanText(t, m, cond.NodeID()))
	assert.Equal(t, "a > 1", spanText(t, m, cond.Operands[0].NodeID()))
	assert.Equal(t, "b", spanText(t, m, cond.Operands[1].NodeID()))
	assert.Equal(t, "c", spanText(t, m, cond.Operands[2].NodeID()))
}

func TestContainmentInvariant(t *testing.T) {
	// Every child span nests inside its parent span
	text := `price * (qty + 1) >= 100 and name == "x"`
	tree := parse(t, text)
	m := Create(tree, text)

	var check func(n ast.Node)
	check = func(n ast.Node) {
		parent, ok := m.FindPositionByElement(n.NodeID())
		require.True(t, ok)
		for _, child := range ast.Children(n) {
			if child == nil {
				continue
			}
			cs, ok := m.FindPositionByElement(child.NodeID())
			require.True(t, ok)
			if cs.Width() > 0 {
				assert.GreaterOrEqual(t, cs.Start, parent.Start)
				assert.LessOrEqual(t, cs.End, parent.End)
			}
			check(child)
		}
	}
	check(tree)
}

func TestUnlocatableTokenGetsDegenerateSpan(t *testing.T) {
	// A hand-built tree mapped over text that does not contain its tokens
	tree := ast.NewOperator("+", ast.NewSymbol("missing"), ast.NewConstant(ast.Number(5)))
	m := Create(tree, "something else")

	span, ok := m.FindPositionByElement(tree.Operands[0].NodeID())
	require.True(t, ok)
	assert.Equal(t, 0, span.Width())
}

func TestWordBoundaries(t *testing.T) {
	// The variable "a" must not match inside "max" or "banana"
	text := "max(banana, a)"
	tree := parse(t, text)
	m := Create(tree, text)

	call := tree.(*ast.FunctionCall)
	a := call.Args[1]
	span, _ := m.FindPositionByElement(a.NodeID())
	assert.Equal(t, Span{Start: 12, End: 13}, span)
}

func TestUpdateRebuilds(t *testing.T) {
	text := "1 + 2"
	tree := parse(t, text)
	m := Create(tree, text)

	newText := "10 + 20"
	newTree := parse(t, newText)
	m.Update(newTree, newText)

	assert.Equal(t, newText, m.Text())
	sum := newTree.(*ast.Operator)
	assert.Equal(t, "10", spanText(t, m, sum.Operands[0].NodeID()))
	// The old tree's identities are gone
	_, ok := m.FindPositionByElement(tree.NodeID())
	assert.False(t, ok)
}

func TestEmptyTree(t *testing.T) {
	m := Create(nil, "")
	assert.Equal(t, 0, m.Len())
	_, ok := m.FindElementByPosition(0)
	assert.False(t, ok)
}
