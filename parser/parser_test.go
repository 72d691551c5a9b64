package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/duet/ast"
)

func mustParse(t *testing.T, source string) ast.Node {
	t.Helper()
	node, err := Parse(source)
	require.NoError(t, err, "parse %q", source)
	return node
}

func TestParseRendersBack(t *testing.T) {
	// Canonical inputs render back to themselves
	sources := []string{
		"1",
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"a - b - c",
		"a - (b - c)",
		"-x",
		"not a and b",
		"a and b or c",
		"age > 18 and is_member",
		"x >= 0 and x < 10",
		"a == b != c",
		`name == "alice"`,
		"max(a + b, 2)",
		"f(g(x))",
		"a ? b : c ? d : e",
		"x % 2 == 0",
		"true",
		"false",
		"2.5 * qty",
	}
	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			assert.Equal(t, source, ast.Render(mustParse(t, source)))
		})
	}
}

func TestParseStructure(t *testing.T) {
	node := mustParse(t, "1 + 2 * 3")

	plus, ok := node.(*ast.Operator)
	require.True(t, ok)
	assert.Equal(t, "+", plus.Op)
	require.Len(t, plus.Operands, 2)

	left, ok := plus.Operands[0].(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, float64(1), left.Value.Num)
	assert.Equal(t, "1", left.Raw)

	times, ok := plus.Operands[1].(*ast.Operator)
	require.True(t, ok)
	assert.Equal(t, "*", times.Op)
}

func TestParseCanonicalizesOperatorSpellings(t *testing.T) {
	// && || ! parse to the same trees as and or not
	tests := []struct {
		symbolic string
		word     string
	}{
		{"a && b", "a and b"},
		{"a || b", "a or b"},
		{"!a", "not a"},
		{"!(a && b) || c", "not (a and b) or c"},
	}
	for _, tt := range tests {
		t.Run(tt.symbolic, func(t *testing.T) {
			assert.True(t, ast.Equal(mustParse(t, tt.symbolic), mustParse(t, tt.word)))
			// Rendering always emits the word spelling
			assert.Equal(t, tt.word, ast.Render(mustParse(t, tt.symbolic)))
		})
	}
}

func TestParseNotBindsLooserThanComparison(t *testing.T) {
	node := mustParse(t, "not a > b")
	not, ok := node.(*ast.Operator)
	require.True(t, ok)
	assert.Equal(t, "not", not.Op)
	require.Len(t, not.Operands, 1)

	cmp, ok := not.Operands[0].(*ast.Operator)
	require.True(t, ok)
	assert.Equal(t, ">", cmp.Op)
}

func TestParseGroupingIsPreserved(t *testing.T) {
	node := mustParse(t, "(1 + 2)")
	_, ok := node.(*ast.Grouping)
	assert.True(t, ok)

	// Redundant user parens survive the parse and the rendering
	assert.Equal(t, "(1 + 2)", ast.Render(node))
}

func TestParseStringEscapes(t *testing.T) {
	node := mustParse(t, `"a\"b"`)
	c, ok := node.(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, ast.ValueString, c.Value.Kind)
	assert.Equal(t, `a"b`, c.Value.Str)
	assert.Equal(t, `"a\"b"`, c.Raw)
}

func TestParseNumberSpellingsSurvive(t *testing.T) {
	node := mustParse(t, "2.50")
	c, ok := node.(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, 2.5, c.Value.Num)
	assert.Equal(t, "2.50", c.Raw)
	assert.Equal(t, "2.50", ast.Render(node))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ErrorKind
	}{
		{"empty input", "", ErrorKindSyntax},
		{"dangling operator", "1 +", ErrorKindSyntax},
		{"unclosed paren", "(1 + 2", ErrorKindSyntax},
		{"trailing input", "1 2", ErrorKindSyntax},
		{"missing colon", "a ? b", ErrorKindSyntax},
		{"unterminated string", `"abc`, ErrorKindSyntax},
		{"stray character", "1 @ 2", ErrorKindSyntax},
		{"bad argument list", "f(a b)", ErrorKindSyntax},
		{"zero-argument call", "f()", ErrorKindSemantic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.kind, parseErr.Kind)
			assert.NotEmpty(t, parseErr.Message)
		})
	}
}

func TestParseErrorCarriesRange(t *testing.T) {
	_, err := Parse("1 + + 2")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.NotNil(t, parseErr.Range)
	assert.Equal(t, 4, parseErr.Range.Start.Offset)
	assert.Equal(t, 1, parseErr.Range.Start.Line)
	assert.Equal(t, 4, parseErr.Range.Start.Character)
}

func TestParseErrorFormats(t *testing.T) {
	_, err := Parse("(1 + 2")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	plain := parseErr.FormatError(ErrorContextPlain)
	assert.Contains(t, plain, "expected ')'")
	// The terminal format carries the same message, with decoration
	assert.Contains(t, parseErr.FormatError(ErrorContextTerminal), "expected ')'")
}

func TestParseExtractsFunctionsAndVariables(t *testing.T) {
	tree := mustParse(t, `equalText(name, "John") and age > 18`)

	assert.Equal(t, []string{"equalText"}, ast.Functions(tree))
	assert.Equal(t, []string{"age", "name"}, ast.Variables(tree))
}

func TestParseWhitespaceTolerance(t *testing.T) {
	a := mustParse(t, "1+2*3")
	b := mustParse(t, "  1 +  2   * 3 ")
	assert.True(t, ast.Equal(a, b))
}

func TestParseDeepNesting(t *testing.T) {
	source := "((((((((((1))))))))))"
	node := mustParse(t, source)
	assert.Equal(t, source, ast.Render(node))

	stripped := ast.StripGrouping(node)
	c, ok := stripped.(*ast.Constant)
	require.True(t, ok)
	assert.Equal(t, float64(1), c.Value.Num)
}
