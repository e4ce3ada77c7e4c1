package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Literals(t *testing.T) {
	tests := []struct {
		src  string
		want Value
	}{
		{"3", Int(3)},
		{"-4", Int(-4)},
		{"'red'", Str("red")},
		{`"blue"`, Str("blue")},
		{"true", Bool(true)},
		{"FALSE", Bool(false)},
	}
	for _, tt := range tests {
		node, err := Parse(tt.src)
		require.NoError(t, err, tt.src)
		lit, ok := node.(Literal)
		require.True(t, ok, "expected literal for %q, got %T", tt.src, node)
		assert.Equal(t, tt.want, lit.Value, tt.src)
	}
}

func TestParse_PropertyPath(t *testing.T) {
	node, err := Parse("player.score_pile.count")
	require.NoError(t, err)
	assert.Equal(t, Property{Path: []string{"player", "score_pile", "count"}}, node)
}

func TestParse_Comparison(t *testing.T) {
	node, err := Parse("player.score_pile.count > player.hand.count")
	require.NoError(t, err)
	cmp, ok := node.(Compare)
	require.True(t, ok)
	assert.Equal(t, OpGt, cmp.Op)
	assert.Equal(t, Property{Path: []string{"player", "score_pile", "count"}}, cmp.Left)
	assert.Equal(t, Property{Path: []string{"player", "hand", "count"}}, cmp.Right)
}

func TestParse_BooleanPrecedence(t *testing.T) {
	// "a or b and c" groups as "a or (b and c)".
	node, err := Parse("a or b and c")
	require.NoError(t, err)
	or, ok := node.(Or)
	require.True(t, ok)
	require.Len(t, or.Operands, 2)
	assert.Equal(t, Property{Path: []string{"a"}}, or.Operands[0])
	and, ok := or.Operands[1].(And)
	require.True(t, ok)
	require.Len(t, and.Operands, 2)
}

func TestParse_NotBindsTighterThanAnd(t *testing.T) {
	node, err := Parse("not a and b")
	require.NoError(t, err)
	and, ok := node.(And)
	require.True(t, ok)
	_, ok = and.Operands[0].(Not)
	assert.True(t, ok)
}

func TestParse_CaseInsensitiveKeywords(t *testing.T) {
	node, err := Parse("a AND NOT b OR c")
	require.NoError(t, err)
	_, ok := node.(Or)
	assert.True(t, ok)
}

func TestParse_FunctionCall(t *testing.T) {
	node, err := Parse("has_icon('castle')")
	require.NoError(t, err)
	call, ok := node.(Call)
	require.True(t, ok)
	assert.Equal(t, "has_icon", call.Fn)
	require.Len(t, call.Args, 1)
	assert.Equal(t, Literal{Value: Str("castle")}, call.Args[0])
}

func TestParse_CallWithMultipleArgs(t *testing.T) {
	node, err := Parse("has(player.hand, 'archery')")
	require.NoError(t, err)
	call, ok := node.(Call)
	require.True(t, ok)
	assert.Equal(t, "has", call.Fn)
	assert.Len(t, call.Args, 2)
}

func TestParse_ArithmeticLeftToRight(t *testing.T) {
	// "1 + 2 - 3" groups as "(1 + 2) - 3".
	node, err := Parse("1 + 2 - 3")
	require.NoError(t, err)
	sub, ok := node.(Sub)
	require.True(t, ok)
	_, ok = sub.Left.(Add)
	assert.True(t, ok)
}

func TestParse_DrawOneHigher(t *testing.T) {
	node, err := Parse("returned_age + 1")
	require.NoError(t, err)
	add, ok := node.(Add)
	require.True(t, ok)
	assert.Equal(t, Property{Path: []string{"returned_age"}}, add.Left)
	assert.Equal(t, Literal{Value: Int(1)}, add.Right)
}

func TestParse_Parens(t *testing.T) {
	node, err := Parse("(a or b) and c")
	require.NoError(t, err)
	_, ok := node.(And)
	assert.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		"",
		"player.hand >",
		"count(",
		"'unterminated",
		"a ? b",
		"1 2",
	} {
		_, err := Parse(src)
		assert.Error(t, err, "expected parse error for %q", src)
	}
}

func TestFromJSONAST_Compare(t *testing.T) {
	node, err := FromJSONAST([]byte(`{
		"op": "compare",
		"left": {"op": "property", "path": "player.hand.count"},
		"right": {"op": "literal", "value": 2},
		"operator": ">="
	}`))
	require.NoError(t, err)
	cmp, ok := node.(Compare)
	require.True(t, ok)
	assert.Equal(t, OpGe, cmp.Op)
	assert.Equal(t, Property{Path: []string{"player", "hand", "count"}}, cmp.Left)
	assert.Equal(t, Literal{Value: Int(2)}, cmp.Right)
}

func TestFromJSONAST_NestedBooleans(t *testing.T) {
	node, err := FromJSONAST([]byte(`{
		"op": "and",
		"operands": [
			{"op": "call", "function": "has_icon", "args": [{"op": "literal", "value": "castle"}]},
			{"op": "not", "operand": {"op": "property", "path": "choice_made"}}
		]
	}`))
	require.NoError(t, err)
	and, ok := node.(And)
	require.True(t, ok)
	require.Len(t, and.Operands, 2)
}

func TestFromJSONAST_TextualOperand(t *testing.T) {
	// String operands inside an AST are textual sub-expressions.
	node, err := FromJSONAST([]byte(`{"op": "add", "left": "drawn_card.age", "right": 1}`))
	require.NoError(t, err)
	add, ok := node.(Add)
	require.True(t, ok)
	assert.Equal(t, Property{Path: []string{"drawn_card", "age"}}, add.Left)
}

func TestFromJSONAST_RejectsFloats(t *testing.T) {
	_, err := FromJSONAST([]byte(`{"op": "literal", "value": 1.5}`))
	assert.Error(t, err)
}

func TestFromJSONAST_UnknownOp(t *testing.T) {
	_, err := FromJSONAST([]byte(`{"op": "multiply", "left": 1, "right": 2}`))
	assert.Error(t, err)
}
