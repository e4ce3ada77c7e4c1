package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScope resolves properties and functions from maps. Keys for
// properties are the joined dotted path.
type fixedScope struct {
	props map[string]Value
	funcs map[string]func(args []Value) Value
}

func (s fixedScope) ResolveProperty(path []string) (Value, bool) {
	key := ""
	for i, part := range path {
		if i > 0 {
			key += "."
		}
		key += part
	}
	v, ok := s.props[key]
	return v, ok
}

func (s fixedScope) CallFunction(name string, args []Value) (Value, bool) {
	fn, ok := s.funcs[name]
	if !ok {
		return nil, false
	}
	return fn(args), true
}

func testScope() fixedScope {
	return fixedScope{
		props: map[string]Value{
			"player.hand.count":       Int(3),
			"player.score_pile.count": Int(5),
			"card.age":                Int(2),
			"card.color":              Str("blue"),
			"returned_age":            Int(4),
			"choice_made":             Bool(true),
		},
		funcs: map[string]func(args []Value) Value{
			"count": func(args []Value) Value {
				if len(args) == 1 {
					if l, ok := args[0].(List); ok {
						return Int(len(l))
					}
				}
				return Int(0)
			},
			"has_icon": func(args []Value) Value {
				return Bool(len(args) == 1 && Equal(args[0], Str("castle")))
			},
		},
	}
}

func eval(t *testing.T, src string) Value {
	t.Helper()
	node, err := Parse(src)
	require.NoError(t, err)
	return Eval(node, testScope())
}

func TestEval_Comparisons(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"player.score_pile.count > player.hand.count", true},
		{"player.hand.count >= 3", true},
		{"player.hand.count < 3", false},
		{"card.color == 'blue'", true},
		{"card.color != 'blue'", false},
		{"card.age <= 1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, Bool(tt.want), eval(t, tt.src), tt.src)
	}
}

func TestEval_BooleanCombinators(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"card.age == 2 and card.color == 'blue'", true},
		{"card.age == 9 or card.color == 'blue'", true},
		{"not choice_made", false},
		{"card.age == 9 and card.color == 'blue'", false},
	}
	for _, tt := range tests {
		assert.Equal(t, Bool(tt.want), eval(t, tt.src), tt.src)
	}
}

func TestEval_Arithmetic(t *testing.T) {
	assert.Equal(t, Int(5), eval(t, "returned_age + 1"))
	assert.Equal(t, Int(1), eval(t, "card.age - 1"))
	assert.Equal(t, Int(0), eval(t, "10 - 4 - 6"))
}

func TestEval_FunctionCalls(t *testing.T) {
	assert.Equal(t, Bool(true), eval(t, "has_icon('castle')"))
	assert.Equal(t, Bool(false), eval(t, "has_icon('crown')"))
}

func TestEval_UnresolvablePropertyIsNull(t *testing.T) {
	v := eval(t, "player.nonexistent.thing")
	assert.Equal(t, Null{}, v)
}

// Spec-authoring mistakes degrade to false/zero instead of crashing
// resolution. A missing property compared against a number is simply
// false; adding a string yields zero.
func TestEval_SoftFailureSemantics(t *testing.T) {
	assert.Equal(t, Bool(false), eval(t, "player.nonexistent > 2"))
	assert.Equal(t, Bool(false), eval(t, "card.color > 2"))
	assert.Equal(t, Int(1), eval(t, "card.color + 1"))
	assert.Equal(t, Bool(false), eval(t, "unknown_fn_xyz(1)"))
}

func TestEval_EqualityAcrossKinds(t *testing.T) {
	assert.Equal(t, Bool(false), eval(t, "card.age == 'blue'"))
	assert.Equal(t, Bool(true), eval(t, "card.age != 'blue'"))
}

func TestEvalCondition_Coercion(t *testing.T) {
	scope := testScope()
	assert.True(t, EvalCondition(MustParse("player.hand.count"), scope))
	assert.False(t, EvalCondition(MustParse("player.hand.count - 3"), scope))
	assert.False(t, EvalCondition(nil, scope))
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(Null{}))
	assert.False(t, Truthy(Int(0)))
	assert.True(t, Truthy(Int(-1)))
	assert.False(t, Truthy(Str("")))
	assert.True(t, Truthy(Str("x")))
	assert.False(t, Truthy(List{}))
	assert.True(t, Truthy(List{Int(1)}))
}

func TestContains(t *testing.T) {
	list := List{Str("a"), Str("b")}
	assert.True(t, Contains(list, Str("a")))
	assert.False(t, Contains(list, Str("c")))
	assert.False(t, Contains(Str("a"), Str("a")))
}
