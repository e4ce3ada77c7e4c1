package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/expr"
	"github.com/roach88/splay/internal/state"
)

func testScope(t *testing.T, st *state.GameState) *gameScope {
	t.Helper()
	e := testEngine(t)
	return &gameScope{gs: e.Spec(), st: st, frame: &state.EffectContext{ActingPlayerID: "p1"}}
}

func TestCallFunction_Sum(t *testing.T) {
	scope := testScope(t, newFixture().st)

	v, ok := scope.CallFunction("sum", []expr.Value{expr.List{expr.Int(1), expr.Int(2), expr.Int(4)}})
	require.True(t, ok)
	assert.Equal(t, expr.Int(7), v)

	// A bare int passes through.
	v, ok = scope.CallFunction("sum", []expr.Value{expr.Int(5)})
	require.True(t, ok)
	assert.Equal(t, expr.Int(5), v)

	// Non-int elements contribute nothing.
	v, ok = scope.CallFunction("sum", []expr.Value{expr.List{expr.Str("archery"), expr.Int(3)}})
	require.True(t, ok)
	assert.Equal(t, expr.Int(3), v)
}

func TestCallFunction_Unknown(t *testing.T) {
	scope := testScope(t, newFixture().st)
	_, ok := scope.CallFunction("conjure", nil)
	assert.False(t, ok)
}
