package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/splay/internal/expr"
)

func TestFingerprint_StableAcrossClone(t *testing.T) {
	g := twoPlayerState()
	g.PendingEffects = []EffectContext{{
		EffectID:       "writing_dogma_1",
		ActivatorID:    "p1",
		ActingPlayerID: "p1",
		Variables:      map[string]expr.Value{"drawn_card": expr.Str("oars")},
	}}
	assert.Equal(t, Fingerprint(g), Fingerprint(g.Clone()))
}

func TestFingerprint_SensitiveToZoneContents(t *testing.T) {
	g := twoPlayerState()
	fp := Fingerprint(g)

	h := g.Clone()
	h.Players[0].Hand = h.Players[0].Hand[:1]
	assert.NotEqual(t, fp, Fingerprint(h))
}

func TestFingerprint_SensitiveToContinuation(t *testing.T) {
	g := twoPlayerState()
	fp := Fingerprint(g)

	h := g.Clone()
	h.PendingEffects = []EffectContext{{EffectID: "eff", StepIndex: 1}}
	assert.NotEqual(t, fp, Fingerprint(h))

	i := h.Clone()
	i.PendingEffects[0].StepIndex = 2
	assert.NotEqual(t, Fingerprint(h), Fingerprint(i))
}

func TestFingerprint_SensitiveToVariables(t *testing.T) {
	g := twoPlayerState()
	g.PendingEffects = []EffectContext{{EffectID: "eff"}}
	fp := Fingerprint(g)

	h := g.Clone()
	h.PendingEffects[0].SetVariable("returned_age", expr.Int(3))
	assert.NotEqual(t, fp, Fingerprint(h))
}

func TestFingerprint_IgnoresActionHistory(t *testing.T) {
	g := twoPlayerState()
	fp := Fingerprint(g)

	h := g.Clone()
	h.ActionHistory = append(h.ActionHistory, h.ActionHistory...)
	assert.Equal(t, fp, Fingerprint(h))
}

func TestFingerprint_SplayMatters(t *testing.T) {
	g := twoPlayerState()
	fp := Fingerprint(g)

	h := g.Clone()
	h.Players[0].Board["red"] = h.Players[0].Board["red"].WithSplay(SplayLeft)
	assert.NotEqual(t, fp, Fingerprint(h))
}
