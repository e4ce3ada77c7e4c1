package engine

import (
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// Score is the sum of card ages in a player's score pile. Placeholder
// cards of unknown identity contribute nothing until corrected.
func Score(gs *spec.GameSpec, p *state.PlayerState) int {
	total := 0
	for _, c := range p.ScorePile {
		if def, ok := gs.Card(c.CardID); ok {
			total += def.Age
		}
	}
	return total
}

// achievementQualified reports whether a player may claim an
// achievement of the given age: score of at least five times the age
// and a top card of that age or higher.
func achievementQualified(gs *spec.GameSpec, st *state.GameState, p *state.PlayerState, age int) bool {
	if Score(gs, p) < age*5 {
		return false
	}
	return highestTopCardAge(gs, p) >= int64(age)
}

// checkAchievementWin sets the winner if any player reached the
// achievement threshold for this table size.
func checkAchievementWin(gs *spec.GameSpec, st *state.GameState) {
	need := gs.AchievementsToWin(len(st.Players))
	if need <= 0 {
		return
	}
	for i := range st.Players {
		if len(st.Players[i].Achievements) >= need {
			st.WinnerID = st.Players[i].ID
			st.WinReason = "achievements"
			st.Phase = state.PhaseGameOver
			st.ChoiceRequired = nil
			st.PendingEffects = nil
			return
		}
	}
}

// endByExhaustion finishes the game when a draw cannot be satisfied:
// highest score wins, achievements break ties, turn order breaks the
// rest so the outcome stays deterministic.
func endByExhaustion(gs *spec.GameSpec, st *state.GameState) {
	bestIdx := 0
	for i := 1; i < len(st.Players); i++ {
		a, b := &st.Players[i], &st.Players[bestIdx]
		scoreA, scoreB := Score(gs, a), Score(gs, b)
		switch {
		case scoreA > scoreB:
			bestIdx = i
		case scoreA == scoreB && len(a.Achievements) > len(b.Achievements):
			bestIdx = i
		}
	}
	st.WinnerID = st.Players[bestIdx].ID
	st.WinReason = "score"
	st.Phase = state.PhaseGameOver
	st.ChoiceRequired = nil
	st.PendingEffects = nil
}
