package innovation

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// SetupConfig controls game creation.
type SetupConfig struct {
	GameID string
	// PlayerIDs in seating order; 2-4 players.
	PlayerIDs   []string
	PlayerNames map[string]string
	// Seed drives the shuffle. The same seed and players always
	// produce the same initial state.
	Seed int64
}

// NewGame builds the initial state: shuffled supply piles, two age-1
// cards dealt to each player, and the achievement supply. The game
// starts in the setup phase awaiting the first player's START_TURN,
// which grants the opening single-action allotment.
func NewGame(gs *spec.GameSpec, cfg SetupConfig) (*state.GameState, error) {
	if len(cfg.PlayerIDs) < gs.MinPlayers || len(cfg.PlayerIDs) > gs.MaxPlayers {
		return nil, fmt.Errorf("innovation supports %d-%d players, got %d", gs.MinPlayers, gs.MaxPlayers, len(cfg.PlayerIDs))
	}
	gameID := cfg.GameID
	if gameID == "" {
		gameID = fmt.Sprintf("innovation_%d", cfg.Seed)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	supply := make(map[int]state.ZoneStack, gs.MaxAge)
	for age := 1; age <= gs.MaxAge; age++ {
		ids := gs.CardsOfAge(age)
		cards := make([]state.Card, len(ids))
		for i, id := range ids {
			cards[i] = state.Card{CardID: id, InstanceID: id}
		}
		rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
		supply[age] = state.ZoneStack{Cards: cards}
	}

	players := make([]state.PlayerState, len(cfg.PlayerIDs))
	for i, id := range cfg.PlayerIDs {
		players[i] = state.PlayerState{
			ID:    id,
			Name:  cfg.PlayerNames[id],
			Board: make(map[string]state.ZoneStack, len(Colors)),
		}
	}

	st := &state.GameState{
		GameID:                gameID,
		Phase:                 state.PhaseSetup,
		Players:               players,
		CurrentPlayerIdx:      0,
		TurnNumber:            0,
		SupplyPiles:           supply,
		AchievementsAvailable: slices.Clone(AchievementAges),
	}

	// Deal two age-1 cards to each player in seating order.
	for i := range st.Players {
		for n := 0; n < 2; n++ {
			card, rest, ok := st.SupplyPiles[1].WithoutTop()
			if !ok {
				return nil, fmt.Errorf("age 1 pile exhausted during deal")
			}
			st.SupplyPiles[1] = rest
			st.Players[i].Hand = append(st.Players[i].Hand, card)
		}
	}

	return st, nil
}
