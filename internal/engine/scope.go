package engine

import (
	"slices"
	"strconv"

	"github.com/roach88/splay/internal/expr"
	"github.com/roach88/splay/internal/spec"
	"github.com/roach88/splay/internal/state"
)

// gameScope binds the expression vocabulary to a state and an effect
// frame. Card values are represented as instance-id strings; dotted
// access on them (drawn_card.age) resolves through the card definition.
//
// Roots:
//
//	player           the acting player of the frame
//	activator        who activated the effect
//	current_player   whose turn it is
//	game             global counters (turn_number, players.count, supply.<age>.count)
//	all_players      player-id list in turn order
//	other_players    all_players minus the acting player
//	<variable>       frame variables: drawn_card, chosen_card, loop vars, ...
type gameScope struct {
	gs    *spec.GameSpec
	st    *state.GameState
	frame *state.EffectContext
}

func (s *gameScope) actingPlayer() (*state.PlayerState, bool) {
	if s.frame == nil {
		return s.st.CurrentPlayer(), true
	}
	return s.st.Player(s.frame.ActingPlayerID)
}

func (s *gameScope) ResolveProperty(path []string) (expr.Value, bool) {
	if len(path) == 0 {
		return nil, false
	}

	switch path[0] {
	case "player":
		if p, ok := s.actingPlayer(); ok {
			return s.playerProperty(p, path[1:])
		}
		return nil, false

	case "activator", "demanding_player":
		if s.frame == nil {
			return nil, false
		}
		if p, ok := s.st.Player(s.frame.ActivatorID); ok {
			return s.playerProperty(p, path[1:])
		}
		return nil, false

	case "current_player":
		return s.playerProperty(s.st.CurrentPlayer(), path[1:])

	case "game":
		return s.gameProperty(path[1:])

	case "all_players":
		return playerList(s.st.PlayerIDs()), len(path) == 1

	case "other_players":
		acting, ok := s.actingPlayer()
		if !ok {
			return nil, false
		}
		var ids []string
		for _, id := range s.st.PlayerIDs() {
			if id != acting.ID {
				ids = append(ids, id)
			}
		}
		return playerList(ids), len(path) == 1

	case "highest_top_card_age":
		if p, ok := s.actingPlayer(); ok {
			return expr.Int(highestTopCardAge(s.gs, p)), true
		}
		return nil, false
	}

	// Frame variables, with dotted card access (drawn_card.age).
	if s.frame != nil {
		if v, ok := s.frame.Variable(path[0]); ok {
			if len(path) == 1 {
				return v, true
			}
			if id, isStr := expr.AsString(v); isStr {
				if val, found := s.cardProperty(id, path[1:]); found {
					return val, true
				}
				// Player-id variable with a player sub-path.
				if p, found := s.st.Player(id); found {
					return s.playerProperty(p, path[1:])
				}
			}
			return nil, false
		}
	}
	return nil, false
}

func (s *gameScope) playerProperty(p *state.PlayerState, rest []string) (expr.Value, bool) {
	if len(rest) == 0 {
		return expr.Str(p.ID), true
	}
	switch rest[0] {
	case "id":
		return expr.Str(p.ID), true

	case "hand":
		return tailOfCards(p.Hand, rest[1:], s)

	case "score_pile":
		return tailOfCards(p.ScorePile, rest[1:], s)

	case "score":
		return expr.Int(int64(Score(s.gs, p))), true

	case "achievements":
		if len(rest) == 2 && rest[1] == "count" {
			return expr.Int(int64(len(p.Achievements))), true
		}
		ages := make(expr.List, len(p.Achievements))
		for i, age := range p.Achievements {
			ages[i] = expr.Int(int64(age))
		}
		return ages, len(rest) == 1

	case "top_cards":
		return tailOfCards(p.TopCards(), rest[1:], s)

	case "board":
		if len(rest) < 2 {
			return nil, false
		}
		stack := p.Stack(rest[1])
		switch {
		case len(rest) == 2:
			return cardList(stack.Cards), true
		case rest[2] == "count":
			return expr.Int(int64(stack.Count())), true
		case rest[2] == "splay":
			if stack.Splay == "" {
				return expr.Str(string(state.SplayNone)), true
			}
			return expr.Str(string(stack.Splay)), true
		case rest[2] == "top":
			if top, ok := stack.Top(); ok {
				if len(rest) == 3 {
					return expr.Str(top.InstanceID), true
				}
				return s.cardProperty(top.InstanceID, rest[3:])
			}
			return expr.Null{}, true
		}
		return nil, false

	case "icon_count":
		if len(rest) == 2 {
			return expr.Int(int64(CountIcon(s.gs, p, rest[1]))), true
		}
		return nil, false
	}
	return nil, false
}

// tailOfCards resolves a card-list zone with an optional trailing
// ".count".
func tailOfCards(cards []state.Card, rest []string, s *gameScope) (expr.Value, bool) {
	switch {
	case len(rest) == 0:
		return cardList(cards), true
	case len(rest) == 1 && rest[0] == "count":
		return expr.Int(int64(len(cards))), true
	}
	return nil, false
}

func (s *gameScope) gameProperty(rest []string) (expr.Value, bool) {
	if len(rest) == 0 {
		return nil, false
	}
	switch rest[0] {
	case "turn_number":
		return expr.Int(int64(s.st.TurnNumber)), true
	case "actions_remaining":
		return expr.Int(int64(s.st.ActionsRemaining)), true
	case "players":
		if len(rest) == 2 && rest[1] == "count" {
			return expr.Int(int64(len(s.st.Players))), true
		}
	case "achievements_available":
		if len(rest) == 2 && rest[1] == "count" {
			return expr.Int(int64(len(s.st.AchievementsAvailable))), true
		}
		ages := make(expr.List, len(s.st.AchievementsAvailable))
		for i, age := range s.st.AchievementsAvailable {
			ages[i] = expr.Int(int64(age))
		}
		return ages, len(rest) == 1
	case "supply":
		if len(rest) == 3 && rest[2] == "count" {
			if age, err := strconv.Atoi(rest[1]); err == nil {
				return expr.Int(int64(s.st.SupplyPiles[age].Count())), true
			}
		}
	}
	return nil, false
}

// cardProperty resolves an attribute of a card named by instance id.
func (s *gameScope) cardProperty(instanceID string, rest []string) (expr.Value, bool) {
	card, ok := findInstance(s.st, instanceID)
	if !ok {
		return nil, false
	}
	if len(rest) == 0 {
		return expr.Str(card.InstanceID), true
	}
	def, ok := s.gs.Card(card.CardID)
	if !ok {
		return nil, false
	}
	switch rest[0] {
	case "id":
		return expr.Str(def.ID), true
	case "name":
		return expr.Str(def.Name), true
	case "age":
		return expr.Int(int64(def.Age)), true
	case "color":
		return expr.Str(def.Color), true
	case "icon_count":
		if len(rest) == 2 {
			n := 0
			for _, pos := range spec.IconPositions {
				if def.Icon(pos) == rest[1] {
					n++
				}
			}
			return expr.Int(int64(n)), true
		}
	}
	return nil, false
}

func (s *gameScope) CallFunction(name string, args []expr.Value) (expr.Value, bool) {
	switch name {
	case "count":
		if len(args) == 1 {
			if list, ok := args[0].(expr.List); ok {
				return expr.Int(int64(len(list))), true
			}
			return expr.Int(0), true
		}

	case "has":
		if len(args) == 2 {
			return expr.Bool(expr.Contains(args[0], args[1])), true
		}

	case "has_icon":
		// has_icon(icon) on the acting player's board.
		if len(args) == 1 {
			icon, ok := expr.AsString(args[0])
			if !ok {
				return expr.Bool(false), true
			}
			p, ok := s.actingPlayer()
			if !ok {
				return expr.Bool(false), true
			}
			return expr.Bool(CountIcon(s.gs, p, icon) > 0), true
		}

	case "icon_count":
		if len(args) == 1 {
			icon, ok := expr.AsString(args[0])
			if !ok {
				return expr.Int(0), true
			}
			p, ok := s.actingPlayer()
			if !ok {
				return expr.Int(0), true
			}
			return expr.Int(int64(CountIcon(s.gs, p, icon))), true
		}

	case "sum":
		// sum(list) adds the int elements; an int argument passes
		// through.
		if len(args) == 1 {
			if list, ok := args[0].(expr.List); ok {
				var total int64
				for _, v := range list {
					if n, ok := expr.AsInt(v); ok {
						total += n
					}
				}
				return expr.Int(total), true
			}
			if n, ok := expr.AsInt(args[0]); ok {
				return expr.Int(n), true
			}
			return expr.Int(0), true
		}

	case "max", "min":
		if len(args) == 2 {
			a, aok := expr.AsInt(args[0])
			b, bok := expr.AsInt(args[1])
			if !aok || !bok {
				return expr.Int(0), true
			}
			if (name == "max") == (a > b) {
				return expr.Int(a), true
			}
			return expr.Int(b), true
		}

	case "highest_card", "lowest_card":
		// Pick the extreme-age card instance from a list; ties keep
		// the earliest element so the result is deterministic.
		if len(args) == 1 {
			list, ok := args[0].(expr.List)
			if !ok {
				return expr.Null{}, true
			}
			bestInstance := ""
			bestAge := 0
			for _, v := range list {
				instance, isStr := expr.AsString(v)
				if !isStr {
					continue
				}
				card, found := findInstance(s.st, instance)
				if !found {
					continue
				}
				def, defOK := s.gs.Card(card.CardID)
				if !defOK {
					continue
				}
				better := def.Age > bestAge
				if name == "lowest_card" {
					better = bestInstance == "" || def.Age < bestAge
				}
				if bestInstance == "" || better {
					bestInstance, bestAge = instance, def.Age
				}
			}
			if bestInstance == "" {
				return expr.Null{}, true
			}
			return expr.Str(bestInstance), true
		}

	case "top_card":
		// Acting player's top card instance of a color.
		if len(args) == 1 {
			color, ok := expr.AsString(args[0])
			if !ok {
				return expr.Null{}, true
			}
			p, ok := s.actingPlayer()
			if !ok {
				return expr.Null{}, true
			}
			if top, found := p.Stack(color).Top(); found {
				return expr.Str(top.InstanceID), true
			}
			return expr.Null{}, true
		}

	case "stack_count":
		if len(args) == 1 {
			color, ok := expr.AsString(args[0])
			if !ok {
				return expr.Int(0), true
			}
			p, ok := s.actingPlayer()
			if !ok {
				return expr.Int(0), true
			}
			return expr.Int(int64(p.Stack(color).Count())), true
		}

	case "board_has_color":
		if len(args) == 1 {
			color, ok := expr.AsString(args[0])
			if !ok {
				return expr.Bool(false), true
			}
			p, ok := s.actingPlayer()
			if !ok {
				return expr.Bool(false), true
			}
			return expr.Bool(p.Stack(color).Count() > 0), true
		}

	case "top_cards_with_icon":
		if len(args) == 1 {
			icon, ok := expr.AsString(args[0])
			if !ok {
				return expr.List{}, true
			}
			p, ok := s.actingPlayer()
			if !ok {
				return expr.List{}, true
			}
			var out expr.List
			for _, top := range p.TopCards() {
				def, found := s.gs.Card(top.CardID)
				if !found {
					continue
				}
				for _, pos := range spec.IconPositions {
					if def.Icon(pos) == icon {
						out = append(out, expr.Str(top.InstanceID))
						break
					}
				}
			}
			return out, true
		}

	case "highest_age", "lowest_age":
		// Over a list of card instance ids.
		if len(args) == 1 {
			list, ok := args[0].(expr.List)
			if !ok {
				return expr.Int(0), true
			}
			var ages []int
			for _, v := range list {
				if instance, ok := expr.AsString(v); ok {
					if card, found := findInstance(s.st, instance); found {
						if def, defOK := s.gs.Card(card.CardID); defOK {
							ages = append(ages, def.Age)
						}
					}
				}
			}
			if len(ages) == 0 {
				return expr.Int(0), true
			}
			if name == "highest_age" {
				return expr.Int(int64(slices.Max(ages))), true
			}
			return expr.Int(int64(slices.Min(ages))), true
		}
	}
	return nil, false
}

func cardList(cards []state.Card) expr.List {
	list := make(expr.List, len(cards))
	for i, c := range cards {
		list[i] = expr.Str(c.InstanceID)
	}
	return list
}

func playerList(ids []string) expr.List {
	list := make(expr.List, len(ids))
	for i, id := range ids {
		list[i] = expr.Str(id)
	}
	return list
}

// findInstance locates a card anywhere on the table by instance id.
func findInstance(st *state.GameState, instanceID string) (state.Card, bool) {
	for i := range st.Players {
		p := &st.Players[i]
		for _, c := range p.Hand {
			if c.InstanceID == instanceID {
				return c, true
			}
		}
		for _, c := range p.ScorePile {
			if c.InstanceID == instanceID {
				return c, true
			}
		}
		for _, stack := range p.Board {
			for _, c := range stack.Cards {
				if c.InstanceID == instanceID {
					return c, true
				}
			}
		}
	}
	for _, pile := range st.SupplyPiles {
		for _, c := range pile.Cards {
			if c.InstanceID == instanceID {
				return c, true
			}
		}
	}
	return state.Card{}, false
}

// highestTopCardAge is the highest age among a player's top cards,
// zero for an empty board.
func highestTopCardAge(gs *spec.GameSpec, p *state.PlayerState) int64 {
	best := 0
	for _, top := range p.TopCards() {
		if def, ok := gs.Card(top.CardID); ok && def.Age > best {
			best = def.Age
		}
	}
	return int64(best)
}
