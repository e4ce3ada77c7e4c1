package state

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/splay/internal/expr"
)

// DomainState is the domain prefix for state fingerprints. The version
// suffix allows the scheme to migrate without colliding with old
// journal entries.
const DomainState = "splay/state/v1"

// Fingerprint computes a content hash of the state. Two states are
// rules-equivalent iff their fingerprints match: the hash covers every
// field that influences future transitions, including the resolver
// continuation and variable bindings, and excludes the action history
// (which identifies how the state was reached, not what it is).
//
// Strings are NFC normalized and map keys sorted, so the fingerprint is
// stable across process restarts and replays.
func Fingerprint(g *GameState) string {
	doc := stateDoc(g)
	var buf bytes.Buffer
	if err := writeCanonical(&buf, doc); err != nil {
		// The doc tree is built from our own types; a marshal failure
		// is a programming error.
		panic(fmt.Sprintf("state fingerprint: %v", err))
	}
	h := sha256.New()
	h.Write([]byte(DomainState))
	h.Write([]byte{0x00})
	h.Write(buf.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}

func stateDoc(g *GameState) map[string]any {
	players := make([]any, len(g.Players))
	for i := range g.Players {
		players[i] = playerDoc(&g.Players[i])
	}

	supply := make(map[string]any, len(g.SupplyPiles))
	for age, pile := range g.SupplyPiles {
		supply[strconv.Itoa(age)] = stackDoc(pile)
	}

	achievements := slices.Clone(g.AchievementsAvailable)
	slices.Sort(achievements)

	pending := make([]any, len(g.PendingEffects))
	for i := range g.PendingEffects {
		pending[i] = frameDoc(&g.PendingEffects[i])
	}

	doc := map[string]any{
		"game_id":                g.GameID,
		"phase":                  string(g.Phase),
		"current_player_idx":     g.CurrentPlayerIdx,
		"turn_number":            g.TurnNumber,
		"actions_remaining":      g.ActionsRemaining,
		"instance_seq":           g.InstanceSeq,
		"winner_id":              g.WinnerID,
		"win_reason":             g.WinReason,
		"players":                players,
		"supply_piles":           supply,
		"achievements_available": intsDoc(achievements),
		"pending_effects":        pending,
	}
	if g.ChoiceRequired != nil {
		doc["choice_required"] = choiceDoc(g.ChoiceRequired)
	}
	return doc
}

func playerDoc(p *PlayerState) map[string]any {
	colors := make([]string, 0, len(p.Board))
	for color := range p.Board {
		colors = append(colors, color)
	}
	slices.Sort(colors)
	board := make(map[string]any, len(colors))
	for _, color := range colors {
		board[color] = stackDoc(p.Board[color])
	}

	achievements := slices.Clone(p.Achievements)
	slices.Sort(achievements)

	return map[string]any{
		"id":           p.ID,
		"hand":         cardsDoc(p.Hand),
		"board":        board,
		"score_pile":   cardsDoc(p.ScorePile),
		"achievements": intsDoc(achievements),
	}
}

func stackDoc(z ZoneStack) map[string]any {
	return map[string]any{
		"cards": cardsDoc(z.Cards),
		"splay": string(z.Splay),
	}
}

func cardsDoc(cards []Card) []any {
	doc := make([]any, len(cards))
	for i, c := range cards {
		doc[i] = map[string]any{"card_id": c.CardID, "instance_id": c.InstanceID}
	}
	return doc
}

func intsDoc(ns []int) []any {
	doc := make([]any, len(ns))
	for i, n := range ns {
		doc[i] = n
	}
	return doc
}

func frameDoc(f *EffectContext) map[string]any {
	stepIDs := make([]any, len(f.Steps))
	for i := range f.Steps {
		stepIDs[i] = f.Steps[i].ID
	}

	vars := make(map[string]any, len(f.Variables))
	for name, v := range f.Variables {
		vars[name] = expr.Format(v)
	}

	resolved := make(map[string]any, len(f.ResolvedChoices))
	for id, sel := range f.ResolvedChoices {
		resolved[id] = stringsDoc(sel)
	}

	return map[string]any{
		"effect_id":        f.EffectID,
		"trigger_icon":     f.TriggerIcon,
		"step_ids":         stepIDs,
		"step_index":       f.StepIndex,
		"activator_id":     f.ActivatorID,
		"acting_player_id": f.ActingPlayerID,
		"demanded_by":      f.DemandedBy,
		"variables":        vars,
		"resolved_choices": resolved,
		"sharing_players":  stringsDoc(f.SharingPlayers),
		"share_happened":   f.ShareHappened,
		"best_effort":      f.BestEffort,
	}
}

func choiceDoc(c *PendingChoice) map[string]any {
	return map[string]any{
		"choice_id":   c.ChoiceID,
		"player_id":   c.PlayerID,
		"kind":        string(c.Kind),
		"options":     stringsDoc(c.Options),
		"min_choices": c.MinChoices,
		"max_choices": c.MaxChoices,
		"optional":    c.Optional,
	}
}

func stringsDoc(ss []string) []any {
	doc := make([]any, len(ss))
	for i, s := range ss {
		doc[i] = s
	}
	return doc
}

// writeCanonical renders the doc tree as canonical JSON: sorted object
// keys, NFC-normalized strings, no HTML escaping, no floats.
func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		return writeCanonicalString(buf, val)
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func writeCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)
	var inner bytes.Buffer
	enc := json.NewEncoder(&inner)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}
	encoded := inner.Bytes()
	if len(encoded) > 0 && encoded[len(encoded)-1] == '\n' {
		encoded = encoded[:len(encoded)-1]
	}
	buf.Write(encoded)
	return nil
}
