package spec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalSpec() *GameSpec {
	return &GameSpec{
		GameID:     "test_game",
		MinPlayers: 2,
		MaxPlayers: 4,
		Colors:     []string{"red", "blue"},
		Icons:      []string{"castle", "leaf"},
		MaxAge:     3,
		Zones: []ZoneDefinition{
			{Name: "hand", Owner: ZonePerPlayer, Visibility: VisibilityOwner},
			{Name: "board", Owner: ZonePerPlayer, Visibility: VisibilityPublic, Ordered: true, PerColor: true},
			{Name: "supply", Owner: ZoneShared, Visibility: VisibilityHidden, Ordered: true, PerAge: true},
		},
		Cards: []CardDefinition{
			{
				ID: "card_a", Name: "Card A", Age: 1, Color: "red",
				Icons: map[string]string{IconBottomLeft: "castle", IconBottomCenter: "castle"},
				Effects: []Effect{
					{
						ID: "card_a_dogma_1", Type: EffectDogma, TriggerIcon: "castle",
						Steps: []EffectStep{
							{ID: "s1", Kind: StepDraw, Draw: &DrawStep{Count: 1, Age: E("1")}},
						},
					},
				},
			},
			{ID: "card_b", Name: "Card B", Age: 2, Color: "blue",
				Icons: map[string]string{IconTopLeft: "leaf"}},
		},
		Actions: []ActionDefinition{
			{Name: "draw", CostsAction: true},
			{Name: "meld", CostsAction: true},
		},
		TurnStructure: TurnStructure{ActionsPerTurn: 2, FirstTurnActions: 1},
		WinConditions: []WinCondition{
			{Type: WinAchievements, Threshold: 6, ByPlayerCount: map[int]int{3: 5, 4: 4}},
			{Type: WinExhaustion},
		},
	}
}

func TestValidate_MinimalSpecPasses(t *testing.T) {
	errs := minimalSpec().Validate()
	assert.Empty(t, errs)
}

func TestCardLookup(t *testing.T) {
	s := minimalSpec()
	card, ok := s.Card("card_a")
	require.True(t, ok)
	assert.Equal(t, "Card A", card.Name)
	assert.Equal(t, "castle", card.Icon(IconBottomLeft))
	assert.Equal(t, "", card.Icon(IconTopLeft))

	_, ok = s.Card("nope")
	assert.False(t, ok)
}

func TestEffectLookupSetsSourceCard(t *testing.T) {
	s := minimalSpec()
	eff, ok := s.EffectByID("card_a_dogma_1")
	require.True(t, ok)
	assert.Equal(t, "card_a", eff.SourceCardID)
}

func TestAchievementsToWin(t *testing.T) {
	s := minimalSpec()
	assert.Equal(t, 6, s.AchievementsToWin(2))
	assert.Equal(t, 5, s.AchievementsToWin(3))
	assert.Equal(t, 4, s.AchievementsToWin(4))
}

func TestTurnStructure_ActionsFor(t *testing.T) {
	ts := TurnStructure{ActionsPerTurn: 2, FirstTurnActions: 1}
	assert.Equal(t, 1, ts.ActionsFor(0))
	assert.Equal(t, 2, ts.ActionsFor(1))
	assert.Equal(t, 2, ts.ActionsFor(17))
}

func TestChoiceSpec_Bounds(t *testing.T) {
	min, max := (&ChoiceSpec{}).Bounds()
	assert.Equal(t, 1, min)
	assert.Equal(t, 1, max)

	min, max = (&ChoiceSpec{Optional: true}).Bounds()
	assert.Equal(t, 0, min)
	assert.Equal(t, 1, max)

	min, max = (&ChoiceSpec{Min: 2, Max: 3}).Bounds()
	assert.Equal(t, 2, min)
	assert.Equal(t, 3, max)
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	s := minimalSpec()
	s.GameID = ""
	s.Cards[0].Color = "chartreuse"
	s.Cards[1].Age = 9

	errs := s.Validate()
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Contains(t, fields, "game_id")
	assert.Contains(t, fields, "cards[0].color")
	assert.Contains(t, fields, "cards[1].age")
}

func TestValidate_DuplicateStepIDs(t *testing.T) {
	s := minimalSpec()
	s.Cards[0].Effects[0].Steps = []EffectStep{
		{ID: "s1", Kind: StepDraw, Draw: &DrawStep{}},
		{ID: "s1", Kind: StepDraw, Draw: &DrawStep{}},
	}
	errs := s.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "duplicate step id")
}

func TestValidate_PayloadMustMatchKind(t *testing.T) {
	s := minimalSpec()
	s.Cards[0].Effects[0].Steps = []EffectStep{
		{ID: "s1", Kind: StepDraw, Meld: &MoveStep{CardSource: E("drawn_card")}},
	}
	errs := s.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "no matching payload")
}

func TestValidate_NestedStepIDsShareNamespace(t *testing.T) {
	s := minimalSpec()
	s.Cards[0].Effects[0].Steps = []EffectStep{
		{ID: "s1", Kind: StepConditional, Conditional: &ConditionalStep{
			Condition: E("player.hand.count > 0"),
			Then: []EffectStep{
				{ID: "s1", Kind: StepDraw, Draw: &DrawStep{}},
			},
		}},
	}
	errs := s.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "duplicate step id")
}

func TestValidate_UnresolvableExecuteEffect(t *testing.T) {
	s := minimalSpec()
	s.Cards[0].Effects[0].Steps = []EffectStep{
		{ID: "s1", Kind: StepExecuteEffect, ExecuteEffect: &ExecuteEffectStep{EffectID: "ghost"}},
	}
	errs := s.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unresolvable effect id")
}

func TestValidate_BadExpression(t *testing.T) {
	s := minimalSpec()
	s.Cards[0].Effects[0].Steps = []EffectStep{
		{ID: "s1", Kind: StepConditional, Conditional: &ConditionalStep{
			Condition: Expr{Src: "player.hand >"},
			Then:      []EffectStep{{ID: "s2", Kind: StepDraw, Draw: &DrawStep{}}},
		}},
	}
	errs := s.Validate()
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "invalid expression")
}

func TestValidate_DogmaRequiresTriggerIcon(t *testing.T) {
	s := minimalSpec()
	s.Cards[0].Effects[0].TriggerIcon = ""
	errs := s.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "cards[0].effects[0].trigger_icon", errs[0].Field)
}

func TestEffectStep_JSONRoundTrip(t *testing.T) {
	raw := []byte(`{
		"id": "s1",
		"kind": "draw",
		"condition": "player.hand.count < 3",
		"draw": {"count": 2, "age": "returned_age + 1"}
	}`)
	var step EffectStep
	require.NoError(t, json.Unmarshal(raw, &step))
	assert.Equal(t, StepDraw, step.Kind)
	require.NotNil(t, step.Draw)
	assert.Equal(t, 2, step.Draw.Count)
	require.NoError(t, step.Draw.Age.Compile())
	assert.NotNil(t, step.Draw.Age.Node())
}

func TestExpr_JSONASTForm(t *testing.T) {
	raw := []byte(`{
		"id": "s1",
		"kind": "conditional",
		"conditional": {
			"condition": {"op": "compare", "left": "player.hand.count", "right": 0, "operator": ">"},
			"then": [{"id": "s2", "kind": "draw", "draw": {}}]
		}
	}`)
	var step EffectStep
	require.NoError(t, json.Unmarshal(raw, &step))
	require.NoError(t, step.Conditional.Condition.Compile())
	assert.NotNil(t, step.Conditional.Condition.Node())
}

func TestExpr_MarshalPreservesForm(t *testing.T) {
	e := E("card.age + 1")
	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `"card.age + 1"`, string(out))

	var ast Expr
	require.NoError(t, json.Unmarshal([]byte(`{"op":"literal","value":3}`), &ast))
	out, err = json.Marshal(ast)
	require.NoError(t, err)
	assert.JSONEq(t, `{"op":"literal","value":3}`, string(out))
}

func TestIsDemand(t *testing.T) {
	eff := &Effect{Steps: []EffectStep{
		{ID: "s1", Kind: StepDemand, Demand: &DemandStep{Body: []EffectStep{
			{ID: "s2", Kind: StepDraw, Draw: &DrawStep{}},
		}}},
	}}
	assert.True(t, eff.IsDemand())
	assert.False(t, (&Effect{}).IsDemand())
}
