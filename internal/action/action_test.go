package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Payloads(t *testing.T) {
	valid := []Action{
		NewDraw("p1"),
		NewDrawAge("p1", 3),
		NewMeld("p1", "writing"),
		NewDogma("p1", "archery"),
		NewAchieve("p1", 1),
		NewPass("p1"),
		NewChoose("p1", "eff_s2", []string{"card#3"}),
		NewStartTurn("p1"),
		NewEndTurn("p1"),
		NewVisionUpdate([]ZoneObservation{{ZoneID: "p1_hand", Count: 3}}),
		NewUserCorrection([]Correction{
			{Kind: MoveCard, CardID: "writing", FromZoneID: "p1_hand", ToZoneID: "p1_board_blue"},
		}, "misdetected meld"),
	}
	for _, a := range valid {
		assert.NoError(t, a.Validate(), a.String())
	}

	invalid := []Action{
		{Kind: Draw},
		{Kind: Draw, PlayerID: "p1", Draw: &DrawPayload{Age: -1}},
		{Kind: Meld, PlayerID: "p1"},
		{Kind: Meld, PlayerID: "p1", Meld: &MeldPayload{}},
		{Kind: Achieve, PlayerID: "p1", Achieve: &AchievePayload{Age: 0}},
		{Kind: Choose, PlayerID: "p1", Choose: &ChoosePayload{}},
		{Kind: VisionUpdate, VisionUpdate: &VisionUpdatePayload{}},
		{Kind: UserCorrection, UserCorrection: &UserCorrectionPayload{}},
		{Kind: "teleport", PlayerID: "p1"},
	}
	for _, a := range invalid {
		assert.Error(t, a.Validate(), string(a.Kind))
	}
}

func TestValidate_CorrectionBatchFailsOnOneBadEntry(t *testing.T) {
	a := NewUserCorrection([]Correction{
		{Kind: SetSplay, ZoneID: "p1_board_green", Direction: "left"},
		{Kind: MoveCard, CardID: "writing"},
	}, "")
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_correction[1]")
}

func TestJSONRoundTrip(t *testing.T) {
	a := NewChoose("p2", "archery_demand_s2", []string{"card#7", "card#9"})
	data, err := a.MarshalLog()
	require.NoError(t, err)

	var back Action
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestJSONOmitsAbsentPayloads(t *testing.T) {
	data, err := json.Marshal(NewPass("p1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"pass","player_id":"p1"}`, string(data))
}

func TestString(t *testing.T) {
	assert.Equal(t, "meld(p1, writing)", NewMeld("p1", "writing").String())
	assert.Equal(t, "pass(p2)", NewPass("p2").String())
	assert.Equal(t, "achieve(p1, age 2)", NewAchieve("p1", 2).String())
	assert.Equal(t, "draw(p1)", NewDraw("p1").String())
	assert.Equal(t, "draw(p1, age 2)", NewDrawAge("p1", 2).String())
}
