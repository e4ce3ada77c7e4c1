package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/splay/internal/games/innovation"
	"github.com/roach88/splay/internal/spec"
)

func loadErrCodes(t *testing.T, errs []error) []string {
	t.Helper()
	codes := make([]string, len(errs))
	for i, err := range errs {
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr), "error %d is not a LoadError: %v", i, err)
		codes[i] = loadErr.Code
	}
	return codes
}

func TestLoadGameSpec_Directory(t *testing.T) {
	gs, errs := LoadGameSpec(filepath.Join("testdata", "minigame"))
	require.Empty(t, errs)
	require.NotNil(t, gs)

	assert.Equal(t, "minigame", gs.GameID)
	assert.Len(t, gs.Cards, 2)
	assert.Len(t, gs.Actions, 3)
	assert.Equal(t, 2, gs.TurnStructure.ActionsPerTurn)
	assert.Equal(t, 1, gs.TurnStructure.ActionsFor(0))

	card, ok := gs.Card("spark")
	require.True(t, ok)
	assert.Equal(t, "lightbulb", card.Icon(spec.IconTopLeft))
	require.Len(t, card.Effects, 1)
	assert.Equal(t, spec.EffectDogma, card.Effects[0].Type)
}

func TestLoadGameSpec_SingleCUEFile(t *testing.T) {
	gs, errs := LoadGameSpec(filepath.Join("testdata", "minigame", "game.cue"))
	require.Empty(t, errs)
	require.NotNil(t, gs)
	assert.Equal(t, "minigame", gs.GameID)
}

func TestLoadGameSpec_JSON(t *testing.T) {
	ref := innovation.Spec()
	data, err := json.Marshal(ref)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "innovation.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	gs, errs := LoadGameSpec(path)
	require.Empty(t, errs)
	require.NotNil(t, gs)

	assert.Equal(t, ref.GameID, gs.GameID)
	assert.Len(t, gs.Cards, len(ref.Cards))
	assert.Equal(t, ref.AchievementsToWin(3), gs.AchievementsToWin(3))
}

func TestLoadGameSpec_MissingPath(t *testing.T) {
	gs, errs := LoadGameSpec(filepath.Join(t.TempDir(), "nope"))
	assert.Nil(t, gs)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{ErrCodeNotFound}, loadErrCodes(t, errs))
}

func TestLoadGameSpec_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a spec"), 0o644))

	gs, errs := LoadGameSpec(path)
	assert.Nil(t, gs)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{ErrCodeLoadFailed}, loadErrCodes(t, errs))
}

func TestLoadGameSpec_NoGameField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cue")
	require.NoError(t, os.WriteFile(path, []byte("something: 1\n"), 0o644))

	gs, errs := LoadGameSpec(path)
	assert.Nil(t, gs)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "game")
}

func TestLoadGameSpec_SchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`game: {game_id: "bad"}`+"\n"), 0o644))

	gs, errs := LoadGameSpec(path)
	assert.Nil(t, gs)
	require.NotEmpty(t, errs)
	for _, code := range loadErrCodes(t, errs) {
		assert.Equal(t, ErrCodeSchema, code)
	}
}

func TestLoadGameSpec_SemanticErrors(t *testing.T) {
	// Schema-clean but semantically broken: two cards share an id.
	bad := &spec.GameSpec{
		GameID:     "dupes",
		MinPlayers: 2,
		MaxPlayers: 2,
		Colors:     []string{"red"},
		Icons:      []string{"castle"},
		MaxAge:     1,
		Zones: []spec.ZoneDefinition{
			{Name: "hand", Owner: spec.ZonePerPlayer, Visibility: spec.VisibilityOwner},
		},
		Cards: []spec.CardDefinition{
			{ID: "twin", Name: "Twin", Age: 1, Color: "red"},
			{ID: "twin", Name: "Twin Again", Age: 1, Color: "red"},
		},
		Actions: []spec.ActionDefinition{
			{Name: "draw", CostsAction: true},
		},
		TurnStructure: spec.TurnStructure{ActionsPerTurn: 1},
		WinConditions: []spec.WinCondition{{Type: spec.WinExhaustion}},
	}
	data, err := json.Marshal(bad)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "dupes.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	gs, errs := LoadGameSpec(path)
	require.NotNil(t, gs, "semantic failures still return the decoded spec")
	require.NotEmpty(t, errs)
	assert.Contains(t, loadErrCodes(t, errs), ErrCodeSpecInvalid)
	assert.Contains(t, errs[0].Error(), "duplicate card id")
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles(filepath.Join("testdata", "minigame"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "game.cue", filepath.Base(files[0]))
}
