package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_FlagsRoundTrip(t *testing.T) {
	for f := FlagNone; f <= FlagAll; f++ {
		assert.Equal(t, f, WithFlags(f).Flags(), "flag set %04b", f)
	}
}

func TestPreferences_ToggleIsIndependent(t *testing.T) {
	p := Preferences{IsVegan: true}

	p = p.Toggle(FlagHalal)
	assert.Equal(t, Preferences{IsVegan: true, IsHalal: true}, p)

	p = p.Toggle(FlagVegan)
	assert.Equal(t, Preferences{IsHalal: true}, p)
}

func TestParseFlag(t *testing.T) {
	f, err := ParseFlag(" Gluten-Free ")
	require.NoError(t, err)
	assert.Equal(t, FlagGlutenFree, f)

	_, err = ParseFlag("kosher")
	assert.Error(t, err)
}

func TestFlag_String(t *testing.T) {
	assert.Equal(t, "none", FlagNone.String())
	assert.Equal(t, "vegan,gluten_free", (FlagVegan | FlagGlutenFree).String())
}

func TestEvent_JSONIsFlat(t *testing.T) {
	e := Event{ID: "e1", Name: "Free Pizza", Preferences: Preferences{IsVegetarian: true}}

	b, err := json.Marshal(e)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, true, raw["is_vegetarian"])
	assert.Equal(t, "Free Pizza", raw["name"])
	assert.NotContains(t, raw, "Preferences")
}

func TestPreferencesUpdate_JSON(t *testing.T) {
	b, err := json.Marshal(PreferencesUpdate{UserID: "u1", Preferences: Preferences{IsHalal: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u1","is_vegan":false,"is_halal":true,"is_vegetarian":false,"is_gluten_free":false}`, string(b))
}
