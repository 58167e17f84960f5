package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateCatalog() *Catalog {
	return NewCatalog(time.Minute, []PopupDefinition{
		{ID: "a"},
		{ID: "b"},
		{ID: "c"},
	})
}

func TestNewEmptyState_AllCatalogIDs(t *testing.T) {
	state := NewEmptyState(stateCatalog())

	require.Len(t, state.Popups, 3)
	for _, id := range []string{"a", "b", "c"} {
		require.Contains(t, state.Popups, id)
		assert.Equal(t, &PopupRuntimeState{}, state.Popups[id])
	}
	assert.Zero(t, state.FirstSeenAt)
	assert.Zero(t, state.LastPopupShownAt)
}

func TestParseState_Empty(t *testing.T) {
	state := ParseState(stateCatalog(), nil)
	assert.Len(t, state.Popups, 3)
}

func TestParseState_Corrupt(t *testing.T) {
	state := ParseState(stateCatalog(), []byte("{not json"))
	assert.Len(t, state.Popups, 3)
	assert.Zero(t, state.FirstSeenAt)
}

func TestParseState_Roundtrip(t *testing.T) {
	original := NewEmptyState(stateCatalog())
	original.FirstSeenAt = 1000
	original.Popups["b"].LastShownAt = 2000
	original.Popups["b"].SnoozeUntil = 3000

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	state := ParseState(stateCatalog(), raw)
	assert.Equal(t, int64(1000), state.FirstSeenAt)
	assert.Equal(t, int64(2000), state.Popups["b"].LastShownAt)
	assert.Equal(t, int64(3000), state.Popups["b"].SnoozeUntil)
	// Aggregate anchor recomputed from per-popup data.
	assert.Equal(t, int64(2000), state.LastPopupShownAt)
}

func TestNormalize_RecomputesLastShownAnchor(t *testing.T) {
	state := &PopupManagerState{
		LastPopupShownAt: 500,
		Popups: map[string]*PopupRuntimeState{
			"a": {LastShownAt: 900},
			"c": {LastShownAt: 700},
		},
	}

	normalized := Normalize(stateCatalog(), state)
	assert.Equal(t, int64(900), normalized.LastPopupShownAt)
}

func TestNormalize_KeepsLargerStoredAnchor(t *testing.T) {
	state := &PopupManagerState{
		LastPopupShownAt: 5000,
		Popups:           map[string]*PopupRuntimeState{"a": {LastShownAt: 900}},
	}

	normalized := Normalize(stateCatalog(), state)
	assert.Equal(t, int64(5000), normalized.LastPopupShownAt)
}

func TestNormalize_DropsUnknownIDs(t *testing.T) {
	state := &PopupManagerState{
		Popups: map[string]*PopupRuntimeState{
			"a":       {Dismissed: true},
			"retired": {Dismissed: true},
		},
	}

	normalized := Normalize(stateCatalog(), state)
	assert.NotContains(t, normalized.Popups, "retired")
	assert.True(t, normalized.Popups["a"].Dismissed)
	assert.Len(t, normalized.Popups, 3)
}

func TestNormalize_Nil(t *testing.T) {
	normalized := Normalize(stateCatalog(), nil)
	assert.Len(t, normalized.Popups, 3)
}

func TestFindLatestShown(t *testing.T) {
	popups := map[string]*PopupRuntimeState{
		"a": {LastShownAt: 100},
		"b": {LastShownAt: 300},
		"c": {},
	}

	latest := FindLatestShown(stateCatalog(), popups)
	require.NotNil(t, latest)
	assert.Equal(t, "b", latest.ID)
	assert.Equal(t, int64(300), latest.At)
}

func TestFindLatestShown_NothingShown(t *testing.T) {
	assert.Nil(t, FindLatestShown(stateCatalog(), map[string]*PopupRuntimeState{}))
}

func TestClone_Independent(t *testing.T) {
	state := NewEmptyState(stateCatalog())
	state.FirstSeenAt = 42
	state.Popups["a"].Dismissed = true

	clone := state.Clone()
	clone.Popups["a"].Dismissed = false
	clone.Popups["b"].SnoozeUntil = 777

	assert.True(t, state.Popups["a"].Dismissed)
	assert.Zero(t, state.Popups["b"].SnoozeUntil)
	assert.Equal(t, int64(42), clone.FirstSeenAt)
}
