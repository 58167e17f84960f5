package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolicodes/playbuddy-sub001/internal/models"
)

func testCatalog() *models.Catalog {
	return models.NewCatalog(100*time.Millisecond, []models.PopupDefinition{
		{ID: "a", Label: "A", InitialDelayMs: 10, SnoozeMs: 50},
		{ID: "b", Label: "B", InitialDelayMs: 20, SnoozeMs: 50, UseInterval: true},
		{ID: "c", Label: "C", InitialDelayMs: 30, SnoozeMs: 50, UseInterval: true},
	})
}

func freshState(t *testing.T, firstSeenAt int64) *models.PopupManagerState {
	t.Helper()
	state := models.NewEmptyState(testCatalog())
	state.FirstSeenAt = firstSeenAt
	return state
}

func TestReadyAt_InitialDelayFloor(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)

	assert.Equal(t, int64(1010), e.ReadyAt(state, 1000, "a"))
	assert.Equal(t, int64(1020), e.ReadyAt(state, 1000, "b"))
}

func TestReadyAt_MissingFirstSeenTreatedAsNow(t *testing.T) {
	e := NewEngine(testCatalog())
	state := models.NewEmptyState(testCatalog())

	assert.Equal(t, int64(5010), e.ReadyAt(state, 5000, "a"))
}

func TestReadyAt_SharedIntervalBase(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	state.LastPopupShownAt = 2000

	// b opts into the shared gate: last shown + interval wins over its
	// initial delay floor.
	assert.Equal(t, int64(2100), e.ReadyAt(state, 2000, "b"))
	// a does not use the shared gate.
	assert.Equal(t, int64(1010), e.ReadyAt(state, 2000, "a"))
}

func TestReadyAt_SnoozeFloorDominates(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	state.Popups["a"].SnoozeUntil = 9000

	assert.Equal(t, int64(9000), e.ReadyAt(state, 2000, "a"))
}

func TestReadyAt_UnknownPopup(t *testing.T) {
	e := NewEngine(testCatalog())
	assert.Equal(t, int64(0), e.ReadyAt(freshState(t, 1000), 1000, "nope"))
}

func TestNextEligible_PositionalOrder(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)

	// Before any floor elapses nothing is ready.
	assert.Equal(t, "", e.NextEligible(state, 1005, nil))
	// a's floor elapses first.
	assert.Equal(t, "a", e.NextEligible(state, 1010, nil))
	// Both ready: the earlier catalog entry wins.
	assert.Equal(t, "a", e.NextEligible(state, 1030, nil))
}

func TestNextEligible_SkipsDismissed(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	state.Popups["a"].Dismissed = true

	assert.Equal(t, "b", e.NextEligible(state, 1030, nil))
}

func TestNextEligible_SkipsVetoed(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)

	got := e.NextEligible(state, 1030, func(id string) bool { return id != "a" })
	assert.Equal(t, "b", got)
}

func TestNextEligible_SnoozedNotReady(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	state.Popups["a"].SnoozeUntil = 2000
	state.Popups["b"].SnoozeUntil = 2000
	state.Popups["c"].SnoozeUntil = 2000

	assert.Equal(t, "", e.NextEligible(state, 1500, nil))
	assert.Equal(t, "a", e.NextEligible(state, 2000, nil))
}

func TestNextEligible_AllDismissed(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	for _, st := range state.Popups {
		st.Dismissed = true
	}

	assert.Equal(t, "", e.NextEligible(state, 99999, nil))
}

func TestNextScheduled_MinReadyAt(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)

	next := e.NextScheduled(state, 1000, nil)
	require.NotNil(t, next)
	assert.Equal(t, "a", next.ID)
	assert.Equal(t, int64(1010), next.ReadyAt)
}

func TestNextScheduled_FutureCandidate(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	state.Popups["a"].Dismissed = true
	state.Popups["b"].SnoozeUntil = 5000
	state.Popups["c"].SnoozeUntil = 4000

	next := e.NextScheduled(state, 1000, nil)
	require.NotNil(t, next)
	// c is ready earlier even though b precedes it in the catalog.
	assert.Equal(t, "c", next.ID)
	assert.Equal(t, int64(4000), next.ReadyAt)
}

func TestNextScheduled_NothingLeft(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	for _, st := range state.Popups {
		st.Dismissed = true
	}

	assert.Nil(t, e.NextScheduled(state, 1000, nil))
}

func TestProjection_SequentialAdvance(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)

	projection := e.Projection(state, 1000)
	require.Len(t, projection, 3)

	// a: its own floor. b: a's projected show advances the shared anchor.
	// c: chains off b.
	assert.Equal(t, int64(1010), projection["a"])
	assert.Equal(t, int64(1110), projection["b"])
	assert.Equal(t, int64(1210), projection["c"])
}

func TestProjection_SkipsDismissedAndClampsToNow(t *testing.T) {
	e := NewEngine(testCatalog())
	state := freshState(t, 1000)
	state.Popups["a"].Dismissed = true

	projection := e.Projection(state, 5000)
	assert.NotContains(t, projection, "a")
	// b's floors are all in the past; the projection clamps to now.
	assert.Equal(t, int64(5000), projection["b"])
	assert.Equal(t, int64(5100), projection["c"])
}
