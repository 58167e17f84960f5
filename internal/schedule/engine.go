package schedule

import (
	"github.com/tolicodes/playbuddy-sub001/internal/models"
)

// EligibleFunc lets the caller veto popups for reasons outside timing
// (feature flags, profile preconditions). nil means everything is eligible.
type EligibleFunc func(id string) bool

// ScheduledPopup is a future readiness candidate.
type ScheduledPopup struct {
	ID      string `json:"id"`
	ReadyAt int64  `json:"ready_at"`
}

// Engine computes popup readiness. All methods are pure functions over an
// immutable state snapshot; callers own persistence. The engine assumes the
// aggregate invariants hold on input and treats a missing firstSeenAt as
// "first seen now".
type Engine struct {
	catalog *models.Catalog
}

func NewEngine(catalog *models.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

func (e *Engine) Catalog() *models.Catalog {
	return e.catalog
}

// ReadyAt computes the earliest instant the popup may be shown:
// max(shared-interval base, firstSeenAt+initialDelay, snoozeUntil).
func (e *Engine) ReadyAt(state *models.PopupManagerState, now int64, id string) int64 {
	popup, ok := e.catalog.Get(id)
	if !ok {
		return 0
	}
	firstSeenAt := state.FirstSeenAt
	if firstSeenAt == 0 {
		firstSeenAt = now
	}

	base := firstSeenAt
	if popup.UseInterval && state.LastPopupShownAt != 0 {
		base = state.LastPopupShownAt + e.catalog.SharedIntervalMs
	}

	initialFloor := firstSeenAt + popup.InitialDelayMs
	var snoozeFloor int64
	if st := state.Popups[id]; st != nil {
		snoozeFloor = st.SnoozeUntil
	}

	readyAt := base
	if initialFloor > readyAt {
		readyAt = initialFloor
	}
	if snoozeFloor > readyAt {
		readyAt = snoozeFloor
	}
	return readyAt
}

// NextEligible returns the first ready popup in catalog order, or "" when
// nothing is ready. The scan is positional: a ready lower-priority popup
// never preempts an earlier catalog entry that becomes ready later.
func (e *Engine) NextEligible(state *models.PopupManagerState, now int64, isEligible EligibleFunc) string {
	for _, popup := range e.catalog.Popups() {
		if st := state.Popups[popup.ID]; st != nil && st.Dismissed {
			continue
		}
		if isEligible != nil && !isEligible(popup.ID) {
			continue
		}
		if now < e.ReadyAt(state, now, popup.ID) {
			continue
		}
		return popup.ID
	}
	return ""
}

// NextScheduled returns the candidate with the minimum readyAt across all
// non-dismissed, eligible popups, even if that instant is in the future.
// This is a distinct query from NextEligible: it scans by time, not position.
func (e *Engine) NextScheduled(state *models.PopupManagerState, now int64, isEligible EligibleFunc) *ScheduledPopup {
	var next *ScheduledPopup
	for _, popup := range e.catalog.Popups() {
		if st := state.Popups[popup.ID]; st != nil && st.Dismissed {
			continue
		}
		if isEligible != nil && !isEligible(popup.ID) {
			continue
		}
		readyAt := e.ReadyAt(state, now, popup.ID)
		if next == nil || readyAt < next.ReadyAt {
			next = &ScheduledPopup{ID: popup.ID, ReadyAt: readyAt}
		}
	}
	return next
}

// Projection simulates the queue forward: each non-dismissed popup's
// projected show time, where every projected show advances the simulated
// shared-interval anchor. Values clamp to now. Used by the inspection view.
func (e *Engine) Projection(state *models.PopupManagerState, now int64) map[string]int64 {
	projections := make(map[string]int64, e.catalog.Len())
	firstSeenAt := state.FirstSeenAt
	if firstSeenAt == 0 {
		firstSeenAt = now
	}
	projectedLastShownAt := state.LastPopupShownAt

	for _, popup := range e.catalog.Popups() {
		st := state.Popups[popup.ID]
		if st != nil && st.Dismissed {
			continue
		}

		base := firstSeenAt
		if popup.UseInterval && projectedLastShownAt != 0 {
			base = projectedLastShownAt + e.catalog.SharedIntervalMs
		}
		readyAt := base
		if floor := firstSeenAt + popup.InitialDelayMs; floor > readyAt {
			readyAt = floor
		}
		if st != nil && st.SnoozeUntil > readyAt {
			readyAt = st.SnoozeUntil
		}
		if readyAt < now {
			readyAt = now
		}

		projections[popup.ID] = readyAt
		projectedLastShownAt = readyAt
	}
	return projections
}
