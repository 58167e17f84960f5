package models

import (
	json "github.com/goccy/go-json"
)

// PopupRuntimeState is the mutable per-popup record. Zero value means the
// popup has never been shown, snoozed, or dismissed.
type PopupRuntimeState struct {
	Dismissed   bool  `json:"dismissed,omitempty"`
	SnoozeUntil int64 `json:"snoozeUntil,omitempty"`
	LastShownAt int64 `json:"lastShownAt,omitempty"`
}

// PopupManagerState is the aggregate persisted document. All timestamps are
// epoch milliseconds; zero means unset (matches the legacy client format).
type PopupManagerState struct {
	FirstSeenAt      int64                         `json:"firstSeenAt,omitempty"`
	LastPopupShownAt int64                         `json:"lastPopupShownAt,omitempty"`
	Popups           map[string]*PopupRuntimeState `json:"popups"`
}

// LatestShown identifies the most recently shown popup.
type LatestShown struct {
	ID string
	At int64
}

func createPopupMap(c *Catalog, popups map[string]*PopupRuntimeState) map[string]*PopupRuntimeState {
	out := make(map[string]*PopupRuntimeState, c.Len())
	for _, id := range c.IDs() {
		if st, ok := popups[id]; ok && st != nil {
			copy := *st
			out[id] = &copy
		} else {
			out[id] = &PopupRuntimeState{}
		}
	}
	return out
}

// FindLatestShown returns the popup with the greatest lastShownAt, scanning
// in catalog order, or nil when nothing has ever shown.
func FindLatestShown(c *Catalog, popups map[string]*PopupRuntimeState) *LatestShown {
	var latest *LatestShown
	for _, id := range c.IDs() {
		st := popups[id]
		if st == nil || st.LastShownAt == 0 {
			continue
		}
		if latest == nil || st.LastShownAt > latest.At {
			latest = &LatestShown{ID: id, At: st.LastShownAt}
		}
	}
	return latest
}

func NewEmptyState(c *Catalog) *PopupManagerState {
	return &PopupManagerState{
		Popups: createPopupMap(c, nil),
	}
}

// Normalize fills in missing catalog entries and recomputes the aggregate
// lastPopupShownAt as max(stored, max per-popup lastShownAt). firstSeenAt is
// left untouched. Unknown ids (catalog shrank) are dropped.
func Normalize(c *Catalog, state *PopupManagerState) *PopupManagerState {
	if state == nil {
		return NewEmptyState(c)
	}
	popups := createPopupMap(c, state.Popups)

	last := state.LastPopupShownAt
	if latest := FindLatestShown(c, popups); latest != nil && latest.At > last {
		last = latest.At
	}

	return &PopupManagerState{
		FirstSeenAt:      state.FirstSeenAt,
		LastPopupShownAt: last,
		Popups:           popups,
	}
}

// ParseState decodes a persisted document, falling back to an empty state on
// missing or corrupt input. Corrupt state is recoverable, never an error.
func ParseState(c *Catalog, raw []byte) *PopupManagerState {
	if len(raw) == 0 {
		return NewEmptyState(c)
	}
	var state PopupManagerState
	if err := json.Unmarshal(raw, &state); err != nil {
		return NewEmptyState(c)
	}
	return Normalize(c, &state)
}

// Clone returns a deep copy, so callers can mutate without aliasing the
// loaded snapshot.
func (s *PopupManagerState) Clone() *PopupManagerState {
	popups := make(map[string]*PopupRuntimeState, len(s.Popups))
	for id, st := range s.Popups {
		if st == nil {
			popups[id] = &PopupRuntimeState{}
			continue
		}
		copy := *st
		popups[id] = &copy
	}
	return &PopupManagerState{
		FirstSeenAt:      s.FirstSeenAt,
		LastPopupShownAt: s.LastPopupShownAt,
		Popups:           popups,
	}
}
