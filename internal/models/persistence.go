package models

// Storage keys in the key-value store. The unified document replaced three
// single-popup legacy keys which are folded in and deleted on first load.
const (
	StateKey       = "popup_manager_state_v1"
	ForcedPopupKey = "popup_manager_force_popup"

	LegacyTimerKey  = "edgeplay_modal_timer"
	LegacyHideKey   = "edgeplay_modal_hide"
	LegacySnoozeKey = "edgeplay_modal_snooze"

	// LegacyPopupID is the popup the legacy keys belonged to.
	LegacyPopupID = "whatsapp_group"

	ManualHideKeyPrefix = "event_popup_hide_"
	ManualSeenKeyPrefix = "event_popup_seen_"
)

func ManualHideKey(id string) string { return ManualHideKeyPrefix + id }
func ManualSeenKey(id string) string { return ManualSeenKeyPrefix + id }
