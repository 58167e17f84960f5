package models

import (
	"time"

	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

const dayMs = 24 * 60 * 60 * 1000

// DefaultSharedInterval is the minimum gap between any two popups that
// opt into the shared gate.
const DefaultSharedInterval = 3 * 24 * time.Hour

const defaultSnoozeMs = 14 * dayMs

// PopupDefinition is one immutable catalog entry. Priority is the position
// in the catalog, not a field.
type PopupDefinition struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	InitialDelayMs int64  `json:"initial_delay_ms"`
	SnoozeMs       int64  `json:"snooze_ms"`
	UseInterval    bool   `json:"use_interval"`
}

// Catalog is the fixed, ordered set of known popups plus the shared
// minimum-interval duration.
type Catalog struct {
	SharedIntervalMs int64
	popups           []PopupDefinition
	byID             map[string]int
}

func NewCatalog(sharedInterval time.Duration, popups []PopupDefinition) *Catalog {
	byID := make(map[string]int, len(popups))
	for i, p := range popups {
		byID[p.ID] = i
	}
	return &Catalog{
		SharedIntervalMs: sharedInterval.Milliseconds(),
		popups:           popups,
		byID:             byID,
	}
}

// NewCatalogFromConfig builds the catalog from config, falling back to the
// default schedule when no entries are configured.
func NewCatalogFromConfig(conf *structures.Config) *Catalog {
	interval := conf.Popup.SharedInterval
	if interval <= 0 {
		interval = DefaultSharedInterval
	}
	if len(conf.Popup.Catalog) == 0 {
		return NewCatalog(interval, DefaultSchedule())
	}
	popups := make([]PopupDefinition, 0, len(conf.Popup.Catalog))
	for _, entry := range conf.Popup.Catalog {
		snooze := entry.Snooze.Milliseconds()
		if snooze <= 0 {
			snooze = defaultSnoozeMs
		}
		popups = append(popups, PopupDefinition{
			ID:             entry.ID,
			Label:          entry.Label,
			InitialDelayMs: entry.InitialDelay.Milliseconds(),
			SnoozeMs:       snooze,
			UseInterval:    entry.UseInterval,
		})
	}
	return NewCatalog(interval, popups)
}

func (c *Catalog) Len() int {
	return len(c.popups)
}

// Popups returns catalog entries in priority order.
func (c *Catalog) Popups() []PopupDefinition {
	return c.popups
}

func (c *Catalog) Get(id string) (PopupDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return PopupDefinition{}, false
	}
	return c.popups[i], true
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// IDs returns popup ids in priority order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.popups))
	for i, p := range c.popups {
		ids[i] = p.ID
	}
	return ids
}

// DefaultSchedule is the built-in onboarding/engagement schedule.
func DefaultSchedule() []PopupDefinition {
	const (
		listViewIntroDelayMs    = 3 * 60 * 1000
		calendarAddCoachDelayMs = 5 * 60 * 1000
		newsletterDelayMs       = 3 * dayMs
		shareCalendarDelayMs    = newsletterDelayMs
		edgePlayDelayMs         = 6 * dayMs
		rateAppDelayMs          = 9 * dayMs
		discoverGameDelayMs     = 12 * dayMs
	)
	sharedIntervalMs := DefaultSharedInterval.Milliseconds()

	return []PopupDefinition{
		{ID: "list_view_intro", Label: "Switch to classic view", InitialDelayMs: listViewIntroDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: false},
		{ID: "calendar_add_coach", Label: "Add To Calendar", InitialDelayMs: calendarAddCoachDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: false},
		{ID: "share_calendar", Label: "Share your calendar", InitialDelayMs: shareCalendarDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: true},
		{ID: "newsletter_signup", Label: "Weekly newsletter", InitialDelayMs: newsletterDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: true},
		{ID: "whatsapp_group", Label: "EdgePlay WhatsApp group", InitialDelayMs: edgePlayDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: true},
		{ID: "rate_app", Label: "Rate the app", InitialDelayMs: rateAppDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: true},
		{ID: "notifications_prompt", Label: "Enable notifications", InitialDelayMs: rateAppDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: false},
		{ID: "discover_game", Label: "Try Discover Game", InitialDelayMs: discoverGameDelayMs, SnoozeMs: defaultSnoozeMs, UseInterval: true},
		{ID: "buddy_list_coach", Label: "Buddy list coach", InitialDelayMs: discoverGameDelayMs + sharedIntervalMs, SnoozeMs: defaultSnoozeMs, UseInterval: true},
	}
}
