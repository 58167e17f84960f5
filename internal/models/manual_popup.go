package models

import "time"

// Manual popup lifecycle status as reported by the server.
const (
	ManualStatusDraft     = "draft"
	ManualStatusPublished = "published"
	ManualStatusStopped   = "stopped"
)

// Activation states derived from the publish/expiry window.
const (
	ActivationScheduled = "scheduled"
	ActivationActive    = "active"
	ActivationExpired   = "expired"
)

// ManualEvent is the optional event a manual popup is linked to. The popup
// dies with the event: once the event ends it can no longer activate.
type ManualEvent struct {
	Name      string `json:"name,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// ManualPopup is a server-authored ad-hoc popup. It carries no relationship
// to the local catalog; activation is governed purely by its publish/expiry
// window, never by delay or interval floors.
type ManualPopup struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	BodyMarkdown string       `json:"body_markdown,omitempty"`
	Status       string       `json:"status"`
	EventID      int64        `json:"event_id,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
	PublishedAt  string       `json:"published_at,omitempty"`
	ExpiresAt    string       `json:"expires_at,omitempty"`
	Event        *ManualEvent `json:"event,omitempty"`
}

// ParseISOMillis converts an RFC 3339 timestamp to epoch milliseconds.
// Empty or malformed input yields 0 (unset).
func ParseISOMillis(value string) int64 {
	if value == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

func (p *ManualPopup) CreatedAtMs() int64   { return ParseISOMillis(p.CreatedAt) }
func (p *ManualPopup) PublishedAtMs() int64 { return ParseISOMillis(p.PublishedAt) }
func (p *ManualPopup) ExpiresAtMs() int64   { return ParseISOMillis(p.ExpiresAt) }

// ShowAtMs is the instant the popup becomes publicly visible: its publish
// time, or creation time if it was never explicitly published.
func (p *ManualPopup) ShowAtMs() int64 {
	if at := p.PublishedAtMs(); at != 0 {
		return at
	}
	return p.CreatedAtMs()
}

// EventEndAtMs is when the linked event ends; falls back to the start date
// when no end is known.
func (p *ManualPopup) EventEndAtMs() int64 {
	if p.Event == nil {
		return 0
	}
	if at := ParseISOMillis(p.Event.EndDate); at != 0 {
		return at
	}
	return ParseISOMillis(p.Event.StartDate)
}

func (p *ManualPopup) Expired(now int64) bool {
	if at := p.EventEndAtMs(); at != 0 && at <= now {
		return true
	}
	if at := p.ExpiresAtMs(); at != 0 && at <= now {
		return true
	}
	return false
}

// ActivationStatus classifies the popup against its window at now.
func (p *ManualPopup) ActivationStatus(now int64) string {
	if p.Expired(now) {
		return ActivationExpired
	}
	if at := p.PublishedAtMs(); at != 0 && at > now {
		return ActivationScheduled
	}
	return ActivationActive
}

// CreatedAfter reports whether the popup was created after the given install
// timestamp. Such popups cannot have been scheduled for a pre-install user
// and are excluded from automatic surfacing.
func (p *ManualPopup) CreatedAfter(installAt int64) bool {
	created := p.CreatedAtMs()
	return installAt != 0 && created != 0 && created > installAt
}

// EligibleForAutoShow reports whether the popup may be surfaced without a
// manual trigger.
func (p *ManualPopup) EligibleForAutoShow(installAt, now int64) bool {
	if p.Status == ManualStatusStopped || p.Status == ManualStatusDraft {
		return false
	}
	if p.Expired(now) {
		return false
	}
	if p.CreatedAfter(installAt) {
		return false
	}
	return true
}
