package controllers

import (
	"net/http"
	"sort"

	"github.com/tolicodes/playbuddy-sub001/internal/models"
	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/services"
)

// DebugController renders the full inspection view: every catalog popup with
// its runtime state and projected show time, the manual feed with activation
// status, and the merged next candidate.
type DebugController struct {
	logger  providers.Logger
	service services.PopupServiceInterface
	manual  services.ManualPopupServiceInterface
}

func NewDebugController(logger providers.Logger, service services.PopupServiceInterface, manual services.ManualPopupServiceInterface) *DebugController {
	return &DebugController{
		logger:  logger,
		service: service,
		manual:  manual,
	}
}

type debugPopup struct {
	ID                 string `json:"id"`
	Label              string `json:"label"`
	InitialDelayMs     int64  `json:"initial_delay_ms"`
	SnoozeMs           int64  `json:"snooze_ms"`
	UsesSharedInterval bool   `json:"uses_shared_interval"`
	Dismissed          bool   `json:"dismissed"`
	SnoozeUntil        int64  `json:"snooze_until,omitempty"`
	LastShownAt        int64  `json:"last_shown_at,omitempty"`
	ProjectedAt        int64  `json:"projected_at,omitempty"`
	Ready              bool   `json:"ready"`
}

type debugManualPopup struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Activation string `json:"activation"`
	ShowAt     int64  `json:"show_at,omitempty"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`
	SeenAt     int64  `json:"seen_at,omitempty"`
	Hidden     bool   `json:"hidden"`
}

type debugResponse struct {
	Now              int64                 `json:"now"`
	FirstSeenAt      int64                 `json:"first_seen_at"`
	LastPopupShownAt int64                 `json:"last_popup_shown_at,omitempty"`
	SharedIntervalMs int64                 `json:"shared_interval_ms"`
	Forced           string                `json:"forced,omitempty"`
	LatestShown      *models.LatestShown   `json:"latest_shown,omitempty"`
	Popups           []debugPopup          `json:"popups"`
	Manual           []debugManualPopup    `json:"manual"`
	ManualAvailable  bool                  `json:"manual_available"`
	Next             *services.NextSummary `json:"next"`
}

func activationRank(status string) int {
	switch status {
	case models.ActivationActive:
		return 0
	case models.ActivationScheduled:
		return 1
	default:
		return 2
	}
}

func (dc *DebugController) Popups(w http.ResponseWriter, r *http.Request) {
	now := getNow(r)

	state, err := dc.service.Load()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	projection, err := dc.service.Projection(now)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	forced, err := dc.service.ForcedPopup()
	if err != nil {
		dc.logger.Warnf(providers.TypeApp, "Forced slot unreadable: %s", err)
	}
	latestShown, err := dc.service.LatestShown()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	catalog := dc.service.Catalog()
	popups := make([]debugPopup, 0, catalog.Len())
	for _, popup := range catalog.Popups() {
		entry := debugPopup{
			ID:                 popup.ID,
			Label:              popup.Label,
			InitialDelayMs:     popup.InitialDelayMs,
			SnoozeMs:           popup.SnoozeMs,
			UsesSharedInterval: popup.UseInterval,
			ProjectedAt:        projection[popup.ID],
		}
		if st := state.Popups[popup.ID]; st != nil {
			entry.Dismissed = st.Dismissed
			entry.SnoozeUntil = st.SnoozeUntil
			entry.LastShownAt = st.LastShownAt
		}
		entry.Ready = !entry.Dismissed && entry.ProjectedAt != 0 && entry.ProjectedAt <= now
		popups = append(popups, entry)
	}

	manualPopups := dc.manual.ActivePopups()
	// Never-published items sort as 0, ahead of published ones in the
	// same activation bucket.
	sort.SliceStable(manualPopups, func(i, j int) bool {
		ri, rj := activationRank(manualPopups[i].ActivationStatus(now)), activationRank(manualPopups[j].ActivationStatus(now))
		if ri != rj {
			return ri < rj
		}
		return manualPopups[i].PublishedAtMs() < manualPopups[j].PublishedAtMs()
	})
	manual := make([]debugManualPopup, 0, len(manualPopups))
	for _, p := range manualPopups {
		manual = append(manual, debugManualPopup{
			ID:         p.ID,
			Title:      p.Title,
			Status:     p.Status,
			Activation: p.ActivationStatus(now),
			ShowAt:     p.ShowAtMs(),
			ExpiresAt:  p.ExpiresAtMs(),
			SeenAt:     dc.manual.SeenAt(p.ID),
			Hidden:     dc.manual.Hidden(p.ID),
		})
	}

	var local *services.NextSummary
	if scheduled, err := dc.service.NextScheduled(now, nil); err == nil && scheduled != nil {
		popup, _ := catalog.Get(scheduled.ID)
		local = &services.NextSummary{
			Source:  "local",
			ID:      scheduled.ID,
			Label:   popup.Label,
			ReadyAt: scheduled.ReadyAt,
		}
	}

	writeJSON(w, http.StatusOK, debugResponse{
		Now:              now,
		FirstSeenAt:      state.FirstSeenAt,
		LastPopupShownAt: state.LastPopupShownAt,
		SharedIntervalMs: catalog.SharedIntervalMs,
		Forced:           forced,
		LatestShown:      latestShown,
		Popups:           popups,
		Manual:           manual,
		ManualAvailable:  dc.manual.Available(),
		Next:             dc.manual.MergeNext(local, state.FirstSeenAt, now),
	})
}
