package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule"
	"github.com/tolicodes/playbuddy-sub001/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger  providers.Logger
	service services.PopupServiceInterface
	manual  services.ManualPopupServiceInterface
}

func NewApiController(logger providers.Logger, service services.PopupServiceInterface, manual services.ManualPopupServiceInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		manual:  manual,
	}
}

// getNow reads the optional ?now=<epoch ms> override, defaulting to wall
// clock. The override exists for the hosting UI's preview/testing flows.
func getNow(r *http.Request) int64 {
	if raw := r.URL.Query().Get("now"); raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil && ms > 0 {
			return ms
		}
	}
	return time.Now().UnixMilli()
}

// getEligibility turns the optional ?skip=<id,id> veto list into an
// EligibleFunc. Absent means everything is eligible.
func getEligibility(r *http.Request) schedule.EligibleFunc {
	raw := r.URL.Query().Get("skip")
	if raw == "" {
		return nil
	}
	vetoed := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			vetoed[id] = true
		}
	}
	return func(id string) bool { return !vetoed[id] }
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) decodeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", false
	}
	return payload.ID, true
}

func (ac *ApiController) handleActionError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, services.ErrUnknownPopup):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		ac.logger.Errorf(providers.TypeApp, "Action failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Next is the main tick: forced override first, then the positional queue.
func (ac *ApiController) Next(w http.ResponseWriter, r *http.Request) {
	id, err := ac.service.GetNextPopupToShow(getNow(r), getEligibility(r))
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Next evaluation failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var payload struct {
		ID *string `json:"id"`
	}
	if id != "" {
		payload.ID = &id
	}
	writeJSON(w, http.StatusOK, payload)
}

func (ac *ApiController) Shown(w http.ResponseWriter, r *http.Request) {
	id, ok := ac.decodeID(w, r)
	if !ok {
		return
	}
	ac.handleActionError(w, ac.service.RecordShown(id))
}

func (ac *ApiController) Snoozed(w http.ResponseWriter, r *http.Request) {
	id, ok := ac.decodeID(w, r)
	if !ok {
		return
	}
	ac.handleActionError(w, ac.service.RecordSnoozed(id))
}

func (ac *ApiController) Dismissed(w http.ResponseWriter, r *http.Request) {
	id, ok := ac.decodeID(w, r)
	if !ok {
		return
	}
	ac.handleActionError(w, ac.service.RecordDismissed(id))
}

func (ac *ApiController) Reset(w http.ResponseWriter, r *http.Request) {
	if err := ac.service.ResetAll(); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Reset failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) Force(w http.ResponseWriter, r *http.Request) {
	id, ok := ac.decodeID(w, r)
	if !ok {
		return
	}
	ac.handleActionError(w, ac.service.ForcePopup(id))
}

func (ac *ApiController) ForceClear(w http.ResponseWriter, r *http.Request) {
	if err := ac.service.ClearForcedPopup(); err != nil {
		ac.logger.Errorf(providers.TypeApp, "Force clear failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleEntry struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	ProjectedAt int64  `json:"projected_at,omitempty"`
	Dismissed   bool   `json:"dismissed"`
	SnoozeUntil int64  `json:"snooze_until,omitempty"`
	LastShownAt int64  `json:"last_shown_at,omitempty"`
}

// Schedule reports the projected show time of every catalog popup.
func (ac *ApiController) Schedule(w http.ResponseWriter, r *http.Request) {
	now := getNow(r)

	state, err := ac.service.Load()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	projection, err := ac.service.Projection(now)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	catalog := ac.service.Catalog()
	entries := make([]scheduleEntry, 0, catalog.Len())
	for _, popup := range catalog.Popups() {
		entry := scheduleEntry{
			ID:          popup.ID,
			Label:       popup.Label,
			ProjectedAt: projection[popup.ID],
		}
		if st := state.Popups[popup.ID]; st != nil {
			entry.Dismissed = st.Dismissed
			entry.SnoozeUntil = st.SnoozeUntil
			entry.LastShownAt = st.LastShownAt
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, struct {
		Now     int64           `json:"now"`
		Entries []scheduleEntry `json:"entries"`
	}{Now: now, Entries: entries})
}

// Upcoming reports the single earliest-ready candidate across the local
// catalog queue and the manual feed.
func (ac *ApiController) Upcoming(w http.ResponseWriter, r *http.Request) {
	now := getNow(r)

	state, err := ac.service.Load()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	scheduled, err := ac.service.NextScheduled(now, getEligibility(r))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var local *services.NextSummary
	if scheduled != nil {
		popup, _ := ac.service.Catalog().Get(scheduled.ID)
		local = &services.NextSummary{
			Source:  "local",
			ID:      scheduled.ID,
			Label:   popup.Label,
			ReadyAt: scheduled.ReadyAt,
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Now             int64                 `json:"now"`
		Next            *services.NextSummary `json:"next"`
		ManualAvailable bool                  `json:"manual_available"`
	}{
		Now:             now,
		Next:            ac.manual.MergeNext(local, state.FirstSeenAt, now),
		ManualAvailable: ac.manual.Available(),
	})
}

func (ac *ApiController) ManualSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := ac.decodeID(w, r)
	if !ok {
		return
	}
	if err := ac.manual.MarkSeen(id); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ManualHidden(w http.ResponseWriter, r *http.Request) {
	id, ok := ac.decodeID(w, r)
	if !ok {
		return
	}
	if err := ac.manual.MarkHidden(id); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
