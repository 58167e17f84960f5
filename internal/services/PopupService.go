package services

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tolicodes/playbuddy-sub001/internal/models"
	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule/interfaces"
)

// ErrUnknownPopup is returned for actions on ids the catalog does not know.
var ErrUnknownPopup = errors.New("unknown popup id")

// Evaluation results for metrics.
const (
	evalHit    = "hit"
	evalMiss   = "miss"
	evalForced = "forced"
)

type PopupServiceInterface interface {
	Load() (*models.PopupManagerState, error)
	GetNextPopupToShow(now int64, isEligible schedule.EligibleFunc) (string, error)
	RecordShown(id string) error
	RecordSnoozed(id string) error
	RecordDismissed(id string) error
	ResetAll() error
	ForcePopup(id string) error
	ClearForcedPopup() error
	ForcedPopup() (string, error)
	NextScheduled(now int64, isEligible schedule.EligibleFunc) (*schedule.ScheduledPopup, error)
	Projection(now int64) (map[string]int64, error)
	LatestShown() (*models.LatestShown, error)
	Catalog() *models.Catalog
}

// PopupService owns the load-mutate-persist cycle around the readiness
// engine. Every user action runs under opsMu so a second action never
// observes (or clobbers) a half-persisted aggregate.
type PopupService struct {
	engine     *schedule.Engine
	store      interfaces.StoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	opsMu      sync.Mutex
	now        func() int64
}

func NewPopupService(engine *schedule.Engine, store interfaces.StoreInterface, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PopupServiceInterface {
	return &PopupService{
		engine:     engine,
		store:      store,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		now:        func() int64 { return time.Now().UnixMilli() },
	}
}

func (ps *PopupService) Catalog() *models.Catalog {
	return ps.engine.Catalog()
}

// Load reads the unified document, folds in any legacy single-popup keys,
// stamps firstSeenAt on first run, and writes the normalized form back.
// Corrupt or unreadable state falls back to a fresh document; only a failed
// write surfaces as an error.
func (ps *PopupService) Load() (*models.PopupManagerState, error) {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()
	return ps.loadLocked()
}

func (ps *PopupService) loadLocked() (*models.PopupManagerState, error) {
	catalog := ps.engine.Catalog()

	raw, found, err := ps.store.Get(models.StateKey)
	if err != nil {
		ps.logger.Warnf(providers.TypeApp, "State unreadable, starting fresh: %s", err)
		raw, found = nil, false
	}
	if found {
		decompressed, err := ps.compressor.Decompress(raw)
		if err != nil {
			ps.logger.Warnf(providers.TypeApp, "State corrupt, starting fresh: %s", err)
			raw = nil
		} else {
			raw = decompressed
		}
	}
	state := models.ParseState(catalog, raw)

	migrated := ps.migrateLegacyLocked(state)

	if state.FirstSeenAt == 0 {
		state.FirstSeenAt = ps.now()
		migrated = true
	}

	state = models.Normalize(catalog, state)

	if !found || migrated {
		if err := ps.persistLocked(state); err != nil {
			return nil, err
		}
	}
	if migrated {
		ps.deleteLegacyKeysLocked()
	}

	return state, nil
}

// migrateLegacyLocked folds the three pre-unified keys into the legacy
// popup's runtime state. Absent keys are a no-op, so repeated runs are safe.
func (ps *PopupService) migrateLegacyLocked(state *models.PopupManagerState) bool {
	migrated := false
	legacy := state.Popups[models.LegacyPopupID]
	if legacy == nil {
		legacy = &models.PopupRuntimeState{}
		state.Popups[models.LegacyPopupID] = legacy
	}

	if raw, ok, _ := ps.store.Get(models.LegacyHideKey); ok {
		if string(raw) == "true" && !legacy.Dismissed {
			legacy.Dismissed = true
			migrated = true
		}
	}

	if raw, ok, _ := ps.store.Get(models.LegacySnoozeKey); ok {
		// Any non-zero value counts, even a bogus negative one: it is an
		// expired floor and falls out of ReadyAt naturally.
		if snooze, err := strconv.ParseInt(string(raw), 10, 64); err == nil && snooze != 0 {
			legacy.SnoozeUntil = snooze
			migrated = true
		}
	}

	if raw, ok, _ := ps.store.Get(models.LegacyTimerKey); ok && state.FirstSeenAt == 0 {
		if timer, err := strconv.ParseInt(string(raw), 10, 64); err == nil && timer > 0 {
			state.FirstSeenAt = timer
			migrated = true
		}
	}

	if migrated {
		ps.logger.Warnf(providers.TypeApp, "Migrated legacy popup keys into unified state")
	}
	return migrated
}

func (ps *PopupService) deleteLegacyKeysLocked() {
	for _, key := range []string{models.LegacyTimerKey, models.LegacyHideKey, models.LegacySnoozeKey} {
		if err := ps.store.Delete(key); err != nil {
			ps.logger.Warnf(providers.TypeApp, "Failed to delete legacy key %s: %s", key, err)
		}
	}
}

func (ps *PopupService) persistLocked(state *models.PopupManagerState) error {
	start := time.Now()

	jsonData, err := json.Marshal(models.Normalize(ps.engine.Catalog(), state))
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data, err := ps.compressor.Compress(jsonData)
	if err != nil {
		return fmt.Errorf("compress state: %w", err)
	}
	if err := ps.store.Set(models.StateKey, data); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	ps.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

// GetNextPopupToShow checks the forced-override slot first, then the normal
// queue. A forced id is consume-once: returning it stamps it shown and
// clears the slot. Unknown forced ids self-clear.
func (ps *PopupService) GetNextPopupToShow(now int64, isEligible schedule.EligibleFunc) (string, error) {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	state, err := ps.loadLocked()
	if err != nil {
		return "", err
	}

	if raw, ok, _ := ps.store.Get(models.ForcedPopupKey); ok {
		forcedID := string(raw)
		if !ps.engine.Catalog().Has(forcedID) {
			ps.logger.Warnf(providers.TypeApp, "Clearing forced popup %q: not in catalog", forcedID)
			_ = ps.store.Delete(models.ForcedPopupKey)
		} else {
			st := state.Popups[forcedID]
			st.Dismissed = false
			st.SnoozeUntil = 0
			st.LastShownAt = now
			if now > state.LastPopupShownAt {
				state.LastPopupShownAt = now
			}
			if err := ps.persistLocked(state); err != nil {
				return "", err
			}
			if err := ps.store.Delete(models.ForcedPopupKey); err != nil {
				return "", fmt.Errorf("clear forced popup: %w", err)
			}
			ps.metrics.IncEvaluationsTotal(evalForced)
			ps.metrics.IncPopupShown(forcedID)
			return forcedID, nil
		}
	}

	id := ps.engine.NextEligible(state, now, isEligible)
	if id == "" {
		ps.metrics.IncEvaluationsTotal(evalMiss)
	} else {
		ps.metrics.IncEvaluationsTotal(evalHit)
	}
	return id, nil
}

func (ps *PopupService) mutate(id string, fn func(state *models.PopupManagerState, st *models.PopupRuntimeState, now int64)) error {
	if !ps.engine.Catalog().Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}

	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	state, err := ps.loadLocked()
	if err != nil {
		return err
	}
	fn(state, state.Popups[id], ps.now())
	return ps.persistLocked(state)
}

func (ps *PopupService) RecordShown(id string) error {
	err := ps.mutate(id, func(state *models.PopupManagerState, st *models.PopupRuntimeState, now int64) {
		st.LastShownAt = now
		if now > state.LastPopupShownAt {
			state.LastPopupShownAt = now
		}
	})
	if err == nil {
		ps.metrics.IncPopupShown(id)
	}
	return err
}

func (ps *PopupService) RecordSnoozed(id string) error {
	popup, _ := ps.engine.Catalog().Get(id)
	return ps.mutate(id, func(_ *models.PopupManagerState, st *models.PopupRuntimeState, now int64) {
		st.SnoozeUntil = now + popup.SnoozeMs
	})
}

func (ps *PopupService) RecordDismissed(id string) error {
	return ps.mutate(id, func(_ *models.PopupManagerState, st *models.PopupRuntimeState, _ int64) {
		st.Dismissed = true
		st.SnoozeUntil = 0
	})
}

// ResetAll clears all runtime state, re-stamps firstSeenAt and drops any
// forced override. Administrative/testing path only.
func (ps *PopupService) ResetAll() error {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	state := models.NewEmptyState(ps.engine.Catalog())
	state.FirstSeenAt = ps.now()
	if err := ps.persistLocked(state); err != nil {
		return err
	}
	return ps.store.Delete(models.ForcedPopupKey)
}

func (ps *PopupService) ForcePopup(id string) error {
	if !ps.engine.Catalog().Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()
	return ps.store.Set(models.ForcedPopupKey, []byte(id))
}

func (ps *PopupService) ClearForcedPopup() error {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()
	return ps.store.Delete(models.ForcedPopupKey)
}

// ForcedPopup reads the override slot without consuming it. Ids the catalog
// no longer knows are cleared and reported as absent.
func (ps *PopupService) ForcedPopup() (string, error) {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	raw, ok, err := ps.store.Get(models.ForcedPopupKey)
	if err != nil || !ok {
		return "", err
	}
	id := string(raw)
	if !ps.engine.Catalog().Has(id) {
		_ = ps.store.Delete(models.ForcedPopupKey)
		return "", nil
	}
	return id, nil
}

func (ps *PopupService) NextScheduled(now int64, isEligible schedule.EligibleFunc) (*schedule.ScheduledPopup, error) {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	state, err := ps.loadLocked()
	if err != nil {
		return nil, err
	}
	return ps.engine.NextScheduled(state, now, isEligible), nil
}

func (ps *PopupService) Projection(now int64) (map[string]int64, error) {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	state, err := ps.loadLocked()
	if err != nil {
		return nil, err
	}
	return ps.engine.Projection(state, now), nil
}

func (ps *PopupService) LatestShown() (*models.LatestShown, error) {
	ps.opsMu.Lock()
	defer ps.opsMu.Unlock()

	state, err := ps.loadLocked()
	if err != nil {
		return nil, err
	}
	return models.FindLatestShown(ps.engine.Catalog(), state.Popups), nil
}
