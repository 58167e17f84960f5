package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"github.com/tolicodes/playbuddy-sub001/internal/models"
	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule/interfaces"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

// manualCacheKey holds the last good payload so a flaky source does not
// blank out the merged queue between refreshes.
const manualCacheKey = "manual_popups"

// maxManualBody caps how much of the source response we will read.
const maxManualBody = 4 << 20

// HTTPClient abstracts http.Client for tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NextSummary describes the single winning popup across both queues.
type NextSummary struct {
	Source  string `json:"source"`
	ID      string `json:"id"`
	Label   string `json:"label"`
	ReadyAt int64  `json:"readyAt"`
}

type ManualPopupServiceInterface interface {
	ActivePopups() []models.ManualPopup
	Refresh() error
	Available() bool
	NextManual(installAt, now int64) *NextSummary
	MergeNext(local *NextSummary, installAt, now int64) *NextSummary
	MarkSeen(id string) error
	MarkHidden(id string) error
	SeenAt(id string) int64
	Hidden(id string) bool
}

// ManualPopupService pulls server-authored popups from a remote JSON feed.
// Fetch failure is non-fatal: the service falls back to the cached payload,
// and past that reports itself unavailable so the merge sees no manual
// popups for the tick.
type ManualPopupService struct {
	conf      *structures.Config
	logger    providers.Logger
	cache     providers.CacheProviderInterface
	metrics   providers.MetricsProviderInterface
	store     interfaces.StoreInterface
	client    HTTPClient
	available atomic.Bool
	now       func() int64

	mu     sync.RWMutex
	popups []models.ManualPopup
}

func NewManualPopupService(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, store interfaces.StoreInterface, client HTTPClient) ManualPopupServiceInterface {
	if client == nil {
		client = &http.Client{Timeout: conf.ManualSource.Timeout}
	}
	return &ManualPopupService{
		conf:    conf,
		logger:  logger,
		cache:   cache,
		metrics: metrics,
		store:   store,
		client:  client,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

func (ms *ManualPopupService) Available() bool {
	return ms.available.Load()
}

// ActivePopups returns the last successfully loaded set. Empty when the
// source is disabled or has never been reachable.
func (ms *ManualPopupService) ActivePopups() []models.ManualPopup {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]models.ManualPopup, len(ms.popups))
	copy(out, ms.popups)
	return out
}

func (ms *ManualPopupService) Refresh() error {
	if !ms.conf.ManualSource.Enabled {
		return nil
	}

	body, err := ms.fetch()
	if err != nil {
		ms.metrics.IncManualFetchErrors()
		ms.logger.Warnf(providers.TypeApp, "Manual popup fetch failed: %s", err)
		if cached, ok := ms.cache.Get(manualCacheKey); ok {
			body = cached
		} else {
			ms.available.Store(false)
			return err
		}
	}

	var popups []models.ManualPopup
	if err := json.Unmarshal(body, &popups); err != nil {
		ms.metrics.IncManualFetchErrors()
		ms.available.Store(false)
		return fmt.Errorf("decode manual popups: %w", err)
	}

	ms.cache.Set(manualCacheKey, body)

	ms.mu.Lock()
	ms.popups = popups
	ms.mu.Unlock()
	ms.available.Store(true)

	ms.logger.Debugf(providers.TypeApp, "Manual popups refreshed: %d entries", len(popups))
	return nil
}

func (ms *ManualPopupService) fetch() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ms.conf.ManualSource.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ms.conf.ManualSource.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ms.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ms.conf.ManualSource.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", ms.conf.ManualSource.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManualBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// NextManual picks the earliest-ready manual popup that may auto-show for
// a user installed at installAt. Scheduled popups become ready at their
// publish time; active ones are ready immediately.
func (ms *ManualPopupService) NextManual(installAt, now int64) *NextSummary {
	if !ms.Available() {
		return nil
	}

	var best *NextSummary
	for _, p := range ms.ActivePopups() {
		if !p.EligibleForAutoShow(installAt, now) {
			continue
		}
		readyAt := now
		if p.ActivationStatus(now) == models.ActivationScheduled {
			readyAt = p.PublishedAtMs()
		}
		if best == nil || readyAt < best.ReadyAt {
			best = &NextSummary{
				Source:  "manual",
				ID:      p.ID,
				Label:   p.Title,
				ReadyAt: readyAt,
			}
		}
	}
	return best
}

// MergeNext combines the local candidate with the manual queue. Earlier
// readyAt wins; the local queue wins ties.
func (ms *ManualPopupService) MergeNext(local *NextSummary, installAt, now int64) *NextSummary {
	manual := ms.NextManual(installAt, now)
	if local == nil {
		return manual
	}
	if manual == nil || local.ReadyAt <= manual.ReadyAt {
		return local
	}
	return manual
}

// Per-popup view flags. These live next to the unified state as standalone
// keys so a manual popup the server later deletes leaves no residue in the
// main document.

// MarkSeen records when the popup was first surfaced, as epoch millis. The
// legacy consumer stored the same stringified timestamp.
func (ms *ManualPopupService) MarkSeen(id string) error {
	return ms.store.Set(models.ManualSeenKey(id), []byte(strconv.FormatInt(ms.now(), 10)))
}

func (ms *ManualPopupService) MarkHidden(id string) error {
	return ms.store.Set(models.ManualHideKey(id), []byte("true"))
}

// SeenAt returns the recorded seen timestamp, or 0 when the popup has not
// been seen. Non-numeric residue in the key counts as unseen.
func (ms *ManualPopupService) SeenAt(id string) int64 {
	raw, ok, _ := ms.store.Get(models.ManualSeenKey(id))
	if !ok {
		return 0
	}
	seenAt, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || seenAt <= 0 {
		return 0
	}
	return seenAt
}

func (ms *ManualPopupService) Hidden(id string) bool {
	raw, ok, _ := ms.store.Get(models.ManualHideKey(id))
	return ok && string(raw) == "true"
}
