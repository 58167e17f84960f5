package schedule

import (
	"sync"

	"github.com/roylee0704/gron"

	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule/interfaces"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

// Scheduler owns the only background work in the daemon: keeping the manual
// popup cache warm. Queue evaluation itself stays pull-based; state writes
// happen per user action, so there is no periodic persistence loop.
type Scheduler struct {
	config *structures.Config
	logger providers.Logger
	loader interfaces.StateLoaderInterface
	source interfaces.ManualSourceInterface
	cron   *gron.Cron
	opsMu  sync.Mutex
}

func (s *Scheduler) Init() {
	if !s.config.ManualSource.Enabled {
		s.logger.Infof(providers.TypeApp, "Manual popup source disabled")
		return
	}

	s.cron = gron.New()
	interval := s.config.ManualSource.RefreshInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.source.Refresh(); err != nil {
			s.logger.Warnf(providers.TypeApp, "Manual popup refresh failed: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Manual popups refreshed: %d active", len(s.source.ActivePopups()))
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore primes the persisted state on startup, which runs the legacy key
// migration exactly once, and does a first manual-source fetch.
func (s *Scheduler) Restore() error {
	if _, err := s.loader.Load(); err != nil {
		return err
	}

	if s.config.ManualSource.Enabled {
		if err := s.source.Refresh(); err != nil {
			// Degraded, not fatal: evaluation proceeds without manual popups.
			s.logger.Warnf(providers.TypeApp, "Initial manual popup fetch failed: %s", err)
		}
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, loader interfaces.StateLoaderInterface, source interfaces.ManualSourceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config: config,
		logger: logger,
		loader: loader,
		source: source,
	}
}
