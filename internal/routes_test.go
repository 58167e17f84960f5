package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolicodes/playbuddy-sub001/internal/controllers"
	"github.com/tolicodes/playbuddy-sub001/internal/models"
	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule"
	"github.com/tolicodes/playbuddy-sub001/internal/services"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

// --- minimal mocks for routes test ---

type routeTestLogger struct{}

func (m *routeTestLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *routeTestLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *routeTestLogger) Close()                                                  {}

type routeTestService struct{}

func (m *routeTestService) Load() (*models.PopupManagerState, error) {
	return models.NewEmptyState(routeTestCatalog()), nil
}
func (m *routeTestService) GetNextPopupToShow(_ int64, _ schedule.EligibleFunc) (string, error) {
	return "", nil
}
func (m *routeTestService) RecordShown(_ string) error     { return nil }
func (m *routeTestService) RecordSnoozed(_ string) error   { return nil }
func (m *routeTestService) RecordDismissed(_ string) error { return nil }
func (m *routeTestService) ResetAll() error                { return nil }
func (m *routeTestService) ForcePopup(_ string) error      { return nil }
func (m *routeTestService) ClearForcedPopup() error        { return nil }
func (m *routeTestService) ForcedPopup() (string, error)   { return "", nil }
func (m *routeTestService) NextScheduled(_ int64, _ schedule.EligibleFunc) (*schedule.ScheduledPopup, error) {
	return nil, nil
}
func (m *routeTestService) Projection(_ int64) (map[string]int64, error) { return nil, nil }
func (m *routeTestService) LatestShown() (*models.LatestShown, error)    { return nil, nil }
func (m *routeTestService) Catalog() *models.Catalog                     { return routeTestCatalog() }

type routeTestManual struct{}

func (m *routeTestManual) ActivePopups() []models.ManualPopup               { return nil }
func (m *routeTestManual) Refresh() error                                   { return nil }
func (m *routeTestManual) Available() bool                                  { return false }
func (m *routeTestManual) NextManual(_, _ int64) *services.NextSummary      { return nil }
func (m *routeTestManual) MergeNext(local *services.NextSummary, _, _ int64) *services.NextSummary {
	return local
}
func (m *routeTestManual) MarkSeen(_ string) error   { return nil }
func (m *routeTestManual) MarkHidden(_ string) error { return nil }
func (m *routeTestManual) SeenAt(_ string) int64     { return 0 }
func (m *routeTestManual) Hidden(_ string) bool      { return false }

func routeTestCatalog() *models.Catalog {
	return models.NewCatalog(time.Minute, []models.PopupDefinition{{ID: "a", Label: "A"}})
}

func routeTestControllers() (*controllers.ApiController, *controllers.DebugController) {
	svc := &routeTestService{}
	manual := &routeTestManual{}
	logger := &routeTestLogger{}
	return controllers.NewApiController(logger, svc, manual),
		controllers.NewDebugController(logger, svc, manual)
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	ac, dc := routeTestControllers()
	router := InitRoutes(ac, dc, &structures.Config{})
	routes := router.GetRoutes()

	require.Len(t, routes, 11)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	assert.Contains(t, urls, "/next")
	assert.Contains(t, urls, "/actions/shown")
	assert.Contains(t, urls, "/actions/snoozed")
	assert.Contains(t, urls, "/actions/dismissed")
	assert.Contains(t, urls, "/reset")
	assert.Contains(t, urls, "/force")
	assert.Contains(t, urls, "/force/clear")
	assert.Contains(t, urls, "/schedule")
	assert.Contains(t, urls, "/upcoming")
	assert.Contains(t, urls, "/manual/seen")
	assert.Contains(t, urls, "/manual/hidden")
	assert.NotContains(t, urls, "/debug/popups")
}

func TestInitRoutes_DebugGated(t *testing.T) {
	ac, dc := routeTestControllers()
	router := InitRoutes(ac, dc, &structures.Config{Debug: true})
	routes := router.GetRoutes()

	require.Len(t, routes, 12)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}
	assert.Contains(t, urls, "/debug/popups")
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	ac, dc := routeTestControllers()
	router := InitRoutes(ac, dc, &structures.Config{})

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	// GET /next with POST should fail
	req := httptest.NewRequest(http.MethodPost, "/next", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// POST /reset with GET should fail
	req = httptest.NewRequest(http.MethodGet, "/reset", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
