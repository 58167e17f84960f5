package internal

import (
	"net/http"

	"github.com/tolicodes/playbuddy-sub001/internal/controllers"
	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, debugController *controllers.DebugController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/next", http.HandlerFunc(apiController.Next))
	routers.Post("/actions/shown", http.HandlerFunc(apiController.Shown))
	routers.Post("/actions/snoozed", http.HandlerFunc(apiController.Snoozed))
	routers.Post("/actions/dismissed", http.HandlerFunc(apiController.Dismissed))
	routers.Post("/reset", http.HandlerFunc(apiController.Reset))
	routers.Post("/force", http.HandlerFunc(apiController.Force))
	routers.Post("/force/clear", http.HandlerFunc(apiController.ForceClear))
	routers.Get("/schedule", http.HandlerFunc(apiController.Schedule))
	routers.Get("/upcoming", http.HandlerFunc(apiController.Upcoming))
	routers.Post("/manual/seen", http.HandlerFunc(apiController.ManualSeen))
	routers.Post("/manual/hidden", http.HandlerFunc(apiController.ManualHidden))

	// Inspection view is a debug-only surface.
	if conf.Debug {
		routers.Get("/debug/popups", http.HandlerFunc(debugController.Popups))
	}
	return routers
}
