//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"github.com/tolicodes/playbuddy-sub001/internal"
	"github.com/tolicodes/playbuddy-sub001/internal/controllers"
	"github.com/tolicodes/playbuddy-sub001/internal/models"
	"github.com/tolicodes/playbuddy-sub001/internal/providers"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule"
	"github.com/tolicodes/playbuddy-sub001/internal/services"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		models.NewCatalogFromConfig,
		schedule.NewEngine,
		schedule.NewZstdCompressor,
		provideStore,
		provideHTTPClient,
		services.NewPopupService,
		services.NewManualPopupService,
		provideStateLoader,
		provideManualSource,
		schedule.NewScheduler,
		controllers.NewApiController,
		controllers.NewDebugController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
