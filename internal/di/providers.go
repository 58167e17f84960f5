package di

import (
	"net/http"

	"github.com/tolicodes/playbuddy-sub001/internal/schedule"
	"github.com/tolicodes/playbuddy-sub001/internal/schedule/interfaces"
	"github.com/tolicodes/playbuddy-sub001/internal/services"
	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

func provideStore(conf *structures.Config) (interfaces.StoreInterface, error) {
	return schedule.NewFileStore(conf.Persistence.Dir)
}

func provideHTTPClient(conf *structures.Config) services.HTTPClient {
	return &http.Client{Timeout: conf.ManualSource.Timeout}
}

func provideStateLoader(s services.PopupServiceInterface) interfaces.StateLoaderInterface {
	return s
}

func provideManualSource(s services.ManualPopupServiceInterface) interfaces.ManualSourceInterface {
	return s
}
