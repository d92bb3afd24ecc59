//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"studymail/internal"
	"studymail/internal/controllers"
	"studymail/internal/notifier"
	"studymail/internal/providers"
	"studymail/internal/services"
	"studymail/internal/structures"
	"studymail/internal/tracker"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,

	tracker.NewCompressor,
	tracker.NewFileStore,
	notifier.NewNotifier,
	services.NewWatcherService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		coreSet,
		providers.NewRateLimiter,
		tracker.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitService(cfg *structures.CliFlags) (services.WatcherServiceInterface, error) {

	wire.Build(coreSet)

	return nil, nil
}
