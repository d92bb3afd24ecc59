package internal

import (
	"net/http"
	"studymail/internal/controllers"
	"studymail/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, healthController *controllers.HealthController, limiter *providers.RateLimiter) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/{$}", http.HandlerFunc(healthController.Status))
	routers.Get("/env_check", http.HandlerFunc(healthController.EnvCheck))
	routers.Post("/upload_state", http.HandlerFunc(apiController.UploadState), limiter.Wrap)
	routers.Post("/force_send", http.HandlerFunc(apiController.ForceSend), limiter.Wrap)
	return routers
}
