package internal

import (
	"context"
	"errors"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sourcegraph/conc"
	"net"
	"net/http"
	"os"
	"os/signal"
	"studymail/internal/controllers"
	"studymail/internal/providers"
	"studymail/internal/structures"
	"studymail/internal/tracker/interfaces"
	"strconv"
	"syscall"
	"time"
)

const shutdownGrace = 5 * time.Second

type App struct {
	WebServer *http.Server
}

// newHandler puts the instrumented and access-logged API routes behind the
// infrastructure endpoints (/health, /metrics).
func newHandler(healthController *controllers.HealthController, router providers.RouterProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, metricsEnabled bool) http.Handler {
	api := http.NewServeMux()
	router.Mount(api)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", healthController.Health)
	if metricsEnabled {
		root.Handle("GET /metrics", promhttp.Handler())
	}
	root.Handle("/", providers.AccessLogMiddleware(logger, providers.MetricsMiddleware(metrics, api)))
	return root
}

func NewApp(healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	app := &App{
		WebServer: &http.Server{
			Addr:        net.JoinHostPort(conf.WebServer.Host, strconv.Itoa(conf.WebServer.Port)),
			Handler:     newHandler(healthController, router, logger, metrics, conf.Metrics.Enabled),
			ReadTimeout: 5 * time.Second,
			// force_send holds the request open for the whole mail exchange
			WriteTimeout: conf.Mail.Timeout + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)

	// the catch-up cycle runs in the background, so the listener is not held
	// up by a slow mail transport
	scheduler.Init()

	err := app.serve(logger)
	scheduler.Stop()
	if err != nil {
		return nil, err
	}

	logger.Infof(providers.TypeApp, "gracefully stopped")
	logger.Close()
	return app, nil
}

// serve blocks until SIGINT/SIGTERM or a listener failure.
func (a *App) serve(logger providers.Logger) error {
	var lifecycle conc.WaitGroup
	defer lifecycle.Wait()

	serverErr := make(chan error, 1)
	lifecycle.Go(func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return a.WebServer.Shutdown(ctx)
}
