package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/jobz/config"
	"github.com/target/jobz/internal/adapters/awx"
	"github.com/target/jobz/internal/adapters/realtime"
	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/data"
	"github.com/target/jobz/internal/domain/model"
	"github.com/target/jobz/internal/observability/errreport"
	"github.com/target/jobz/internal/observability/loading"
	"github.com/target/jobz/internal/observability/notify"
	"github.com/target/jobz/internal/observability/notify/slack"
	"github.com/target/jobz/internal/observability/statsd"
	"github.com/target/jobz/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Resolver      *service.PageResolverService
	Binder        *service.SubscriptionBinder
	Realtime      *realtime.Service // nil when the realtime service is disabled
	Errors        *errreport.Reporter
	Loading       *loading.Indicator
	Cache         *data.RedisCacheRepo // nil without Redis
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink    *statsd.Client
	MetricsConfig  config.ObservabilityMetricsConfig
	Notifier       notify.Sink
	NotifierConfig config.ObservabilityNotificationsConfig
}

// Sink returns the metrics sink, or nil when metrics are disabled.
//
//nolint:ireturn // a nil interface keeps optional metrics off in every consumer.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient // Optional
	HTTPClient  *http.Client          // Optional: overrides the AWX client transport
	Logger      *slog.Logger
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig, awxURL string) ObservabilityContainer {
	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  statsd.DefaultPrefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:    metricsSink,
		MetricsConfig:  cfg.Metrics,
		Notifier:       buildNotifier(logger, cfg.Notifications, awxURL),
		NotifierConfig: cfg.Notifications,
	}
}

// buildNotifier returns the Slack sink when notifications are enabled.
//
//nolint:ireturn // nil interface disables forwarding in the error reporter.
func buildNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig, awxURL string) notify.Sink {
	if !cfg.Enabled || !cfg.Slack.Enabled {
		return nil
	}
	client, err := slack.NewClient(slack.Config{
		WebhookURL: cfg.Slack.WebhookURL,
		Channel:    cfg.Slack.Channel,
		Username:   cfg.Slack.Username,
		Timeout:    cfg.Timeout,
		RetryLimit: cfg.RetryLimit,
		AWXURL:     awxURL,
	})
	if err != nil {
		logger.Error("failed to initialise slack notifier", "error", err)
		return nil
	}
	logger.Info("slack notifications enabled", "channel", cfg.Slack.Channel)
	return client
}

// newOptionsCache builds the Redis-backed OPTIONS cache, or nil without Redis.
func newOptionsCache(client redis.UniversalClient, cfg config.CacheConfig) (*data.RedisCacheRepo, *core.OptionsCacheService) {
	if client == nil {
		return nil, nil
	}
	repo := data.NewRedisCacheRepo(data.RedisCacheRepoOptions{Client: client})
	return repo, core.NewOptionsCacheService(core.OptionsCacheServiceOptions{
		Cache:  repo,
		Config: core.OptionsCacheConfig{TTL: cfg.OptionsTTL},
	})
}

// detachedRegistrar stands in for the realtime service when it is disabled.
type detachedRegistrar struct {
	logger *slog.Logger
}

func (r detachedRegistrar) AddStateResolve(_ model.SocketState, id string) {
	r.logger.Debug("realtime disabled, subscription not joined", "id", id)
}

// NewServices wires the AWX adapters, the resolver and the subscription binder.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := buildObservability(logger, cfg.Observability, cfg.AWX.BaseURL)
	cacheRepo, optionsCache := newOptionsCache(deps.RedisClient, cfg.Cache)

	// The REST client and the socket share session cookies so the socket can
	// echo the csrftoken AWX hands out.
	jar, err := awx.NewCookieJar()
	if err != nil {
		return ServiceContainer{}, err
	}

	client, err := awx.NewClient(awx.ClientOptions{
		Config: awx.Config{
			BaseURL: cfg.AWX.BaseURL,
			Token:   cfg.AWX.Token,
			Timeout: cfg.AWX.Timeout,
		},
		Options:    optionsCache,
		HTTPClient: deps.HTTPClient,
		Jar:        jar,
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("awx client: %w", err)
	}

	var (
		rt        *realtime.Service
		registrar core.SubscriptionRegistrar = detachedRegistrar{logger: logger}
	)
	if cfg.IsRealtimeEnabled() {
		rt, err = realtime.New(realtime.Options{
			Config: realtime.Config{
				URL:               cfg.Realtime.URL,
				Token:             cfg.AWX.Token,
				ReconnectInterval: cfg.Realtime.ReconnectInterval,
				Buffer:            cfg.Realtime.Buffer,
			},
			Jar:     jar,
			Metrics: obs.Sink(),
			Logger:  logger,
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("realtime service: %w", err)
		}
		registrar = rt
	}

	errs := errreport.New(errreport.Options{
		Logger:        logger,
		Metrics:       obs.Sink(),
		Notifier:      obs.Notifier,
		NotifyTimeout: cfg.Observability.Notifications.Timeout,
	})
	indicator := loading.New(loading.Options{Metrics: obs.Sink(), Logger: logger})

	return ServiceContainer{
		Resolver: service.MustNewPageResolverService(service.PageResolverServiceOptions{
			Client: client,
			Hooks: service.PageResolverHooks{
				Loading: indicator,
				Errors:  errs,
				Metrics: obs.Sink(),
			},
			Logger: logger,
		}),
		Binder: service.MustNewSubscriptionBinder(service.SubscriptionBinderOptions{
			Registrar: registrar,
			Metrics:   obs.Sink(),
			Logger:    logger,
		}),
		Realtime:      rt,
		Errors:        errs,
		Loading:       indicator,
		Cache:         cacheRepo,
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

// newRealtimeBackgroundService keeps the AWX socket joined and drains its
// messages into the log until the service context ends.
func newRealtimeBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeRealtime,
		name: "realtime socket",
		start: func(ctx context.Context) error {
			rt := deps.cfg.Services.Realtime
			if rt == nil {
				return nil
			}
			go relayMessages(rt.Messages(), deps.logger)
			if err := rt.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func relayMessages(messages <-chan realtime.Message, logger *slog.Logger) {
	for msg := range messages {
		logger.Debug("realtime message", "group", msg.Group, "bytes", len(msg.Payload))
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newRealtimeBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		errors:      cfg.Services.Errors,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	errors      *errreport.Reporter
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	// Gracefully stop HTTP server if running
	if cfg.httpServer != nil {
		// The service context is already canceled; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cfg.ctx), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	// Flush failure notifications raised by the last navigations
	if cfg.errors != nil {
		done := make(chan struct{})
		go func() {
			cfg.errors.Wait()
			close(done)
		}()
		waitForService(done, "error notifications", cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
