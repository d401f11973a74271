package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/jobz/internal/observability/errreport"
	"github.com/target/jobz/internal/observability/loading"
	"github.com/target/jobz/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Resolver *service.PageResolverService
	Binder   *service.SubscriptionBinder
	Socket   SocketController    // Optional: nil when realtime is disabled
	Errors   *errreport.Reporter // Optional
	Loading  *loading.Indicator  // Optional
	Cache    HealthChecker       // Optional: checked by /readyz
	// RedirectPath receives navigations to job types without a detail page.
	RedirectPath string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobz := &JobzHandlers{
		Resolver:     services.Resolver,
		Binder:       services.Binder,
		Socket:       services.Socket,
		Errors:       services.Errors,
		Loading:      services.Loading,
		RedirectPath: services.RedirectPath,
		Logger:       services.Logger,
	}
	registerJobzRoutes(mux, jobz)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Cache))

	return RequestID()(mux)
}

func registerJobzRoutes(mux *http.ServeMux, h *JobzHandlers) {
	mux.HandleFunc("GET /jobz/status", h.Status)
	mux.HandleFunc("DELETE /jobz/socket", h.Leave)
	mux.HandleFunc("GET /jobz/{type}/{id}", h.Show)
}
