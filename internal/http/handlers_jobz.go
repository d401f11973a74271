package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"github.com/target/jobz/internal/observability/errreport"
	"github.com/target/jobz/internal/observability/loading"
	"github.com/target/jobz/internal/service"
)

// JobSearchParam is the query parameter holding the serialized event search.
const JobSearchParam = "job_event_search"

// SocketController leaves the realtime groups of the page being navigated away from.
type SocketController interface {
	Clear()
}

// JobzHandlers serves job detail pages.
type JobzHandlers struct {
	Resolver     *service.PageResolverService
	Binder       *service.SubscriptionBinder
	Socket       SocketController    // Optional
	Errors       *errreport.Reporter // Optional
	Loading      *loading.Indicator  // Optional
	RedirectPath string
	Logger       *slog.Logger
}

type socketDescriptor struct {
	Groups model.SubscriptionGroups `json:"groups"`
	ID     string                   `json:"id"`
}

type breadcrumb struct {
	Label string `json:"label"`
}

type jobzResponse struct {
	Resource   *model.PageBundle `json:"resource"`
	Socket     socketDescriptor  `json:"socket"`
	Breadcrumb breadcrumb        `json:"breadcrumb"`
}

// Show handles GET /jobz/{type}/{id}.
func (h *JobzHandlers) Show(w http.ResponseWriter, r *http.Request) {
	params := model.RouteParams{
		Type:           jobtype.Type(r.PathValue("type")),
		ID:             r.PathValue("id"),
		JobEventSearch: r.URL.Query().Get(JobSearchParam),
	}

	res, err := h.Resolver.Resolve(r.Context(), params)
	if err != nil {
		payload, status := service.FailureBody(err)
		if status == 0 {
			status = apperrors.HTTPStatus(err)
		}
		WriteRawJSON(w, status, payload)
		return
	}
	if res.Redirect {
		http.Redirect(w, r, h.redirectPath(), http.StatusFound)
		return
	}

	state, err := h.Binder.Bind(r.Context(), params)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "bind realtime subscription", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "subscription_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, jobzResponse{
		Resource:   res.Bundle,
		Socket:     socketDescriptor{Groups: state.Groups, ID: params.ID},
		Breadcrumb: breadcrumb{Label: Label(StringJobsTitle)},
	})
}

// Leave handles DELETE /jobz/socket, sent when the viewer navigates away.
func (h *JobzHandlers) Leave(w http.ResponseWriter, _ *http.Request) {
	if h.Socket == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: "realtime_disabled",
			Err:     errors.New("realtime is not enabled"),
		})
		return
	}
	h.Socket.Clear()
	w.WriteHeader(http.StatusNoContent)
}

type statusResponse struct {
	Busy      bool              `json:"busy"`
	Active    int               `json:"active"`
	LastError *errreport.Report `json:"last_error,omitempty"`
}

// Status handles GET /jobz/status: the loading indicator and the most recent
// reported failure.
func (h *JobzHandlers) Status(w http.ResponseWriter, _ *http.Request) {
	var resp statusResponse
	if h.Loading != nil {
		resp.Active = h.Loading.Active()
		resp.Busy = resp.Active > 0
	}
	if h.Errors != nil {
		if last, ok := h.Errors.Last(); ok {
			resp.LastError = &last
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (h *JobzHandlers) redirectPath() string {
	if h.RedirectPath == "" {
		return "/jobs"
	}
	return h.RedirectPath
}

func (h *JobzHandlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
