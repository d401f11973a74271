package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"github.com/target/jobz/internal/observability/metrics"
	"github.com/target/jobz/internal/observability/statsd"
	"github.com/target/jobz/internal/querystring"
	"golang.org/x/sync/errgroup"
)

// PageResolverHooks groups the side-effect capabilities a resolution drives.
type PageResolverHooks struct {
	Loading core.LoadingIndicator // Required: paired Start/Stop around every resolution
	Errors  core.ErrorReporter    // Required: receives (payload, status) of failures
	Metrics statsd.Sink           // Optional
}

// PageResolverServiceOptions groups dependencies for PageResolverService.
type PageResolverServiceOptions struct {
	Client core.ResourceClient // Required
	Hooks  PageResolverHooks
	Logger *slog.Logger // Optional
}

// PageResolverService resolves the data of a job detail page.
//
// A resolution classifies the job type, loads the resource and its OPTIONS
// concurrently, then loads stats, labels (when the resource has them) and the
// first window of events concurrently. Any failure fails the whole page.
type PageResolverService struct {
	client  core.ResourceClient
	loading core.LoadingIndicator
	errors  core.ErrorReporter
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewPageResolverService constructs a new PageResolverService.
func NewPageResolverService(opts PageResolverServiceOptions) (*PageResolverService, error) {
	if opts.Client == nil {
		return nil, errors.New("ResourceClient is required")
	}
	if opts.Hooks.Loading == nil {
		return nil, errors.New("LoadingIndicator is required")
	}
	if opts.Hooks.Errors == nil {
		return nil, errors.New("ErrorReporter is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PageResolverService{
		client:  opts.Client,
		loading: opts.Hooks.Loading,
		errors:  opts.Hooks.Errors,
		metrics: opts.Hooks.Metrics,
		logger:  logger.With("component", "page_resolver"),
	}, nil
}

// MustNewPageResolverService constructs a new PageResolverService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewPageResolverService(opts PageResolverServiceOptions) *PageResolverService {
	svc, err := NewPageResolverService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast during startup wiring when configuration is invalid
		panic(fmt.Sprintf("failed to create PageResolverService: %v", err))
	}
	return svc
}

// Resolve resolves the page for params. A type without a resource family
// yields Resolution{Redirect: true} and no error. Failures are reported to the
// error reporter before being returned.
func (s *PageResolverService) Resolve(ctx context.Context, params model.RouteParams) (model.Resolution, error) {
	start := time.Now()
	s.loading.Start()
	defer s.loading.Stop()

	meta, ok := jobtype.LookupResource(params.Type)
	if !ok {
		s.logger.InfoContext(ctx, "job type has no resource, redirecting", "type", string(params.Type))
		metrics.EmitResolve(s.metrics, metrics.ResolveMetric{
			JobType: string(params.Type),
			Result:  metrics.ResultRedirect,
		})
		return model.Resolution{Redirect: true}, nil
	}

	bundle, err := s.resolve(ctx, params, meta)
	if err != nil {
		s.report(ctx, err)
		metrics.EmitResolve(s.metrics, metrics.ResolveMetric{
			JobType:  string(params.Type),
			Result:   metrics.ResultError,
			Duration: time.Since(start),
			Err:      err,
		})
		return model.Resolution{}, fmt.Errorf("resolve %s job %q: %w", params.Type, params.ID, err)
	}

	metrics.EmitResolve(s.metrics, metrics.ResolveMetric{
		JobType:  string(params.Type),
		Result:   metrics.ResultSuccess,
		Duration: time.Since(start),
	})
	return model.Resolution{Bundle: bundle}, nil
}

func (s *PageResolverService) resolve(
	ctx context.Context,
	params model.RouteParams,
	meta jobtype.Resource,
) (*model.PageBundle, error) {
	if strings.TrimSpace(params.ID) == "" {
		return nil, apperrors.Validation("job id is required")
	}

	// The namespace needs the realtime key, so a type without a channel cannot
	// produce a bundle. Checked before any fetch is issued.
	channel, err := jobtype.LookupChannel(params.Type)
	if err != nil {
		return nil, err
	}

	query, err := BuildEventQuery(params.JobEventSearch)
	if err != nil {
		return nil, err
	}

	res, err := s.load(ctx, meta.Family, params.ID)
	if err != nil {
		return nil, err
	}

	stats, err := s.extend(ctx, res, meta.Related, &query)
	if err != nil {
		return nil, err
	}

	return &model.PageBundle{
		ID:      params.ID,
		Type:    params.Type,
		Stats:   stats,
		Model:   res,
		Related: meta.Related,
		WS:      model.WSConfig{Namespace: channel.Namespace(params.ID)},
		Page: model.PageConfig{
			Cache:     model.PageCache,
			Size:      model.PageSize,
			PageLimit: model.PageLimit,
		},
	}, nil
}

// load issues GET and OPTIONS for the resource concurrently.
func (s *PageResolverService) load(ctx context.Context, family jobtype.Family, id string) (*model.Resource, error) {
	g, gctx := errgroup.WithContext(ctx)
	var doc, options map[string]any

	g.Go(func() error {
		var err error
		if doc, err = s.client.Get(gctx, family, id); err != nil {
			return fmt.Errorf("get %s %s: %w", family, id, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if options, err = s.client.Options(gctx, family, id); err != nil {
			return fmt.Errorf("options %s %s: %w", family, id, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &model.Resource{Family: family, ID: id, Data: doc, Options: options}, nil
}

// extend fetches stats, labels and events concurrently and attaches the
// related collections to res once all three have succeeded.
func (s *PageResolverService) extend(
	ctx context.Context,
	res *model.Resource,
	related string,
	query *model.PageQuery,
) (json.RawMessage, error) {
	g, gctx := errgroup.WithContext(ctx)
	var stats json.RawMessage
	var labels, events *model.RelatedPage

	g.Go(func() error {
		var err error
		if stats, err = s.client.Stats(gctx, res); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		return nil
	})
	if res.Has("related.labels") {
		g.Go(func() error {
			var err error
			if labels, err = s.client.Extend(gctx, res, jobtype.RelatedLabels, nil); err != nil {
				return fmt.Errorf("extend %s: %w", jobtype.RelatedLabels, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		var err error
		if events, err = s.client.Extend(gctx, res, related, query); err != nil {
			return fmt.Errorf("extend %s: %w", related, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Attach(jobtype.RelatedLabels, labels)
	res.Attach(related, events)
	if len(stats) == 0 {
		stats = json.RawMessage("null")
	}
	return stats, nil
}

// report hands a failure to the error reporter. A canceled navigation has no
// one left to show the error to and is only logged.
func (s *PageResolverService) report(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.DebugContext(ctx, "page resolution canceled", "error", err)
		return
	}
	payload, status := FailureBody(err)
	s.logger.WarnContext(ctx, "page resolution failed", "status", status, "error", err)
	s.errors.Report(ctx, payload, status)
}

// FailureBody returns the payload and status a resolution failure is reported
// with. API errors carry their own; a status of zero means AWX sent no
// response, and apperrors.HTTPStatus picks the status served for it.
func FailureBody(err error) (json.RawMessage, int) {
	var apiErr *model.APIError
	var decodeErr *querystring.DecodeError
	switch {
	case errors.As(err, &apiErr):
		payload := apiErr.Payload
		if len(payload) == 0 {
			payload = model.DetailPayload(http.StatusText(apiErr.Status))
		}
		return payload, apiErr.Status
	case errors.As(err, &decodeErr):
		return model.DetailPayload(decodeErr.Error()), http.StatusBadRequest
	case apperrors.IsValidation(err):
		return model.DetailPayload(err.Error()), apperrors.HTTPStatus(err)
	case errors.Is(err, jobtype.ErrUnsupportedType):
		return model.DetailPayload(err.Error()), http.StatusInternalServerError
	default:
		return model.DetailPayload(err.Error()), 0
	}
}
