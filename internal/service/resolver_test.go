package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"github.com/target/jobz/internal/mocks"
	"github.com/target/jobz/internal/observability/metrics"
	"github.com/target/jobz/internal/observability/statsd"
	"github.com/target/jobz/internal/querystring"
	"go.uber.org/mock/gomock"
)

type resolverMocks struct {
	client  *mocks.MockResourceClient
	loading *mocks.MockLoadingIndicator
	errs    *mocks.MockErrorReporter
	metrics *statsd.Recorder
}

func newResolverWithMocks(t *testing.T) (*PageResolverService, resolverMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := resolverMocks{
		client:  mocks.NewMockResourceClient(ctrl),
		loading: mocks.NewMockLoadingIndicator(ctrl),
		errs:    mocks.NewMockErrorReporter(ctrl),
		metrics: &statsd.Recorder{},
	}
	svc := MustNewPageResolverService(PageResolverServiceOptions{
		Client: m.client,
		Hooks:  PageResolverHooks{Loading: m.loading, Errors: m.errs, Metrics: m.metrics},
	})
	return svc, m
}

// expectLoadingPair requires exactly one Start followed by exactly one Stop.
func (m resolverMocks) expectLoadingPair() {
	gomock.InOrder(
		m.loading.EXPECT().Start().Times(1),
		m.loading.EXPECT().Stop().Times(1),
	)
}

func jobDoc(id string, withLabels bool) map[string]any {
	related := map[string]any{
		"job_events": "/api/v2/jobs/" + id + "/job_events/",
		"events":     "/api/v2/jobs/" + id + "/events/",
	}
	if withLabels {
		related["labels"] = "/api/v2/jobs/" + id + "/labels/"
	}
	return map[string]any{"id": id, "status": "successful", "related": related}
}

var (
	testOptionsDoc = map[string]any{"actions": map[string]any{"GET": map[string]any{}}}
	testStats      = json.RawMessage(`{"event":"playbook_on_stats","event_data":{"ok":{"web01":3}}}`)
)

func TestPageResolverService_Resolve_Playbook(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	ctx := context.Background()
	m.expectLoadingPair()

	labels := &model.RelatedPage{Count: 1, Results: []json.RawMessage{json.RawMessage(`{"name":"prod"}`)}}
	events := &model.RelatedPage{Count: 2, Results: []json.RawMessage{json.RawMessage(`{"counter":1}`), json.RawMessage(`{"counter":2}`)}}

	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilyJob, "42").Return(jobDoc("42", true), nil)
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilyJob, "42").Return(testOptionsDoc, nil)
	m.client.EXPECT().Stats(gomock.Any(), gomock.Any()).Return(testStats, nil)
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "labels", gomock.Nil()).Return(labels, nil)
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "job_events", gomock.Any()).DoAndReturn(
		func(_ context.Context, res *model.Resource, _ string, q *model.PageQuery) (*model.RelatedPage, error) {
			assert.Equal(t, "42", res.ID)
			require.NotNil(t, q)
			assert.Equal(t, url.Values{"page_size": {"50"}, "order_by": {"start_line"}, "failed": {"true"}}, q.Filters)
			assert.True(t, q.PageCache)
			assert.Equal(t, 5, q.PageLimit)
			return events, nil
		},
	)

	got, err := svc.Resolve(ctx, model.RouteParams{Type: jobtype.TypePlaybook, ID: "42", JobEventSearch: "failed:true"})
	require.NoError(t, err)
	require.False(t, got.Redirect)
	require.NotNil(t, got.Bundle)

	b := got.Bundle
	assert.Equal(t, "42", b.ID)
	assert.Equal(t, jobtype.TypePlaybook, b.Type)
	assert.Equal(t, "job_events", b.Related)
	assert.Equal(t, "ws-job_events-42", b.WS.Namespace)
	assert.Equal(t, model.PageConfig{Cache: true, Size: 50, PageLimit: 5}, b.Page)
	assert.JSONEq(t, string(testStats), string(b.Stats))

	require.NotNil(t, b.Model)
	assert.Equal(t, jobtype.FamilyJob, b.Model.Family)
	assert.Equal(t, testOptionsDoc, b.Model.Options)
	gotLabels, ok := b.Model.Relation("labels")
	require.True(t, ok)
	assert.Same(t, labels, gotLabels)
	gotEvents, ok := b.Model.Relation("job_events")
	require.True(t, ok)
	assert.Same(t, events, gotEvents)

	counts := m.metrics.Named(metrics.NameResolve)
	require.Len(t, counts, 1)
	assert.Equal(t, metrics.ResultSuccess, counts[0].Tags["result"])
}

func TestPageResolverService_Resolve_NoLabelsRelation(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilySystemJob, "7").Return(jobDoc("7", false), nil)
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilySystemJob, "7").Return(testOptionsDoc, nil)
	m.client.EXPECT().Stats(gomock.Any(), gomock.Any()).Return(nil, nil)
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "labels", gomock.Any()).Times(0)
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "events", gomock.Any()).Return(&model.RelatedPage{}, nil)

	got, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypeSystem, ID: "7"})
	require.NoError(t, err)
	require.NotNil(t, got.Bundle)

	_, ok := got.Bundle.Model.Relation("labels")
	assert.False(t, ok)
	_, ok = got.Bundle.Model.Relation("events")
	assert.True(t, ok)
	assert.Equal(t, "events", got.Bundle.Related)
	assert.Equal(t, "ws-system_job_events-7", got.Bundle.WS.Namespace)
	assert.JSONEq(t, "null", string(got.Bundle.Stats))
}

func TestPageResolverService_Resolve_StatsFailure(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	payload := json.RawMessage(`{"detail":"x"}`)
	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilyJob, "42").Return(jobDoc("42", true), nil)
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilyJob, "42").Return(testOptionsDoc, nil)
	m.client.EXPECT().Stats(gomock.Any(), gomock.Any()).
		Return(nil, &model.APIError{Op: "stats", Status: http.StatusInternalServerError, Payload: payload})
	// Sibling fetches may or may not have started before the failure.
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&model.RelatedPage{}, nil).AnyTimes()
	m.errs.EXPECT().Report(gomock.Any(), payload, http.StatusInternalServerError).Times(1)

	got, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypePlaybook, ID: "42"})
	require.Error(t, err)
	assert.Nil(t, got.Bundle)
	assert.False(t, got.Redirect)

	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	counts := m.metrics.Named(metrics.NameResolve)
	require.Len(t, counts, 1)
	assert.Equal(t, "api_5xx", counts[0].Tags["error_class"])
}

func TestPageResolverService_Resolve_EventsFailure(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	payload := json.RawMessage(`{"detail":"Not found."}`)
	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilyProjectUpdate, "3").Return(jobDoc("3", false), nil)
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilyProjectUpdate, "3").Return(testOptionsDoc, nil)
	m.client.EXPECT().Stats(gomock.Any(), gomock.Any()).Return(testStats, nil).AnyTimes()
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "events", gomock.Any()).
		Return(nil, &model.APIError{Op: "events", Status: http.StatusNotFound, Payload: payload})
	m.errs.EXPECT().Report(gomock.Any(), payload, http.StatusNotFound)

	got, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypeProject, ID: "3"})
	require.Error(t, err)
	assert.Nil(t, got.Bundle)
}

func TestPageResolverService_Resolve_LabelsFailure(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	payload := json.RawMessage(`{"detail":"labels unavailable"}`)
	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilyJob, "42").Return(jobDoc("42", true), nil)
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilyJob, "42").Return(testOptionsDoc, nil)
	m.client.EXPECT().Stats(gomock.Any(), gomock.Any()).Return(testStats, nil).AnyTimes()
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "labels", gomock.Nil()).
		Return(nil, &model.APIError{Op: "labels", Status: http.StatusServiceUnavailable, Payload: payload})
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), "job_events", gomock.Any()).
		Return(&model.RelatedPage{}, nil).AnyTimes()
	m.errs.EXPECT().Report(gomock.Any(), payload, http.StatusServiceUnavailable).Times(1)

	got, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypePlaybook, ID: "42"})
	require.Error(t, err)
	assert.Nil(t, got.Bundle)
	assert.False(t, got.Redirect)

	var apiErr *model.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "labels", apiErr.Op)
}

func TestPageResolverService_Resolve_BaseFetchFailure(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	payload := json.RawMessage(`{"detail":"You do not have permission to perform this action."}`)
	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilyAdHocCommand, "9").
		Return(nil, &model.APIError{Op: "get", Status: http.StatusForbidden, Payload: payload})
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilyAdHocCommand, "9").Return(testOptionsDoc, nil).AnyTimes()
	m.client.EXPECT().Stats(gomock.Any(), gomock.Any()).Times(0)
	m.client.EXPECT().Extend(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	m.errs.EXPECT().Report(gomock.Any(), payload, http.StatusForbidden)

	_, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypeCommand, ID: "9"})
	require.Error(t, err)
}

func TestPageResolverService_Resolve_UnmappedTypeRedirects(t *testing.T) {
	for _, typ := range []jobtype.Type{jobtype.TypeInventory, "", "bogus"} {
		t.Run(string(typ), func(t *testing.T) {
			svc, m := newResolverWithMocks(t)
			m.expectLoadingPair()

			got, err := svc.Resolve(context.Background(), model.RouteParams{Type: typ, ID: "1"})
			require.NoError(t, err)
			assert.True(t, got.Redirect)
			assert.Nil(t, got.Bundle)

			counts := m.metrics.Named(metrics.NameResolve)
			require.Len(t, counts, 1)
			assert.Equal(t, metrics.ResultRedirect, counts[0].Tags["result"])
		})
	}
}

func TestPageResolverService_Resolve_MalformedSearch(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	m.errs.EXPECT().Report(gomock.Any(), gomock.Any(), http.StatusBadRequest).Do(
		func(_ context.Context, payload json.RawMessage, _ int) {
			assert.Contains(t, string(payload), "missing ':' separator")
		},
	)

	_, err := svc.Resolve(context.Background(), model.RouteParams{
		Type:           jobtype.TypePlaybook,
		ID:             "42",
		JobEventSearch: "status",
	})
	require.Error(t, err)
	var de *querystring.DecodeError
	require.ErrorAs(t, err, &de)
}

func TestPageResolverService_Resolve_EmptyID(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()
	m.errs.EXPECT().Report(gomock.Any(), gomock.Any(), http.StatusBadRequest)

	_, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypePlaybook, ID: " "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

// Workflow jobs have a resource family but no realtime key for the namespace.
func TestPageResolverService_Resolve_WorkflowFailsWithoutFetching(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()
	m.errs.EXPECT().Report(gomock.Any(), gomock.Any(), http.StatusInternalServerError)

	_, err := svc.Resolve(context.Background(), model.RouteParams{Type: jobtype.TypeWorkflow, ID: "5"})
	require.ErrorIs(t, err, jobtype.ErrUnsupportedType)
}

func TestPageResolverService_Resolve_CanceledIsNotReported(t *testing.T) {
	svc, m := newResolverWithMocks(t)
	m.expectLoadingPair()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.client.EXPECT().Get(gomock.Any(), jobtype.FamilyJob, "42").Return(nil, context.Canceled).AnyTimes()
	m.client.EXPECT().Options(gomock.Any(), jobtype.FamilyJob, "42").Return(nil, context.Canceled).AnyTimes()
	m.errs.EXPECT().Report(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Resolve(ctx, model.RouteParams{Type: jobtype.TypePlaybook, ID: "42"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewPageResolverService_RequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockResourceClient(ctrl)
	loading := mocks.NewMockLoadingIndicator(ctrl)
	errs := mocks.NewMockErrorReporter(ctrl)

	_, err := NewPageResolverService(PageResolverServiceOptions{Hooks: PageResolverHooks{Loading: loading, Errors: errs}})
	require.Error(t, err)
	_, err = NewPageResolverService(PageResolverServiceOptions{Client: client, Hooks: PageResolverHooks{Errors: errs}})
	require.Error(t, err)
	_, err = NewPageResolverService(PageResolverServiceOptions{Client: client, Hooks: PageResolverHooks{Loading: loading}})
	require.Error(t, err)

	assert.Panics(t, func() { MustNewPageResolverService(PageResolverServiceOptions{}) })
}

func TestFailureBody(t *testing.T) {
	t.Parallel()

	payload, status := FailureBody(&model.APIError{Status: http.StatusBadGateway})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.JSONEq(t, `{"detail":"Bad Gateway"}`, string(payload))

	payload, status = FailureBody(errors.New("dial tcp: connection refused"))
	assert.Equal(t, 0, status)
	assert.JSONEq(t, `{"detail":"dial tcp: connection refused"}`, string(payload))

	upstream := apperrors.Wrapf(context.DeadlineExceeded, apperrors.ErrCodeUpstream, "awx GET %s", "/api/v2/jobs/1/")
	_, status = FailureBody(upstream)
	assert.Equal(t, 0, status)
	assert.Equal(t, http.StatusGatewayTimeout, apperrors.HTTPStatus(upstream))

	_, status = FailureBody(apperrors.Validation("job id is required"))
	assert.Equal(t, http.StatusBadRequest, status)
}
