package awx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"go.uber.org/mock/gomock"
)

func newTestClient(t *testing.T, handler http.Handler, cache *core.OptionsCacheService) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{
		Config:  Config{BaseURL: srv.URL, Token: "secret-token", Timeout: 5 * time.Second},
		Options: cache,
	})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.Error(t, err)

	_, err = NewClient(ClientOptions{Config: Config{BaseURL: "awx.local"}})
	require.Error(t, err)

	c, err := NewClient(ClientOptions{Config: Config{BaseURL: "https://awx.example.com"}})
	require.NoError(t, err)
	assert.NotNil(t, c.http.Jar)
}

func TestClient_Get(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/jobs/42/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{"id": 42, "status": "running"})
	})
	c := newTestClient(t, mux, nil)

	doc, err := c.Get(context.Background(), jobtype.FamilyJob, "42")
	require.NoError(t, err)
	assert.Equal(t, "running", doc["status"])
}

func TestClient_Get_Endpoints(t *testing.T) {
	tests := map[jobtype.Family]string{
		jobtype.FamilyJob:           "/api/v2/jobs/1/",
		jobtype.FamilyProjectUpdate: "/api/v2/project_updates/1/",
		jobtype.FamilyAdHocCommand:  "/api/v2/ad_hoc_commands/1/",
		jobtype.FamilySystemJob:     "/api/v2/system_jobs/1/",
		jobtype.FamilyWorkflowJob:   "/api/v2/workflow_jobs/1/",
	}
	for family, path := range tests {
		t.Run(string(family), func(t *testing.T) {
			var got string
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Path
				writeJSON(t, w, http.StatusOK, map[string]any{})
			}), nil)

			_, err := c.Get(context.Background(), family, "1")
			require.NoError(t, err)
			assert.Equal(t, path, got)
		})
	}
}

func TestClient_Get_APIError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		payload string
	}{
		{name: "json body", body: `{"detail":"Not found."}`, status: http.StatusNotFound, payload: `{"detail":"Not found."}`},
		{name: "text body", body: "upstream timeout", status: http.StatusGatewayTimeout, payload: `{"detail":"upstream timeout"}`},
		{name: "empty body", status: http.StatusInternalServerError, payload: `{"detail":"Internal Server Error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}), nil)

			_, err := c.Get(context.Background(), jobtype.FamilyJob, "42")
			var apiErr *model.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.JSONEq(t, tt.payload, string(apiErr.Payload))
		})
	}
}

func TestClient_Get_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := NewClient(ClientOptions{Config: Config{BaseURL: srv.URL}})
	require.NoError(t, err)
	srv.Close()

	_, err = c.Get(context.Background(), jobtype.FamilyJob, "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))

	var apiErr *model.APIError
	assert.NotErrorAs(t, err, &apiErr)
}

func TestClient_Get_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}), nil)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, jobtype.FamilyJob, "1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeTimeout, apperrors.GetCode(err))
	assert.Equal(t, http.StatusGatewayTimeout, apperrors.HTTPStatus(err))
}

func TestClient_Get_MalformedBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}), nil)

	_, err := c.Get(context.Background(), jobtype.FamilyJob, "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
}

func TestClient_Get_UnknownFamily(t *testing.T) {
	c, err := NewClient(ClientOptions{Config: Config{BaseURL: "https://awx.example.com"}})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), jobtype.Family("InventoryUpdate"), "1")
	require.ErrorIs(t, err, jobtype.ErrUnsupportedType)
}

func TestClient_Options_UsesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := core.NewMockCacheRepository(ctrl)
	cache := core.NewOptionsCacheService(core.OptionsCacheServiceOptions{
		Cache:  repo,
		Config: core.OptionsCacheConfig{TTL: time.Minute},
	})

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodOptions, r.Method)
		writeJSON(t, w, http.StatusOK, map[string]any{"name": "Job Detail"})
	}), cache)

	key := "awx:options:Job:42"
	gomock.InOrder(
		repo.EXPECT().Get(gomock.Any(), key).Return(nil, nil),
		repo.EXPECT().Set(gomock.Any(), key, gomock.Any(), time.Minute).Return(nil),
		repo.EXPECT().Get(gomock.Any(), key).Return([]byte(`{"name":"Job Detail"}`), nil),
	)

	first, err := c.Options(context.Background(), jobtype.FamilyJob, "42")
	require.NoError(t, err)
	second, err := c.Options(context.Background(), jobtype.FamilyJob, "42")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Options_CacheErrorFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := core.NewMockCacheRepository(ctrl)
	cache := core.NewOptionsCacheService(core.OptionsCacheServiceOptions{Cache: repo})

	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)
	repo.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"actions": map[string]any{}})
	}), cache)

	doc, err := c.Options(context.Background(), jobtype.FamilyJob, "42")
	require.NoError(t, err)
	assert.Contains(t, doc, "actions")
}

func TestClient_Stats(t *testing.T) {
	stats := map[string]any{"event": "playbook_on_stats", "event_data": map[string]any{"ok": map[string]any{"web01": 3}}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/jobs/42/job_events/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "playbook_on_stats", r.URL.Query().Get("event"))
		writeJSON(t, w, http.StatusOK, map[string]any{"count": 1, "results": []any{stats}})
	})
	mux.HandleFunc("GET /api/v2/project_updates/3/events/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})
	c := newTestClient(t, mux, nil)

	job := &model.Resource{Family: jobtype.FamilyJob, ID: "42", Data: map[string]any{
		"related": map[string]any{"job_events": "/api/v2/jobs/42/job_events/"},
	}}
	got, err := c.Stats(context.Background(), job)
	require.NoError(t, err)
	want, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	project := &model.Resource{Family: jobtype.FamilyProjectUpdate, ID: "3", Data: map[string]any{
		"related": map[string]any{"events": "/api/v2/project_updates/3/events/"},
	}}
	got, err = c.Stats(context.Background(), project)
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(got))

	system := &model.Resource{Family: jobtype.FamilySystemJob, ID: "7"}
	got, err = c.Stats(context.Background(), system)
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(got))
}

func TestClient_Extend(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/jobs/42/job_events/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "50", q.Get("page_size"))
		assert.Equal(t, "start_line", q.Get("order_by"))
		assert.Equal(t, []string{"a", "b"}, q["host_name"])
		writeJSON(t, w, http.StatusOK, map[string]any{
			"count":    120,
			"next":     "/api/v2/jobs/42/job_events/?page=2",
			"previous": nil,
			"results":  []any{map[string]any{"counter": 1}},
		})
	})
	mux.HandleFunc("GET /api/v2/jobs/42/labels/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(t, w, http.StatusOK, map[string]any{"count": 1, "results": []any{map[string]any{"name": "prod"}}})
	})
	c := newTestClient(t, mux, nil)

	res := &model.Resource{Family: jobtype.FamilyJob, ID: "42", Data: map[string]any{
		"related": map[string]any{
			"job_events": "/api/v2/jobs/42/job_events/",
			"labels":     "/api/v2/jobs/42/labels/",
		},
	}}
	query := &model.PageQuery{
		PageSize:  50,
		OrderBy:   "start_line",
		PageCache: true,
		PageLimit: 5,
		Filters: map[string][]string{
			"page_size": {"50"},
			"order_by":  {"start_line"},
			"host_name": {"a", "b"},
		},
	}

	events, err := c.Extend(context.Background(), res, "job_events", query)
	require.NoError(t, err)
	assert.Equal(t, 120, events.Count)
	require.NotNil(t, events.Next)
	assert.Nil(t, events.Previous)
	assert.Len(t, events.Results, 1)
	assert.Equal(t, &model.PageConfig{Cache: true, Size: 50, PageLimit: 5}, events.Page)

	labels, err := c.Extend(context.Background(), res, "labels", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, labels.Count)
	assert.Nil(t, labels.Page)
}

func TestClient_Extend_MissingRelation(t *testing.T) {
	c, err := NewClient(ClientOptions{Config: Config{BaseURL: "https://awx.example.com"}})
	require.NoError(t, err)

	res := &model.Resource{Family: jobtype.FamilyJob, ID: "42", Data: map[string]any{"related": map[string]any{}}}
	_, err = c.Extend(context.Background(), res, "labels", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no related "labels"`)
}
