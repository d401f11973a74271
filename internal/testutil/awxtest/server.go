// Package awxtest provides an in-process fake of the AWX job endpoints.
package awxtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// Endpoint names of the job families served by the fake.
const (
	EndpointJobs           = "jobs"
	EndpointProjectUpdates = "project_updates"
	EndpointAdHocCommands  = "ad_hoc_commands"
	EndpointSystemJobs     = "system_jobs"
	EndpointWorkflowJobs   = "workflow_jobs"
)

type failure struct {
	status int
	body   string
}

// Server is a fake AWX API. Paths not seeded answer 404 with an AWX-style body.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     map[string]any // "METHOD path" -> body
	failures map[string]failure
	requests []string
	queries  map[string][]url.Values // "METHOD path" -> queries received, in order
}

// New starts a fake AWX server that is closed with the test.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		docs:     make(map[string]any),
		failures: make(map[string]failure),
		queries:  make(map[string][]url.Values),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// JobOptions tune the fixture seeded by AddJob.
type JobOptions struct {
	Labels bool
	Events []map[string]any
	Stats  map[string]any
}

// AddJob seeds a job-like resource under /api/v2/<endpoint>/<id>/ together
// with its OPTIONS document and event relation. The job relation is
// job_events for jobs and events for every other endpoint.
func (s *Server) AddJob(endpoint, id string, opts JobOptions) map[string]any {
	base := "/api/v2/" + endpoint + "/" + id + "/"
	eventsRel := "events"
	if endpoint == EndpointJobs {
		eventsRel = "job_events"
	}

	related := map[string]any{eventsRel: base + eventsRel + "/"}
	if opts.Labels {
		related["labels"] = base + "labels/"
		s.set(http.MethodGet, base+"labels/", page([]map[string]any{{"id": 1, "name": "prod"}}))
	}

	doc := map[string]any{"id": id, "status": "successful", "related": related}
	s.set(http.MethodGet, base, doc)
	s.set(http.MethodOptions, base, map[string]any{"name": "Job Detail", "actions": map[string]any{"GET": map[string]any{}}})
	s.set(http.MethodGet, base+eventsRel+"/", page(opts.Events))
	if opts.Stats != nil {
		s.set(http.MethodGet, base+eventsRel+"/?event=playbook_on_stats", page([]map[string]any{opts.Stats}))
	} else {
		s.set(http.MethodGet, base+eventsRel+"/?event=playbook_on_stats", page(nil))
	}
	return doc
}

// Fail makes method+path answer status with body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns "METHOD path" for every request received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Queries returns the query of every request to method+path, in order.
func (s *Server) Queries(method, path string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries[method+" "+path]...)
}

func (s *Server) set(method, path string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[method+" "+path] = body
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	s.mu.Lock()
	s.requests = append(s.requests, key)
	s.queries[key] = append(s.queries[key], r.URL.Query())
	f, failed := s.failures[key]
	body, ok := s.lookup(r)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case failed:
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	case ok:
		_ = json.NewEncoder(w).Encode(body)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
	}
}

// lookup prefers an exact event filter match, then the bare path.
func (s *Server) lookup(r *http.Request) (any, bool) {
	key := r.Method + " " + r.URL.Path
	if ev := r.URL.Query().Get("event"); ev != "" {
		body, ok := s.docs[key+"?event="+ev]
		return body, ok
	}
	body, ok := s.docs[key]
	return body, ok
}

func page(results []map[string]any) map[string]any {
	if results == nil {
		results = []map[string]any{}
	}
	return map[string]any{"count": len(results), "next": nil, "previous": nil, "results": results}
}
