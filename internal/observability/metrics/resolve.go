// Package metrics defines the metric names and tag sets emitted by the job page
// resolver.
package metrics

import (
	"time"

	obserrors "github.com/target/jobz/internal/observability/errors"
	"github.com/target/jobz/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRedirect = "redirect"
)

// Metric names.
const (
	NameResolve        = "page.resolve"
	NameResolveLatency = "page.resolve.duration"
	NameLoadingActive  = "loading.active"
	NameAPIError       = "api.error"
	NameSubscribe      = "realtime.subscribe"
	NameSocketMessage  = "realtime.message"
)

// ResolveMetric captures the outcome of one page resolution.
type ResolveMetric struct {
	JobType  string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitResolve emits the resolution counter and, when known, its latency.
func EmitResolve(sink statsd.Sink, in ResolveMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"job_type": in.JobType,
		"result":   in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(NameResolve, 1, tags)
	if in.Duration > 0 {
		sink.Timing(NameResolveLatency, in.Duration, CloneTags(tags))
	}
}

// SubscribeMetric captures one realtime subscription change.
type SubscribeMetric struct {
	JobType string
	Result  string
}

// EmitSubscribe counts a realtime subscription registration.
func EmitSubscribe(sink statsd.Sink, in SubscribeMetric) {
	if sink == nil {
		return
	}
	sink.Count(NameSubscribe, 1, map[string]string{"job_type": in.JobType, "result": in.Result})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
