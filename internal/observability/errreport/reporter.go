// Package errreport is the global error surface for failed page resolutions.
// It logs the AWX error body and status, keeps the most recent report and
// forwards server-side failures to an optional notification sink.
package errreport

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/target/jobz/internal/observability/metrics"
	"github.com/target/jobz/internal/observability/notify"
	"github.com/target/jobz/internal/observability/statsd"
)

// Report is one reported failure.
type Report struct {
	Payload json.RawMessage `json:"payload"`
	Status  int             `json:"status"`
	At      time.Time       `json:"at"`
}

const (
	defaultNotifyTimeout = 10 * time.Second
	maxDetailLen         = 500
)

// Options groups dependencies for Reporter.
type Options struct {
	Logger   *slog.Logger // Optional
	Metrics  statsd.Sink  // Optional
	Notifier notify.Sink  // Optional: receives 5xx and unreachable failures
	// NotifyTimeout bounds each notification; defaults to 10s.
	NotifyTimeout time.Duration
	Now           func() time.Time
}

// Reporter implements core.ErrorReporter.
type Reporter struct {
	logger        *slog.Logger
	metrics       statsd.Sink
	notifier      notify.Sink
	notifyTimeout time.Duration
	now           func() time.Time

	mu   sync.RWMutex
	last *Report
	wg   sync.WaitGroup
}

// New creates a Reporter.
func New(opts Options) *Reporter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeout := opts.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &Reporter{
		logger:        logger.With("component", "error_reporter"),
		metrics:       opts.Metrics,
		notifier:      opts.Notifier,
		notifyTimeout: timeout,
		now:           now,
	}
}

// Report records a failed resolution.
func (r *Reporter) Report(ctx context.Context, payload json.RawMessage, status int) {
	rep := &Report{Payload: append(json.RawMessage(nil), payload...), Status: status, At: r.now()}

	r.mu.Lock()
	r.last = rep
	r.mu.Unlock()

	r.logger.ErrorContext(ctx, "api error",
		"status", status,
		"payload", string(payload))

	if r.metrics != nil {
		r.metrics.Count(metrics.NameAPIError, 1, map[string]string{"status": strconv.Itoa(status)})
	}

	if r.notifier != nil && (status == 0 || status >= 500) {
		r.forward(ctx, rep)
	}
}

// forward sends rep to the notifier without holding up the navigation.
func (r *Reporter) forward(ctx context.Context, rep *Report) {
	severity := notify.SeverityCritical
	if rep.Status == 0 {
		severity = notify.SeverityWarning
	}
	failure := notify.APIFailure{
		Status:     rep.Status,
		Detail:     detailOf(rep.Payload),
		Severity:   severity,
		OccurredAt: rep.At,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.notifyTimeout)
		defer cancel()
		if err := r.notifier.SendAPIFailure(nctx, failure); err != nil {
			r.logger.WarnContext(nctx, "api error notification failed", "error", err, "status", rep.Status)
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (r *Reporter) Wait() {
	r.wg.Wait()
}

// detailOf extracts the AWX "detail" message, falling back to the raw body.
func detailOf(payload json.RawMessage) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	s := string(payload)
	if utf8.RuneCountInString(s) > maxDetailLen {
		s = string([]rune(s)[:maxDetailLen]) + "…"
	}
	return s
}

// Last returns the most recent report, if any.
func (r *Reporter) Last() (Report, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return Report{}, false
	}
	return *r.last, true
}
