// Package loading implements the process-wide, reference-counted busy
// indicator that page resolutions hold while they fetch.
package loading

import (
	"log/slog"
	"sync"

	"github.com/target/jobz/internal/observability/metrics"
	"github.com/target/jobz/internal/observability/statsd"
)

// Options groups dependencies for Indicator.
type Options struct {
	Metrics statsd.Sink  // Optional: in-flight gauge
	Logger  *slog.Logger // Optional
}

// Indicator counts outstanding Start calls. It is busy while the count is
// positive. Safe for concurrent use.
type Indicator struct {
	mu     sync.Mutex
	active int

	metrics statsd.Sink
	logger  *slog.Logger
}

// New creates an idle Indicator.
func New(opts Options) *Indicator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Indicator{metrics: opts.Metrics, logger: logger.With("component", "loading")}
}

// Start marks one more operation as in flight.
func (i *Indicator) Start() {
	i.mu.Lock()
	i.active++
	n := i.active
	i.mu.Unlock()

	if n == 1 {
		i.logger.Debug("loading started")
	}
	i.gauge(n)
}

// Stop marks one operation as finished. A Stop without a matching Start is
// clamped at zero and logged.
func (i *Indicator) Stop() {
	i.mu.Lock()
	if i.active == 0 {
		i.mu.Unlock()
		i.logger.Warn("loading stop without matching start")
		return
	}
	i.active--
	n := i.active
	i.mu.Unlock()

	if n == 0 {
		i.logger.Debug("loading finished")
	}
	i.gauge(n)
}

// Active returns the number of operations in flight.
func (i *Indicator) Active() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

// Busy reports whether any operation is in flight.
func (i *Indicator) Busy() bool { return i.Active() > 0 }

func (i *Indicator) gauge(n int) {
	if i.metrics != nil {
		i.metrics.Gauge(metrics.NameLoadingActive, float64(n), nil)
	}
}
