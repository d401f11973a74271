package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	"github.com/target/jobz/internal/observability/metrics"
	"github.com/target/jobz/internal/observability/statsd"
)

// SubscriptionBinderOptions groups dependencies for SubscriptionBinder.
type SubscriptionBinderOptions struct {
	Registrar core.SubscriptionRegistrar // Required: realtime connection service
	Metrics   statsd.Sink                // Optional
	Logger    *slog.Logger               // Optional
}

// SubscriptionBinder registers the realtime channel groups of a job page.
type SubscriptionBinder struct {
	registrar core.SubscriptionRegistrar
	metrics   statsd.Sink
	logger    *slog.Logger
}

// NewSubscriptionBinder constructs a new SubscriptionBinder.
func NewSubscriptionBinder(opts SubscriptionBinderOptions) (*SubscriptionBinder, error) {
	if opts.Registrar == nil {
		return nil, errors.New("SubscriptionRegistrar is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionBinder{
		registrar: opts.Registrar,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "subscription_binder"),
	}, nil
}

// MustNewSubscriptionBinder constructs a new SubscriptionBinder and panics on error.
func MustNewSubscriptionBinder(opts SubscriptionBinderOptions) *SubscriptionBinder {
	b, err := NewSubscriptionBinder(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast during startup wiring when configuration is invalid
		panic(fmt.Sprintf("failed to create SubscriptionBinder: %v", err))
	}
	return b
}

// Bind registers the subscription of the page described by params and returns
// the registered state. Unlike resolution, a type without a realtime channel
// is an error (jobtype.ErrUnsupportedType), not a redirect.
func (b *SubscriptionBinder) Bind(ctx context.Context, params model.RouteParams) (model.SocketState, error) {
	channel, err := jobtype.LookupChannel(params.Type)
	if err != nil {
		metrics.EmitSubscribe(b.metrics, metrics.SubscribeMetric{JobType: string(params.Type), Result: metrics.ResultError})
		return model.SocketState{}, fmt.Errorf("bind realtime: %w", err)
	}

	state := model.SocketState{Groups: SubscriptionGroupsFor(channel)}
	b.registrar.AddStateResolve(model.SocketState{Groups: state.Groups.Clone()}, params.ID)

	b.logger.DebugContext(ctx, "realtime subscription registered",
		"type", string(params.Type),
		"id", params.ID,
		"channel", channel.Name)
	metrics.EmitSubscribe(b.metrics, metrics.SubscribeMetric{JobType: string(params.Type), Result: metrics.ResultSuccess})
	return state, nil
}

// SubscriptionGroupsFor returns the groups joined for a channel: the job's
// lifecycle events on its name, and its unfiltered event stream on its key.
func SubscriptionGroupsFor(ch jobtype.Channel) model.SubscriptionGroups {
	return model.SubscriptionGroups{
		ch.Name: {model.EventStatusChanged, model.EventSummary},
		ch.Key:  {},
	}
}
