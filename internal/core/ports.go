package core

import (
	"context"
	"encoding/json"

	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
)

// This file contains the port interfaces of the job page resolver.
// Services depend on these; adapters under internal/adapters implement them.

// ResourceClient fetches AWX job-like resources and their related collections.
type ResourceClient interface {
	// Get returns the resource document for id.
	Get(ctx context.Context, family jobtype.Family, id string) (map[string]any, error)
	// Options returns the OPTIONS document of the resource endpoint for id.
	Options(ctx context.Context, family jobtype.Family, id string) (map[string]any, error)
	// Stats returns the run statistics of a resource, or JSON null when the
	// family has none.
	Stats(ctx context.Context, res *model.Resource) (json.RawMessage, error)
	// Extend fetches the related collection named relation. A nil query fetches
	// the relation with its default paging.
	Extend(ctx context.Context, res *model.Resource, relation string, query *model.PageQuery) (*model.RelatedPage, error)
}

// LoadingIndicator is the process-wide busy indicator. Every Start must be
// paired with a Stop.
type LoadingIndicator interface {
	Start()
	Stop()
}

// ErrorReporter receives the raw API error body and status of a failed page
// resolution.
type ErrorReporter interface {
	Report(ctx context.Context, payload json.RawMessage, status int)
}

// SubscriptionRegistrar is the realtime connection service. It scopes the
// registered groups to id and keeps the socket joined to them.
type SubscriptionRegistrar interface {
	AddStateResolve(state model.SocketState, id string)
}
