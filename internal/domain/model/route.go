// Package model defines the data types exchanged between the job page resolver,
// its transports, and the HTTP layer.
package model

import "github.com/target/jobz/internal/domain/jobtype"

// RouteParams are the navigation parameters of a job detail page
// (/jobz/:type/:id?job_event_search).
type RouteParams struct {
	Type           jobtype.Type
	ID             string
	JobEventSearch string
}
