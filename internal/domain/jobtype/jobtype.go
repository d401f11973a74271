// Package jobtype maps the job type discriminator of a job detail route onto the
// AWX resource family to fetch and the realtime channels to join.
//
// The resource table and the realtime table are kept apart on purpose: they do
// not share membership. "workflow" resolves as a resource but has no realtime
// channel, and "inventory" has a realtime channel but no resource family.
package jobtype

import (
	"errors"
	"fmt"
)

// Type is the job type discriminator carried in the route.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, String needs value receiver
type Type string

const (
	// TypeProject selects project updates.
	TypeProject Type = "project"
	// TypePlaybook selects playbook jobs.
	TypePlaybook Type = "playbook"
	// TypeCommand selects ad hoc commands.
	TypeCommand Type = "command"
	// TypeSystem selects system jobs.
	TypeSystem Type = "system"
	// TypeWorkflow selects workflow jobs.
	TypeWorkflow Type = "workflow"
	// TypeInventory selects inventory updates.
	TypeInventory Type = "inventory"
)

// All returns every known discriminator in a stable order.
func All() []Type {
	return []Type{TypeProject, TypePlaybook, TypeCommand, TypeSystem, TypeWorkflow, TypeInventory}
}

func (t Type) String() string { return string(t) }

// UnmarshalText implements encoding.TextUnmarshaler. Matching is case-sensitive.
func (t *Type) UnmarshalText(text []byte) error {
	v := Type(text)
	for _, known := range All() {
		if v == known {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidType, string(text))
}

var (
	// ErrUnsupportedType is returned by realtime classification for a type that has
	// no channel mapping.
	ErrUnsupportedType = errors.New("unsupported websocket type")
	// ErrInvalidType is returned when parsing a discriminator outside All.
	ErrInvalidType = errors.New("invalid job type")
)

// Family identifies an AWX resource family.
type Family string

const (
	FamilyProjectUpdate Family = "ProjectUpdate"
	FamilyJob           Family = "Job"
	FamilyAdHocCommand  Family = "AdHocCommand"
	FamilySystemJob     Family = "SystemJob"
	FamilyWorkflowJob   Family = "WorkflowJob"
)

// Relation names of the event sub-collection.
const (
	RelatedEvents    = "events"
	RelatedJobEvents = "job_events"
	RelatedLabels    = "labels"
)

// Resource describes how a job type is fetched.
type Resource struct {
	Family  Family
	Related string
}

// Channel describes the realtime topics for a job type. Name carries lifecycle
// events of the job itself, Key the granular event stream.
type Channel struct {
	Name string
	Key  string
}

var resources = map[Type]Resource{ //nolint:gochecknoglobals // read-only lookup table
	TypeProject:  {Family: FamilyProjectUpdate, Related: RelatedEvents},
	TypePlaybook: {Family: FamilyJob, Related: RelatedJobEvents},
	TypeCommand:  {Family: FamilyAdHocCommand, Related: RelatedEvents},
	TypeSystem:   {Family: FamilySystemJob, Related: RelatedEvents},
	TypeWorkflow: {Family: FamilyWorkflowJob, Related: RelatedEvents},
}

var channels = map[Type]Channel{ //nolint:gochecknoglobals // read-only lookup table
	TypeSystem:    {Name: "system_jobs", Key: "system_job_events"},
	TypeProject:   {Name: "project_updates", Key: "project_update_events"},
	TypeCommand:   {Name: "ad_hoc_commands", Key: "ad_hoc_command_events"},
	TypeInventory: {Name: "inventory_updates", Key: "inventory_update_events"},
	TypePlaybook:  {Name: "jobs", Key: "job_events"},
}

// LookupResource returns the resource mapping for t. The boolean is false when
// the type has no resource family; callers redirect instead of failing.
func LookupResource(t Type) (Resource, bool) {
	r, ok := resources[t]
	return r, ok
}

// LookupChannel returns the realtime mapping for t or ErrUnsupportedType.
func LookupChannel(t Type) (Channel, error) {
	c, ok := channels[t]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %q", ErrUnsupportedType, string(t))
	}
	return c, nil
}

// Namespace returns the websocket namespace of a job page, "ws-<key>-<id>".
func (c Channel) Namespace(id string) string {
	return "ws-" + c.Key + "-" + id
}
