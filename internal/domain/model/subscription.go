package model

// Lifecycle events joined on a job's primary channel.
const (
	EventStatusChanged = "status_changed"
	EventSummary       = "summary"
)

// SubscriptionGroups maps a channel to the event names to receive on it. An
// empty list subscribes to the channel's own event stream.
type SubscriptionGroups map[string][]string

// Clone returns a deep copy.
func (g SubscriptionGroups) Clone() SubscriptionGroups {
	if g == nil {
		return nil
	}
	out := make(SubscriptionGroups, len(g))
	for k, v := range g {
		out[k] = append([]string{}, v...)
	}
	return out
}

// SocketState is the subscription intent registered for a navigation.
type SocketState struct {
	Groups SubscriptionGroups `json:"groups"`
}
