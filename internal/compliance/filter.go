package compliance

import "github.com/jcferry08/dwelltime/internal/feeds"

// FilterEligible returns the activity events that represent a completed
// load/pickup relevant to compliance: shipment identifier present,
// transaction Closed, visit type in the allowed set. Input order is
// preserved; an empty result is valid.
func FilterEligible(events []feeds.ActivityEvent) []feeds.ActivityEvent {
	eligible := make([]feeds.ActivityEvent, 0, len(events))

	for i := range events {
		if events[i].Eligible() {
			eligible = append(eligible, events[i])
		}
	}

	return eligible
}
