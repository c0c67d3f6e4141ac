package compliance

import "github.com/jcferry08/dwelltime/internal/feeds"

// ReduceLatest collapses eligible activity events down to one per canonical
// shipment identifier, keeping the event with the maximum loaded-at instant.
//
// An unknown loaded-at (zero time) loses to any known one; a group holding
// only unknown timestamps keeps its first-encountered event. Exactly equal
// timestamps also keep the first-encountered event, so repeated runs over the
// same input select the same winners. Output order follows the order in
// which each shipment was first seen.
func ReduceLatest(events []feeds.ActivityEvent) []feeds.ActivityEvent {
	winners := make([]feeds.ActivityEvent, 0, len(events))
	position := make(map[string]int, len(events))

	for i := range events {
		id := events[i].CanonicalShipmentID()

		pos, seen := position[id]
		if !seen {
			position[id] = len(winners)
			winners = append(winners, events[i])

			continue
		}

		// Strictly-after comparison keeps the incumbent on ties and when the
		// candidate's loaded-at is unknown.
		if events[i].LoadedAt.After(winners[pos].LoadedAt) {
			winners[pos] = events[i]
		}
	}

	return winners
}
