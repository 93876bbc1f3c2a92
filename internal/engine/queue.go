// Package engine turns per-widget notification lists into one playback queue
// and plays it back one notification at a time.
package engine

import (
	"sort"

	"proofpop/internal/notification"
)

// Shuffler is satisfied by *rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// BuildQueue interleaves the per-widget lists. Each list is ordered newest
// first, then round i takes the i-th item of every list that has one and
// shuffles that round before appending it. A round never opens with the
// widget that closed the previous one, so while two or more widgets still
// have items no widget occupies two consecutive slots.
func BuildQueue(lists map[string][]*notification.Notification, rnd Shuffler) []*notification.Notification {
	ids := make([]string, 0, len(lists))
	longest := 0
	for id, list := range lists {
		if len(list) == 0 {
			continue
		}
		ids = append(ids, id)
		if len(list) > longest {
			longest = len(list)
		}
	}
	sort.Strings(ids)

	sorted := make(map[string][]*notification.Notification, len(ids))
	for _, id := range ids {
		list := append([]*notification.Notification(nil), lists[id]...)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		})
		sorted[id] = list
	}

	var queue []*notification.Notification
	for round := 0; round < longest; round++ {
		var batch []*notification.Notification
		for _, id := range ids {
			if round < len(sorted[id]) {
				batch = append(batch, sorted[id][round])
			}
		}
		if rnd != nil {
			rnd.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
		}
		if n := len(queue); n > 0 && len(batch) > 1 && batch[0].WidgetID == queue[n-1].WidgetID {
			batch[0], batch[len(batch)-1] = batch[len(batch)-1], batch[0]
		}
		queue = append(queue, batch...)
	}
	return queue
}
