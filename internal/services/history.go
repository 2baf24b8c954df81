package services

// History is the bounded view log for one session: appending the same
// id twice in a row is a no-op, and once the capacity is exceeded the
// oldest entry is evicted. It has no terminal state; it lives as long
// as the session does. Single writer per session, so no locking here.
type History struct {
	capacity int
	ids      []int64 // oldest first
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 5
	}
	return &History{capacity: capacity}
}

// Record appends a movie id unless it equals the most recent entry.
func (h *History) Record(movieID int64) {
	if n := len(h.ids); n > 0 && h.ids[n-1] == movieID {
		return
	}
	h.ids = append(h.ids, movieID)
	if len(h.ids) > h.capacity {
		h.ids = h.ids[1:]
	}
}

// List returns the recorded ids most-recent-first.
func (h *History) List() []int64 {
	out := make([]int64, len(h.ids))
	for i, id := range h.ids {
		out[len(h.ids)-1-i] = id
	}
	return out
}

func (h *History) Len() int {
	return len(h.ids)
}

// Replace restores the log from a most-recent-first listing, trimming
// to capacity. Used when rehydrating a session from the store.
func (h *History) Replace(mostRecentFirst []int64) {
	if len(mostRecentFirst) > h.capacity {
		mostRecentFirst = mostRecentFirst[:h.capacity]
	}
	h.ids = make([]int64, len(mostRecentFirst))
	for i, id := range mostRecentFirst {
		h.ids[len(mostRecentFirst)-1-i] = id
	}
}
