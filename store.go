package stout

// RawStore holds the accumulating state for the current flush window. It
// is thread-confined: spec.md §4.2/§5 require it be touched only from the
// ingestion server's own loop, so it carries no internal locking.
type RawStore struct {
	counters   map[string]int64
	gauges     map[string]int64
	histograms map[string][]int64

	now func() int64
}

// NewRawStore creates an empty raw store. now supplies the monotonic
// millisecond tick used for metrics.internal.last_seen; tests may inject a
// deterministic clock.
func NewRawStore(now func() int64) *RawStore {
	return &RawStore{
		counters:   make(map[string]int64),
		gauges:     make(map[string]int64),
		histograms: make(map[string][]int64),
		now:        now,
	}
}

// Apply folds one decoded event into the store and updates the two
// built-in internal metrics (§3): metrics.internal.count (+1) and
// metrics.internal.last_seen (current tick), on every accepted datagram.
func (s *RawStore) Apply(ev Event) {
	switch ev.Type {
	case Counter:
		s.counters[ev.Name] += ev.Value
	case Gauge:
		s.gauges[ev.Name] = ev.Value
	case GaugeDelta:
		s.gauges[ev.Name] += ev.Value
	case Histogram:
		s.histograms[ev.Name] = append(s.histograms[ev.Name], ev.Value)
	}

	s.counters[internalCount]++
	s.gauges[internalLastSeen] = s.now()
}

// Drain returns the window's counters and histograms and empties them in
// the store; gauges are left untouched, since they persist across flush
// boundaries (§3, §4.2).
func (s *RawStore) Drain() (counters map[string]int64, histograms map[string][]int64) {
	counters, s.counters = s.counters, make(map[string]int64)
	histograms, s.histograms = s.histograms, make(map[string][]int64)
	return counters, histograms
}

// Gauges returns the live gauge map. Callers must treat it as read-only;
// it is the store's own backing map, not a copy, consistent with the
// single-threaded-ingestion-context ownership model (§5).
func (s *RawStore) Gauges() map[string]int64 {
	return s.gauges
}
