package stout

import "math"

// Flush converts the raw store's current window into a Snapshot, clearing
// counters and histograms in the store as it goes (gauges persist). This
// is the single atomic step described in §4.5: on the ingestion server it
// runs on the same execution context as ingestion, so a snapshot never
// mixes samples from two windows.
func Flush(store *RawStore, periodMs int, now func() int64) Snapshot {
	counters, histograms := store.Drain()
	periodSeconds := float64(periodMs) / 1000.0

	snap := Snapshot{
		Timestamp: now(),
		Counters:  make(map[string]float64, len(counters)),
		Gauges:    make(map[string]int64, len(store.Gauges())),
		Timers:    make(map[string]TimerStats, len(histograms)),
	}

	for name, sum := range counters {
		snap.Counters[name] = float64(sum) / periodSeconds
	}
	for name, v := range store.Gauges() {
		snap.Gauges[name] = v
	}
	for name, samples := range histograms {
		if len(samples) == 0 {
			continue
		}
		snap.Timers[name] = computeTimerStats(samples)
	}

	return snap
}

// computeTimerStats implements the §4.5 timer statistics: min/max/sum as
// integers, avg/stddev as float64. The variance intermediate
// (E[X²] − E[X]²) is clamped to zero before the square root, per the
// spec's own Open Question 2, so that floating-point error on
// near-constant samples never produces NaN.
func computeTimerStats(samples []int64) TimerStats {
	n := len(samples)
	stats := TimerStats{
		Count: n,
		Min:   samples[0],
		Max:   samples[0],
	}

	var squareSum float64
	for _, v := range samples {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		stats.Sum += v
		squareSum += float64(v) * float64(v)
	}

	stats.Avg = float64(stats.Sum) / float64(n)
	variance := squareSum/float64(n) - stats.Avg*stats.Avg
	if variance < 0 {
		variance = 0
	}
	stats.StdDev = math.Sqrt(variance)

	return stats
}
