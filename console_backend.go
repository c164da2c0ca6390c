package stout

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// sortedCounterKeys, sortedGaugeKeys and sortedTimerKeys return a map's
// keys in ascending order. The original
// source kept everything in std::map, which iterates sorted by key;
// Go maps make no such guarantee, so every built-in backend sorts
// explicitly to keep output deterministic and diffable.
func sortedCounterKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGaugeKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTimerKeys(m map[string]TimerStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConsoleBackend dumps a flushed snapshot to an io.Writer (os.Stdout by
// default), mirroring original_source/stout/metrics/backends.cpp's
// console_backend::operator().
func ConsoleBackend(w io.Writer) Backend {
	if w == nil {
		w = os.Stdout
	}
	return func(snap *Snapshot) error {
		writeConsoleLines(w, snap)
		return nil
	}
}

func writeConsoleLines(w io.Writer, snap *Snapshot) {
	for _, name := range sortedCounterKeys(snap.Counters) {
		fmt.Fprintf(w, "C: %s - %.2f 1/s\n", name, snap.Counters[name])
	}
	for _, name := range sortedGaugeKeys(snap.Gauges) {
		fmt.Fprintf(w, "G: %s - %d\n", name, snap.Gauges[name])
	}
	for _, name := range sortedTimerKeys(snap.Timers) {
		t := snap.Timers[name]
		fmt.Fprintf(w, "H: %s - cnt: %d, min: %d, max: %d, sum: %d, avg: %.2f, stddev: %.2f\n",
			name, t.Count, t.Min, t.Max, t.Sum, t.Avg, t.StdDev)
	}
}
