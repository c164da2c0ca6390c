package stout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Timestamp: 0,
		Counters:  map[string]float64{"requests": 1.5},
		Gauges:    map[string]int64{"queue": 4},
		Timers: map[string]TimerStats{
			"latency": {Count: 2, Min: 1, Max: 3, Sum: 4, Avg: 2, StdDev: 1},
		},
	}
}

func TestConsoleBackendFormat(t *testing.T) {
	var buf bytes.Buffer
	backend := ConsoleBackend(&buf)

	err := backend(sampleSnapshot())
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "C: requests - 1.50 1/s\n")
	assert.Contains(t, out, "G: queue - 4\n")
	assert.Contains(t, out, "H: latency - cnt: 2, min: 1, max: 3, sum: 4, avg: 2.00, stddev: 1.00\n")
}

func TestConsoleBackendDeterministicOrdering(t *testing.T) {
	var buf bytes.Buffer
	snap := &Snapshot{
		Counters: map[string]float64{"z": 1, "a": 1, "m": 1},
		Gauges:   map[string]int64{},
		Timers:   map[string]TimerStats{},
	}
	_ = ConsoleBackend(&buf)(snap)

	out := buf.String()
	aIdx := bytes.Index(buf.Bytes(), []byte("C: a"))
	mIdx := bytes.Index(buf.Bytes(), []byte("C: m"))
	zIdx := bytes.Index(buf.Bytes(), []byte("C: z"))
	assert.True(t, aIdx < mIdx && mIdx < zIdx, "expected sorted order, got %q", out)
}
