package stout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedClock(ms int64) func() int64 {
	return func() int64 { return ms }
}

func TestRawStoreApplyCounter(t *testing.T) {
	store := NewRawStore(fixedClock(1000))
	store.Apply(Event{Name: "requests", Value: 1, Type: Counter})
	store.Apply(Event{Name: "requests", Value: 2, Type: Counter})

	counters, _ := store.Drain()
	assert.Equal(t, int64(3), counters["requests"])
}

func TestRawStoreApplyGaugeAbsoluteAndDelta(t *testing.T) {
	store := NewRawStore(fixedClock(1000))
	store.Apply(Event{Name: "queue", Value: 10, Type: Gauge})
	store.Apply(Event{Name: "queue", Value: -3, Type: GaugeDelta})
	store.Apply(Event{Name: "queue", Value: 2, Type: GaugeDelta})

	assert.Equal(t, int64(9), store.Gauges()["queue"])
}

func TestRawStoreGaugesSurviveDrain(t *testing.T) {
	store := NewRawStore(fixedClock(1000))
	store.Apply(Event{Name: "queue", Value: 10, Type: Gauge})
	store.Apply(Event{Name: "requests", Value: 1, Type: Counter})

	counters, histograms := store.Drain()
	assert.Contains(t, counters, "requests")
	assert.Empty(t, histograms)
	assert.Equal(t, int64(10), store.Gauges()["queue"])

	counters, _ = store.Drain()
	assert.NotContains(t, counters, "requests")
	assert.Equal(t, int64(10), store.Gauges()["queue"])
}

func TestRawStoreHistogramAccumulatesSamples(t *testing.T) {
	store := NewRawStore(fixedClock(1000))
	store.Apply(Event{Name: "latency", Value: 10, Type: Histogram})
	store.Apply(Event{Name: "latency", Value: 20, Type: Histogram})

	_, histograms := store.Drain()
	assert.Equal(t, []int64{10, 20}, histograms["latency"])
}

func TestRawStoreInternalMetricsUpdateOnEveryEvent(t *testing.T) {
	store := NewRawStore(fixedClock(4242))
	store.Apply(Event{Name: "requests", Value: 1, Type: Counter})
	store.Apply(Event{Name: "requests", Value: 1, Type: Counter})

	counters, _ := store.Drain()
	assert.Equal(t, int64(2), counters[internalCount])
	assert.Equal(t, int64(4242), store.Gauges()[internalLastSeen])
}
