package stout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenSnapshotOrderingAndFields(t *testing.T) {
	points := flattenSnapshot(sampleSnapshot())

	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.name
	}
	assert.Contains(t, names, "requests")
	assert.Contains(t, names, "queue")
	assert.Contains(t, names, "latency.avg")
	assert.Contains(t, names, "latency.min")
	assert.Contains(t, names, "latency.max")
	assert.Contains(t, names, "latency.stddev")
	assert.Contains(t, names, "latency.count")

	assert.Equal(t, []string{
		"requests", "queue",
		"latency.avg", "latency.min", "latency.max", "latency.stddev", "latency.count",
	}, names)
}

func TestFlattenSnapshotEmpty(t *testing.T) {
	points := flattenSnapshot(&Snapshot{})
	assert.Empty(t, points)
}

func TestDatadogForwardBackendNoopOnEmptySnapshot(t *testing.T) {
	backend := DatadogForwardBackend(nil, nil)
	assert.NotPanics(t, func() {
		err := backend(&Snapshot{})
		assert.NoError(t, err)
	})
}
