package stout

import (
	"sync"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/sirupsen/logrus"
)

// ddPoint is one forwarded name/value pair, flattened out of a snapshot's
// counters, gauges, and per-field timer statistics.
type ddPoint struct {
	name  string
	value float64
}

// defaultForwardChunkSize bounds how many points one goroutine forwards
// in a single pass, so a snapshot with a very large number of distinct
// metrics doesn't serialize through a single client call.
const defaultForwardChunkSize = 200

// DatadogForwardBackend builds a built-in backend (§4.7 [ADD]) that
// re-emits every flushed counter/gauge/timer-field to a dogstatsd
// endpoint via client. Counters are forwarded as gauges of their
// already-computed rate (dogstatsd has no "pre-reduced rate" counter
// primitive), matching how the veneur-derived Datadog sink in the pack
// forwards pre-aggregated values rather than resubmitting raw samples.
// Client errors are logged and swallowed, per the shared backend-failure
// contract (§4.6) — a Datadog outage must never stall the flush loop.
func DatadogForwardBackend(client *statsd.Client, logger *logrus.Logger) Backend {
	if logger == nil {
		logger = DefaultLogger()
	}
	return func(snap *Snapshot) error {
		points := flattenSnapshot(snap)
		if len(points) == 0 {
			return nil
		}
		forwardChunked(client, points, defaultForwardChunkSize, logger)
		return nil
	}
}

func flattenSnapshot(snap *Snapshot) []ddPoint {
	points := make([]ddPoint, 0, len(snap.Counters)+len(snap.Gauges)+len(snap.Timers)*5)

	for _, name := range sortedCounterKeys(snap.Counters) {
		points = append(points, ddPoint{name, snap.Counters[name]})
	}
	for _, name := range sortedGaugeKeys(snap.Gauges) {
		points = append(points, ddPoint{name, float64(snap.Gauges[name])})
	}
	for _, name := range sortedTimerKeys(snap.Timers) {
		t := snap.Timers[name]
		points = append(points,
			ddPoint{name + ".avg", t.Avg},
			ddPoint{name + ".min", float64(t.Min)},
			ddPoint{name + ".max", float64(t.Max)},
			ddPoint{name + ".stddev", t.StdDev},
			ddPoint{name + ".count", float64(t.Count)},
		)
	}

	return points
}

// forwardChunked splits points into roughly-equal chunks bounded by
// chunkLimit and forwards each concurrently, then waits for all of them.
// This is the same rounding-up chunking arithmetic veneur's
// Server.Flush uses to bound Datadog POST body size, adapted here to
// bound the number of client calls a single goroutine issues.
func forwardChunked(client *statsd.Client, points []ddPoint, chunkLimit int, logger *logrus.Logger) {
	total := len(points)
	workers := ((total - 1) / chunkLimit) + 1
	chunkSize := ((total - 1) / workers) + 1

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		chunk := points[i*chunkSize:]
		if i < workers-1 {
			chunk = chunk[:chunkSize]
		}
		wg.Add(1)
		go forwardChunk(client, chunk, logger, &wg)
	}
	wg.Wait()
}

func forwardChunk(client *statsd.Client, chunk []ddPoint, logger *logrus.Logger, wg *sync.WaitGroup) {
	defer wg.Done()

	for _, p := range chunk {
		if err := client.Gauge(p.name, p.value, nil, 1.0); err != nil {
			logger.WithField("metric", p.name).WithError(err).Debug("stout: datadog forward failed")
		}
	}
}
