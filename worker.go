package stout

import (
	"sync"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/sirupsen/logrus"
)

// SelfStats tracks the ingestion server's own operational health —
// packets received, parse errors, and flush duration — and reports them
// to an optional dogstatsd client (§1 "self-instrumentation"). This is
// the teacher's worker.go pattern (a mutex-guarded counter set, drained
// and reset on each reporting pass, then emitted via a *statsd.Client
// outside the lock) repurposed from per-metric aggregation to reporting
// on the pipeline itself; a nil client is fully supported and simply
// means self-instrumentation is disabled.
type SelfStats struct {
	mu             sync.Mutex
	packetsRecv    int64
	parseErrors    int64
	backendFailure int64

	client *statsd.Client
	logger *logrus.Logger
}

// NewSelfStats creates a SelfStats reporter. client may be nil, in which
// case every Record* call is a cheap no-op increment with nothing ever
// sent anywhere.
func NewSelfStats(client *statsd.Client, logger *logrus.Logger) *SelfStats {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &SelfStats{client: client, logger: logger}
}

// RecordPacket notes one accepted datagram.
func (s *SelfStats) RecordPacket() {
	s.mu.Lock()
	s.packetsRecv++
	s.mu.Unlock()
}

// RecordParseError notes one discarded, unparseable datagram.
func (s *SelfStats) RecordParseError() {
	s.mu.Lock()
	s.parseErrors++
	s.mu.Unlock()
}

// RecordBackendFailure notes one backend call that errored or panicked.
func (s *SelfStats) RecordBackendFailure() {
	s.mu.Lock()
	s.backendFailure++
	s.mu.Unlock()
}

// Report drains the accumulated counters and, if a client is configured,
// emits them along with the supplied flush duration. It is called once
// per flush, the same cadence veneur's Worker.Flush uses for
// "worker.metrics_processed_total".
func (s *SelfStats) Report(flushDuration time.Duration) {
	s.mu.Lock()
	packets := s.packetsRecv
	parseErrors := s.parseErrors
	backendFailures := s.backendFailure
	s.packetsRecv, s.parseErrors, s.backendFailure = 0, 0, 0
	s.mu.Unlock()

	if s.client == nil {
		return
	}

	if err := s.client.Count("stout.server.packets_received_total", packets, nil, 1.0); err != nil {
		s.logger.WithError(err).Debug("stout: self-stats count failed")
	}
	if err := s.client.Count("stout.server.parse_errors_total", parseErrors, nil, 1.0); err != nil {
		s.logger.WithError(err).Debug("stout: self-stats count failed")
	}
	if err := s.client.Count("stout.server.backend_failures_total", backendFailures, nil, 1.0); err != nil {
		s.logger.WithError(err).Debug("stout: self-stats count failed")
	}
	if err := s.client.TimeInMilliseconds("stout.server.flush_duration_ms", float64(flushDuration.Milliseconds()), nil, 1.0); err != nil {
		s.logger.WithError(err).Debug("stout: self-stats timing failed")
	}
}
