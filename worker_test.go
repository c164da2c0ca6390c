package stout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelfStatsNilClientIsNoOp(t *testing.T) {
	s := NewSelfStats(nil, nil)
	s.RecordPacket()
	s.RecordPacket()
	s.RecordParseError()
	s.RecordBackendFailure()

	assert.NotPanics(t, func() {
		s.Report(5 * time.Millisecond)
	})
}

func TestSelfStatsReportResetsCounters(t *testing.T) {
	s := NewSelfStats(nil, nil)
	s.RecordPacket()
	s.Report(0)

	s.mu.Lock()
	packets := s.packetsRecv
	s.mu.Unlock()
	assert.Equal(t, int64(0), packets)
}
