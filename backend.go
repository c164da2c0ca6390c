package stout

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// fanout delivers one snapshot to every registered backend, in
// registration order, sequentially. A backend that errors or panics never
// prevents the rest from running (§4.6); its failure is logged, counted
// against self, and swallowed. self may be nil, in which case failures
// are only logged.
func fanout(backends []Backend, snap *Snapshot, logger *logrus.Logger, self *SelfStats) {
	for i, b := range backends {
		callBackend(i, b, snap, logger, self)
	}
}

// callBackend invokes a single backend, converting a panic into a logged
// error so one misbehaving sink can never take down the ingestion loop.
func callBackend(index int, b Backend, snap *Snapshot, logger *logrus.Logger, self *SelfStats) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("backend", index).WithField("panic", fmt.Sprint(r)).
				Error("stout: backend panicked, continuing")
			if self != nil {
				self.RecordBackendFailure()
			}
		}
	}()

	if err := b(snap); err != nil {
		logger.WithField("backend", index).WithError(err).Error("stout: backend failed, continuing")
		if self != nil {
			self.RecordBackendFailure()
		}
	}
}
