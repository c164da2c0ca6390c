package stout

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MonitoringBackend is the assertion engine (§4.8): after a warm-up gate
// it captures a baseline from the first eligible flush, then compares
// every later flush's timer stats against that baseline for each
// configured Watch, reacting per cfg.ErrorReaction when one fails.
//
// It is grounded on original_source/stout/monitoring_backend.h/.cpp's
// monitoring_backend: baseline capture gated by a fixed warm-up window,
// and validator::validate's comparison polarity, preserved exactly
// (§9 Open Question 1): the configured operator HOLDING is a pass, not a
// regression signal. An absolute-model watch reading "avg lt 100" passes
// while the current average stays less than 100 above the baseline
// average and fails the moment it is not.
type MonitoringBackend struct {
	cfg    *Config
	logger *logrus.Logger

	terminate func()

	startedAt time.Time
	baseline  map[string]TimerStats
	haveGate  bool
}

// NewMonitoringBackend builds the assertion engine for cfg. terminate is
// invoked when a watch fails and cfg.ErrorReaction is ReactStop; pass nil
// to use os.Exit(1), matching original_source/stout/monitoring_backend.cpp's
// reaction to a failed watch.
func NewMonitoringBackend(cfg *Config, logger *logrus.Logger, terminate func()) *MonitoringBackend {
	if logger == nil {
		logger = DefaultLogger()
	}
	if terminate == nil {
		terminate = defaultTerminate
	}
	return &MonitoringBackend{
		cfg:       cfg,
		logger:    logger,
		terminate: terminate,
		startedAt: time.Now(),
	}
}

func defaultTerminate() {
	os.Exit(1)
}

// Backend returns the callable fan-out entry point, so a MonitoringBackend
// can be registered on a ServerConfig like any other sink.
func (m *MonitoringBackend) Backend() Backend {
	return m.onFlush
}

// warmupGate is the instant, relative to construction, at which the first
// eligible flush becomes the baseline: initial_delay_s + sampling_time_s -
// 1 seconds (§4.8), matching the original's fixed startup grace window.
func (m *MonitoringBackend) warmupGate() time.Duration {
	seconds := m.cfg.InitialDelayS + m.cfg.SamplingTimeS - 1
	if seconds < 0 {
		seconds = 0
	}
	return time.Duration(seconds) * time.Second
}

func (m *MonitoringBackend) onFlush(snap *Snapshot) error {
	if time.Since(m.startedAt) < m.warmupGate() {
		return nil
	}

	if !m.haveGate {
		m.baseline = snap.Timers
		m.haveGate = true
		m.logger.Debug("stout: monitoring baseline captured")
		return nil
	}

	for _, p := range m.cfg.Processes {
		for _, w := range p.Watches {
			m.evaluate(p, w, snap)
		}
	}
	return nil
}

// evaluate checks every timer in snap whose name begins with
// "stout.<process id>.<counter prefix>" against the same-named baseline
// entry (§4.8; original_source/stout/monitoring_backend.cpp's
// validator::validate matches with counter.find(prefix) != 0, not an
// exact-name lookup, since a watch's prefix is a prefix of one or more
// metric names, not necessarily a full metric name itself). A watch that
// has already failed is never re-evaluated (§4.8, "failed_already"
// latching).
func (m *MonitoringBackend) evaluate(p *ProcessConfig, w *Watch, snap *Snapshot) {
	if w.Failed() {
		return
	}

	prefix := fmt.Sprintf("stout.%s.%s", p.ID, w.CounterPrefix)

	for name, current := range snap.Timers {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		base, ok := m.baseline[name]
		if !ok {
			continue
		}

		if m.check(p, w, name, current, base) {
			return
		}
	}
}

// check evaluates one matched timer against its baseline counterpart,
// returning true if the watch failed (and was latched/reacted to), so
// the caller can stop scanning further matches for this watch.
func (m *MonitoringBackend) check(p *ProcessConfig, w *Watch, name string, current, base TimerStats) bool {
	currentValue := selectValue(current, w.ValueType)
	baselineValue := selectValue(base, w.ValueType)

	var comparand float64
	switch w.Model {
	case ModelAbsolute:
		comparand = currentValue - baselineValue
	case ModelRelativePercent:
		if baselineValue == 0 {
			comparand = 0
		} else {
			comparand = (currentValue - baselineValue) / baselineValue * 100.0
		}
	}

	operand := float64(w.Operand)
	var holds bool
	switch w.Op {
	case OpLessThan:
		holds = comparand < operand
	case OpGreaterThan:
		holds = comparand > operand
	}

	// The operator holding is a PASS; only its failure to hold is a
	// regression (§9 Open Question 1 — polarity preserved exactly).
	if holds {
		return false
	}

	w.failedAlready = true
	m.logger.WithFields(logrus.Fields{
		"process":   p.ProcessName,
		"metric":    name,
		"watch":     w.CounterPrefix,
		"comparand": comparand,
		"operand":   w.Operand,
	}).Error("stout: watch failed")

	if m.cfg.ErrorReaction == ReactStop {
		m.terminate()
	}
	return true
}

func selectValue(t TimerStats, v ValueType) float64 {
	switch v {
	case ValueAvg:
		return t.Avg
	case ValueMin:
		return float64(t.Min)
	case ValueMax:
		return float64(t.Max)
	case ValueStdDev:
		return t.StdDev
	default:
		return 0
	}
}
