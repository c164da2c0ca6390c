package stout

import "fmt"

// MetricType identifies the kind of a parsed wire event.
type MetricType int

const (
	// Counter accumulates additively within a flush window and is reported
	// as a rate (sum / window-seconds).
	Counter MetricType = iota
	// Gauge is last-writer-wins and survives flush windows.
	Gauge
	// GaugeDelta is a signed increment applied to the current gauge value.
	GaugeDelta
	// Histogram appends a sample to an unbounded per-metric vector for the
	// current window.
	Histogram
)

func (t MetricType) String() string {
	switch t {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	case GaugeDelta:
		return "gauge_delta"
	case Histogram:
		return "histogram"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Event is one decoded wire datagram, ready to be applied to a RawStore.
type Event struct {
	Name  string
	Value int64
	Type  MetricType
}

// Built-in metric names updated on every accepted datagram (§3).
const (
	internalCount    = "metrics.internal.count"
	internalLastSeen = "metrics.internal.last_seen"
)

// TimerStats is the derived statistic for one histogram's samples in a
// flush window.
type TimerStats struct {
	Count  int
	Min    int64
	Max    int64
	Sum    int64
	Avg    float64
	StdDev float64
}

// Snapshot is the immutable output of one flush.
type Snapshot struct {
	Timestamp int64
	Counters  map[string]float64
	Gauges    map[string]int64
	Timers    map[string]TimerStats
}

// ValueType selects which field of a TimerStats a Watch compares.
type ValueType int

const (
	ValueAvg ValueType = iota
	ValueMin
	ValueMax
	ValueStdDev
)

// CompareOp is the comparison a Watch applies between the computed
// comparand and its configured operand.
type CompareOp int

const (
	OpLessThan CompareOp = iota
	OpGreaterThan
)

// WatchModel selects whether a Watch compares an absolute difference or a
// percentage difference relative to the baseline.
type WatchModel int

const (
	ModelAbsolute WatchModel = iota
	ModelRelativePercent
)

// Watch is a single assertion evaluated against a baseline on every flush
// after warm-up, for timer metrics whose name begins with a process-scoped
// prefix (§4.8).
type Watch struct {
	CounterPrefix string
	ValueType     ValueType
	Op            CompareOp
	Operand       int64
	Model         WatchModel

	failedAlready bool
}

// Failed reports whether this watch has already signalled a regression.
// Once failed, a watch is never re-evaluated (§4.8).
func (w *Watch) Failed() bool { return w.failedAlready }

// ErrorReaction controls what the assertion backend does when a watch
// fails.
type ErrorReaction int

const (
	ReactLog ErrorReaction = iota
	ReactStop
)

// ProcessConfig mirrors original_source/stout/config.h's proc_info: the
// identity of one tracked process and the watches that apply to it.
type ProcessConfig struct {
	ID            string
	ProcessName   string
	Attach        bool
	InstanceCount int
	Watches       []*Watch
}

// Config is the plain, in-memory configuration record the core pipeline
// consumes. It is produced by internal/confload (or by any other loader);
// the core package never parses configuration files itself.
type Config struct {
	ServerPort    int
	InitialDelayS int
	SamplingTimeS int
	ErrorReaction ErrorReaction
	Processes     []*ProcessConfig
}

// ServerEvent is an out-of-band notification the ingestion server emits to
// every registered listener.
type ServerEvent int

const (
	StartupFailed ServerEvent = iota
	Started
	Stopped
)

func (e ServerEvent) String() string {
	switch e {
	case StartupFailed:
		return "StartupFailed"
	case Started:
		return "Started"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("unknown(%d)", int(e))
	}
}

// Backend is the contract every sink implements: a function taking a
// read-only snapshot reference. It must not retain the pointer past the
// call, must be re-entrant across flushes, and is never called
// concurrently with itself (§4.6).
type Backend func(*Snapshot) error
