package stout

import (
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// EmitterConfig is the resolved, process-wide emitter configuration: the
// server address and namespace producers send to. It is built once via
// Setup and, by convention, never mutated afterward (§5, §9 "Global
// emitter state") — every Emitter reads it through a pointer rather than
// copying it, so one Setup call configures every producer in a process.
type EmitterConfig struct {
	addr      *net.UDPAddr
	namespace string
	debug     bool
	logger    *logrus.Logger
}

// Setup resolves the metrics server address and returns a configuration
// ready to be handed to one or more Emitters. Resolution failure (or an
// empty server name) is a fatal configuration error, surfaced
// synchronously, exactly as in the source (§4.3, §7).
func Setup(server string, port int) (*EmitterConfig, error) {
	if server == "" {
		return nil, fmt.Errorf("stout: server address must not be empty")
	}

	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", server, port))
	if err != nil {
		return nil, fmt.Errorf("stout: could not resolve metrics server %q: %w", server, err)
	}

	return &EmitterConfig{
		addr:      addr,
		namespace: "stats",
		logger:    DefaultLogger(),
	}, nil
}

// WithNamespace sets the namespace prefix joined to every outbound metric
// name. Default is "stats", matching client_config's default in
// original_source/stout/metrics/metrics.cpp.
func (c *EmitterConfig) WithNamespace(ns string) *EmitterConfig {
	c.namespace = ns
	return c
}

// WithDebug toggles debug-level tracing of every outbound datagram.
func (c *EmitterConfig) WithDebug(debug bool) *EmitterConfig {
	c.debug = debug
	return c
}

// WithLogger overrides the logger this configuration's emitters use.
func (c *EmitterConfig) WithLogger(l *logrus.Logger) *EmitterConfig {
	c.logger = l
	return c
}

// Emitter is the client-side API producers use to send metrics. It owns
// one UDP socket, lazily dialed on first use (§4.3) — construct one
// Emitter per producer goroutine and do not share it across goroutines
// without external synchronization, mirroring the source's one-socket-
// per-thread model.
type Emitter struct {
	cfg *EmitterConfig

	mu   sync.Mutex
	conn net.Conn
}

// NewEmitter creates an Emitter bound to cfg. Dialing the underlying
// socket is deferred to the first Inc/Measure/Set/SetDelta call.
func NewEmitter(cfg *EmitterConfig) *Emitter {
	return &Emitter{cfg: cfg}
}

// Inc increments a counter metric by n (default 1, per the caller, since
// Go has no default-argument syntax — callers wanting the "inc by one"
// shorthand pass 1 explicitly).
func (e *Emitter) Inc(name string, n int64) {
	e.send(FormatCounter(e.cfg.namespace, name, n))
}

// Measure appends a histogram/timer sample.
func (e *Emitter) Measure(name string, n int64) {
	e.send(FormatHistogram(e.cfg.namespace, name, n))
}

// Set sets a gauge to an absolute value.
func (e *Emitter) Set(name string, n int64) {
	e.send(FormatGauge(e.cfg.namespace, name, n))
}

// SetDelta applies a signed increment to a gauge's current value.
func (e *Emitter) SetDelta(name string, n int64) {
	e.send(FormatGaugeDelta(e.cfg.namespace, name, n))
}

// send formats and fires a datagram. It is fire-and-forget: every failure
// (oversized packet, dial failure, write failure) is logged at debug
// level and swallowed, never returned to the caller (§4.3, §7) — a
// metrics producer must never be slowed down or broken by a metrics
// outage.
func (e *Emitter) send(datagram string) {
	if !fitsOutboundPacket(datagram) {
		e.cfg.logger.WithField("datagram", datagram).Debug("stout: outbound packet too large, dropping")
		return
	}

	conn, err := e.conn0()
	if err != nil {
		e.cfg.logger.WithError(err).Debug("stout: cannot create client socket")
		return
	}

	if _, err := conn.Write([]byte(datagram)); err != nil {
		e.cfg.logger.WithError(err).Debug("stout: sendto failed")
		return
	}

	if e.cfg.debug {
		e.cfg.logger.WithField("datagram", datagram).Debug("stout: sent")
	}
}

func (e *Emitter) conn0() (net.Conn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn != nil {
		return e.conn, nil
	}

	conn, err := net.DialUDP("udp", nil, e.cfg.addr)
	if err != nil {
		return nil, err
	}
	e.conn = conn
	return conn, nil
}

// Close releases the emitter's socket, if one was ever dialed.
func (e *Emitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}
