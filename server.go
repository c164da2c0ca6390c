package stout

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPort matches original_source/stout/metrics/metrics_server.h's
// server_config default. Callers building a ServerConfig from a source
// that leaves the port unset (like confload) should substitute this
// value themselves; NewServerConfig takes the port exactly as given,
// including 0 (which asks the kernel for an ephemeral port — useful in
// tests).
const DefaultPort = 9999

const (
	// pollTimeout bounds how long the ingestion loop blocks waiting for a
	// datagram before re-checking the flush deadline (§4.4, §5).
	pollTimeout = 250 * time.Millisecond

	// maxDatagramSize is the accepted payload ceiling (§4.4, §6); anything
	// this size or larger is discarded unread.
	maxDatagramSize = 4096
)

// ServerConfig configures one ingestion server instance: the UDP port it
// binds, how often it flushes, and the backends/listeners it drives on
// every flush. It mirrors original_source/stout/metrics/metrics_server.h's
// server_config, including its builder-style setters.
type ServerConfig struct {
	port          int
	flushPeriodMs int
	preFlush      func()
	backends      []Backend
	listeners     []func(ServerEvent)
	logger        *logrus.Logger
}

// NewServerConfig creates a ServerConfig bound to the given port (0 asks
// the kernel for an ephemeral one) with a 60s flush period, matching the
// original's defaults.
func NewServerConfig(port int) *ServerConfig {
	return &ServerConfig{
		port:          port,
		flushPeriodMs: 60 * 1000,
		preFlush:      func() {},
		logger:        DefaultLogger(),
	}
}

// FlushEvery sets the flush period; period must be in [1, 3600] seconds
// (§4.5, §7).
func (c *ServerConfig) FlushEvery(periodSeconds int) (*ServerConfig, error) {
	if periodSeconds < 1 || periodSeconds > 3600 {
		return nil, fmt.Errorf("stout: flush period must be in [1, 3600] seconds, got %d", periodSeconds)
	}
	c.flushPeriodMs = periodSeconds * 1000
	return c, nil
}

// AddBackend registers a backend to be called, in registration order, on
// every flush.
func (c *ServerConfig) AddBackend(b Backend) *ServerConfig {
	c.backends = append(c.backends, b)
	return c
}

// PreFlush sets the callback invoked immediately before each flush is
// computed. The default is a no-op.
func (c *ServerConfig) PreFlush(fn func()) *ServerConfig {
	c.preFlush = fn
	return c
}

// AddServerListener registers a listener notified of StartupFailed,
// Started, and Stopped events, in registration order.
func (c *ServerConfig) AddServerListener(fn func(ServerEvent)) *ServerConfig {
	c.listeners = append(c.listeners, fn)
	return c
}

// WithLogger overrides the server's logger.
func (c *ServerConfig) WithLogger(l *logrus.Logger) *ServerConfig {
	c.logger = l
	return c
}

func (c *ServerConfig) flushPeriodMillis() int { return c.flushPeriodMs }

// Server owns the bound UDP socket, the raw store, and drives the
// ingestion loop (§4.4, §5). All of these are exclusively owned by the
// goroutine running Run; nothing else may touch them.
type Server struct {
	cfg   *ServerConfig
	store *RawStore
	self  *SelfStats
	now   func() int64

	conn *net.UDPConn
}

// NewServer constructs a Server. now supplies the monotonic millisecond
// clock used for internal timestamps and the metrics.internal.last_seen
// gauge; pass nil to use time.Now().UnixMilli.
func NewServer(cfg *ServerConfig, self *SelfStats, now func() int64) *Server {
	if now == nil {
		now = defaultClock
	}
	if self == nil {
		self = NewSelfStats(nil, cfg.logger)
	}
	return &Server{
		cfg:   cfg,
		store: NewRawStore(now),
		self:  self,
		now:   now,
	}
}

func defaultClock() int64 { return nowMillis() }

// Run binds the configured port and drives the ingestion loop until a
// "stop" datagram is received or the socket fails. It blocks the calling
// goroutine for the server's entire lifetime — callers that want a
// "dedicated execution context" per §5 should invoke Run in its own
// goroutine; callers content with "same thread" mode (§9) call it
// directly.
func (s *Server) Run() error {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: s.cfg.port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		s.notify(StartupFailed)
		return fmt.Errorf("stout: cannot bind udp port %d: %w", s.cfg.port, err)
	}
	s.conn = conn

	s.notify(Started)
	s.cfg.logger.WithField("port", s.cfg.port).Info("stout: ingestion server listening")

	buf := make([]byte, maxDatagramSize)
	lastFlush := s.now()

	for {
		conn.SetReadDeadline(time.Now().Add(pollTimeout))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				conn.Close()
				return fmt.Errorf("stout: reading udp socket: %w", err)
			}
		}

		if err == nil && n > 0 && n < maxDatagramSize {
			payload := buf[:n]
			if IsStopCommand(payload) {
				s.cfg.logger.Debug("stout: received stop, shutting down")
				conn.Close()
				s.notify(Stopped)
				return nil
			}
			s.ingest(payload)
		}

		if s.now()-lastFlush >= int64(s.cfg.flushPeriodMillis()) {
			lastFlush = s.now()
			s.doFlush()
		}
	}
}

// ingest applies one accepted datagram to the raw store, discarding (and
// counting) anything the wire codec can't parse (§4.4, §7).
func (s *Server) ingest(payload []byte) {
	ev, ok := ParseDatagram(payload)
	if !ok {
		s.cfg.logger.WithField("datagram", string(payload)).Debug("stout: discarding unparseable datagram")
		s.self.RecordParseError()
		return
	}
	s.store.Apply(ev)
	s.self.RecordPacket()
}

// doFlush runs the pre-flush hook, materializes a snapshot, fans it out
// to every backend, and reports self-instrumentation for the pass.
func (s *Server) doFlush() {
	start := time.Now()

	s.cfg.preFlush()
	snap := Flush(s.store, s.cfg.flushPeriodMillis(), s.now)
	fanout(s.cfg.backends, &snap, s.cfg.logger, s.self)

	s.self.Report(time.Since(start))
}

func (s *Server) notify(ev ServerEvent) {
	for _, fn := range s.cfg.listeners {
		fn(ev)
	}
}

// Stop sends the administrative "stop" datagram to the server's own
// listening address, the only supported shutdown mechanism (§5). It is
// the client-side counterpart of original_source/stout/metrics/
// metrics_server.cpp's server::stop.
func Stop(host string, port int) error {
	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("stout: cannot reach server to stop it: %w", err)
	}
	defer conn.Close()

	_, err = conn.Write([]byte(stopCommand))
	return err
}
