package stout

import (
	"fmt"
	"strconv"
	"strings"
)

// stopCommand is the administrative shutdown datagram (§4.1, §4.4).
const stopCommand = "stop"

// maxOutboundPacket is the largest datagram an emitter will send,
// terminator included (§4.1).
const maxOutboundPacket = 256

// IsStopCommand reports whether buf is the literal administrative
// shutdown datagram.
func IsStopCommand(buf []byte) bool {
	return string(buf) == stopCommand
}

// ParseDatagram decodes one statsd-style line into an Event.
//
// The split point is the *last* '|' and the *last* ':' in the buffer, so
// that metric names may themselves contain both characters. A buffer
// missing either delimiter, or carrying an unrecognized type suffix, is
// discarded (ok is false); callers should log and move on, never error
// out, since the wire is UDP and already lossy.
func ParseDatagram(buf []byte) (Event, bool) {
	pipeIdx := strings.LastIndexByte(string(buf), '|')
	colonIdx := strings.LastIndexByte(string(buf), ':')
	if pipeIdx < 0 || colonIdx < 0 || colonIdx >= pipeIdx {
		return Event{}, false
	}

	name := string(buf[:colonIdx])
	valueStr := string(buf[colonIdx+1 : pipeIdx])
	typeStr := string(buf[pipeIdx+1:])

	switch typeStr {
	case "c":
		return Event{Name: name, Value: parseValue(valueStr), Type: Counter}, true
	case "h", "ms":
		return Event{Name: name, Value: parseValue(valueStr), Type: Histogram}, true
	case "g":
		kind := Gauge
		if len(valueStr) > 0 && (valueStr[0] == '+' || valueStr[0] == '-') {
			kind = GaugeDelta
		}
		return Event{Name: name, Value: parseValue(valueStr), Type: kind}, true
	default:
		return Event{}, false
	}
}

// parseValue parses a signed decimal integer, documented (not errored) to
// 0 on malformed input — this mirrors the source's lossy-UDP semantics
// (§4.1): a bad value never aborts ingestion of the rest of the stream.
func parseValue(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatCounter renders an outbound counter datagram: "{ns}.{name}:{n}|c".
func FormatCounter(namespace, name string, n int64) string {
	return fmt.Sprintf("%s:%d|c", joinNamespace(namespace, name), n)
}

// FormatHistogram renders an outbound histogram datagram: "{ns}.{name}:{n}|ms".
func FormatHistogram(namespace, name string, n int64) string {
	return fmt.Sprintf("%s:%d|ms", joinNamespace(namespace, name), n)
}

// FormatGauge renders an outbound absolute gauge datagram: "{ns}.{name}:{n}|g".
func FormatGauge(namespace, name string, n int64) string {
	return fmt.Sprintf("%s:%d|g", joinNamespace(namespace, name), n)
}

// FormatGaugeDelta renders an outbound gauge-delta datagram, with the sign
// always emitted: "{ns}.{name}:{+n}|g".
func FormatGaugeDelta(namespace, name string, n int64) string {
	return fmt.Sprintf("%s:%+d|g", joinNamespace(namespace, name), n)
}

func joinNamespace(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// fitsOutboundPacket reports whether the formatted datagram (plus a
// trailing NUL terminator) fits within the 256-byte outbound cap (§4.1).
func fitsOutboundPacket(datagram string) bool {
	return len(datagram)+1 <= maxOutboundPacket
}
