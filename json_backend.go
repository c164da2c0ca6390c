package stout

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// JSONFileBackend appends one JSON object per flush to filename. The file
// as a whole is a sequence of independent top-level objects, not a JSON
// array (§4.7, §9 Open Question 4 — preserved as-is). Key order is
// "_timestamp" first, then counters, gauges, and timers, each sorted by
// name for determinism.
func JSONFileBackend(filename string) Backend {
	return func(snap *Snapshot) error {
		f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("stout: opening %s: %w", filename, err)
		}
		defer f.Close()

		var b strings.Builder
		b.WriteString("{\n")
		fmt.Fprintf(&b, "    %s: %s", quoteJSON("_timestamp"), quoteJSON(isoLocal(snap.Timestamp)))

		for _, name := range sortedCounterKeys(snap.Counters) {
			fmt.Fprintf(&b, ",\n    %s: %s", quoteJSON(name), formatJSONFloat(snap.Counters[name]))
		}
		for _, name := range sortedGaugeKeys(snap.Gauges) {
			fmt.Fprintf(&b, ",\n    %s: %d", quoteJSON(name), snap.Gauges[name])
		}
		for _, name := range sortedTimerKeys(snap.Timers) {
			t := snap.Timers[name]
			fmt.Fprintf(&b, ",\n    %s: { %s: %s, %s: %d, %s: %d, %s: %d, %s: %s }",
				quoteJSON(name),
				quoteJSON("avg"), formatJSONFloat(t.Avg),
				quoteJSON("count"), t.Count,
				quoteJSON("min"), t.Min,
				quoteJSON("max"), t.Max,
				quoteJSON("stddev"), formatJSONFloat(t.StdDev),
			)
		}

		b.WriteString("\n}\n")
		_, err = f.WriteString(b.String())
		return err
	}
}

// quoteJSON renders value as a double-quoted JSON string, escaping
// exactly as original_source/stout/metrics/backends.cpp's
// to_quoted_string does: the seven short-form escapes, and every other
// byte in (0x00, 0x1f] as an uppercase \uXXXX sequence.
func quoteJSON(value string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c > 0 && c <= 0x1f {
				fmt.Fprintf(&b, `\u%04X`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatJSONFloat renders a float64 the way
// json_file_backend::double_to_string does: at most one decimal point,
// always ending in a digit, with no more trailing zeros than the single
// one needed to keep the number looking like a float (e.g. "1.0", never
// "1." or "1"). Unlike the C printf-based original (%#.16g, then manual
// zero-trimming), this uses Go's exact shortest round-trip formatting,
// which satisfies the same three JSON-correctness properties (§8) without
// hand-rolled digit surgery.
func formatJSONFloat(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
