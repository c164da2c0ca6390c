package stout

import (
	"fmt"
	"os"
	"time"
)

// isoLocal renders a millisecond monotonic tick as a local-time ISO-8601
// timestamp with millisecond precision, e.g. "2006-01-02T15:04:05.000".
// original_source/stout/metrics/metrics.cpp's timer::to_string rebuilds
// wall-clock time from a GetTickCount() diff because Windows' tick
// counter has no wall-clock meaning; Go's clock doesn't have that
// problem, so ticks here are plain time.Now().UnixMilli() values and
// convert back to a wall time directly.
func isoLocal(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02T15:04:05.000")
}

// FileBackend appends one flush's worth of plain-text stats to filename,
// opening and closing the file on every call (§4.7, §5 "Resource
// lifetime"). Output matches original_source/stout/metrics/backends.cpp's
// file_backend::operator(): a "@ TS: ..." header, the same lines as the
// console backend, and a dashed separator.
func FileBackend(filename string) Backend {
	return func(snap *Snapshot) error {
		f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("stout: opening %s: %w", filename, err)
		}
		defer f.Close()

		fmt.Fprintf(f, "@ TS: %s\n", isoLocal(snap.Timestamp))
		writeConsoleLines(f, snap)
		fmt.Fprintln(f, "----------------------------------------------")

		return nil
	}
}
