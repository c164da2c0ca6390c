package stout

import "time"

// nowMillis is the default monotonic-enough millisecond clock used
// wherever a caller doesn't inject its own (tests use a deterministic
// one instead). It is plain wall-clock time, not a Windows-style tick
// counter — see file_backend.go's isoLocal for why that distinction
// matters here.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
