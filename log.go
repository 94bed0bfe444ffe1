// log.go - diagnostics for the render core

package render

import (
	"fmt"
	"log"
	"os"
)

// diagLog is the destination for fatal diagnostics and optional trace output.
// Matches the teacher's plain stderr logging (no structured logging library
// is pulled into the render core's hot path).
var diagLog = log.New(os.Stderr, "render: ", 0)

// assertf terminates the process with a diagnostic when a renderer invariant
// is violated. Per spec §5/§7, debug assertions are fatal: a failed in-bounds
// or parameter check aborts rather than propagating an error, because the
// render hot path has no error-return protocol.
func assertf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	diagLog.Fatalf("assertion failed: "+format, args...)
}

// trace prints a verbose diagnostic line only when enabled is true. Nothing
// in the package calls it yet; it has no per-column hot-path caller (§4.10).
func trace(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	fmt.Fprintf(os.Stderr, "render trace: "+format+"\n", args...)
}
