//go:build headless

// presenter_headless.go - headless render loop, for running phoenixview
// under CI or over SSH with no display attached.
//
// Grounded on video_backend_headless.go's HeadlessVideoOutput: the same
// no-window stand-in for the windowed backend, driven by the same
// constructor/function name so main.go never has to know which build it
// was compiled into. Where the original backend just counted frames and
// discarded them, this one actually calls through to the renderer every
// tick, since the point here is a smoke-testable render loop, not a
// placeholder for a video device that was never going to be exercised.
package main

import (
	"context"
	"fmt"
)

// headlessFrameCount is how many frames to render before returning; a
// windowed session runs until closed, but a headless one has no close
// button, so it needs a fixed amount of work to do instead.
const headlessFrameCount = 300

func runPresenter(ctx context.Context, v *Viewer, _ int) error {
	for i := 0; i < headlessFrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := v.RenderFrame(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}
