package pipeline

import (
	"context"
	"sync"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// startHeadless starts the consumers of the outlets when running without a
// terminal. Frames are counted and discarded, messages go to the logger.
// Both consumers stop when the context gets cancelled.
func startHeadless(ctx context.Context, wg *sync.WaitGroup, logger *log.Logger, outlets machine.Outlets) {
	wg.Go(func() {
		frames := drainFrames(ctx, outlets)
		logger.Debug("Frames rendered", log.Int("count", frames))
	})
	wg.Go(func() {
		sinkLog(ctx, logger, outlets.Log)
	})
}

// drainFrames discards all frames and key events and returns the number of
// frames received.
func drainFrames(ctx context.Context, outlets machine.Outlets) int {
	defer outlets.Frames.Close()
	defer outlets.Keys.Close()

	var frames int
	for {
		select {
		case <-ctx.Done():
			return frames
		case <-outlets.Frames.C():
			frames++
		case <-outlets.Keys.C():
		}
	}
}

// sinkLog writes all messages to the logger. Messages that are still
// buffered when the context gets cancelled are written before returning.
func sinkLog(ctx context.Context, logger *log.Logger, logs *machine.Outlet[string]) {
	defer logs.Close()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case msg := <-logs.C():
					logger.Info(msg)
				default:
					return
				}
			}
		case msg := <-logs.C():
			logger.Info(msg)
		}
	}
}
