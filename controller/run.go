package controller

import (
	"context"
	"log"
	"time"
)

// DefaultTickInterval is the polling cadence used by Run when none is given.
const DefaultTickInterval = 20 * time.Millisecond

// Run ticks the controller until ctx is cancelled. Init must have succeeded
// first. On exit every relay is released and the reader is closed.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	defer func() {
		c.sequencer.Reset()
		c.bank.InitializeAllOff()
		c.CloseJournal()
		if err := c.reader.Close(); err != nil {
			log.Printf("[Controller] close reader: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Controller] stopping: %v", ctx.Err())
			return nil
		case now := <-ticker.C:
			c.Tick(now)
		}
	}
}
