package client

import (
	"context"
	"time"
)

// CallIn runs cb once, no earlier than delay from now, as a supervised
// task. If the client is closed first the callback never runs. Errors
// returned by cb are handled by the failure policy.
func (c *Client) CallIn(cb func(context.Context) error, delay time.Duration) {
	if cb == nil {
		return
	}
	c.tasks.Go("call_in", func(ctx context.Context) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		return cb(ctx)
	})
}
