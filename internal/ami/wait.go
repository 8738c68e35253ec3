// Where: internal/ami/wait.go
// What: Bounded polling until a copied image becomes available.
// Why: Copies are asynchronous; publishing must wait for the image to exist.
package ami

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultWaitInterval    = 40 * time.Second
	DefaultWaitMaxAttempts = 45
)

// WaitConfig bounds the availability wait to Interval x MaxAttempts.
type WaitConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultWaitConfig waits up to 30 minutes.
func DefaultWaitConfig() WaitConfig {
	return WaitConfig{Interval: DefaultWaitInterval, MaxAttempts: DefaultWaitMaxAttempts}
}

func (c WaitConfig) normalized() WaitConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultWaitInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultWaitMaxAttempts
	}
	return c
}

// Bound is the longest time the wait can take.
func (c WaitConfig) Bound() time.Duration {
	c = c.normalized()
	return c.Interval * time.Duration(c.MaxAttempts)
}

// SleepFunc pauses between polls.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waitAvailable polls imageID until it is available, fails, or the attempts run out.
// A not-found answer counts as still pending; freshly copied ids can lag.
func waitAvailable(ctx context.Context, client ImageAPI, imageID string, cfg WaitConfig, sleep SleepFunc) error {
	cfg = cfg.normalized()
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		image, err := client.DescribeImage(ctx, imageID)
		switch {
		case errors.Is(err, ErrImageNotFound):
		case err != nil:
			return fmt.Errorf("describe image %s: %w", imageID, err)
		case image.State == ImageStateAvailable:
			return nil
		case image.State.terminalFailure():
			return fmt.Errorf("%w: %s entered state %q", ErrImageNotAvailable, imageID, image.State)
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		if err := sleep(ctx, cfg.Interval); err != nil {
			return fmt.Errorf("wait for image %s: %w", imageID, err)
		}
	}

	return fmt.Errorf(
		"%w: %s still not available after %d attempts (%s)",
		ErrImageNotAvailable,
		imageID,
		cfg.MaxAttempts,
		cfg.Bound(),
	)
}
