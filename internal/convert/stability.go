package convert

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrVanished is returned when the file disappears while being sampled.
var ErrVanished = errors.New("file vanished during stability check")

// ErrNeverSettled is returned when the file size kept changing for the
// whole sampling budget. Callers treat this as a skip, not a failure.
var ErrNeverSettled = errors.New("file never settled")

// StabilityChecker decides that a file has finished being written by
// sampling its size until it stays unchanged for Required consecutive
// samples.
type StabilityChecker struct {
	// Interval is the pause between size samples.
	Interval time.Duration
	// Required is how many consecutive equal samples count as settled.
	Required int
	// MaxAttempts bounds the total number of samples taken.
	MaxAttempts int
}

// NewStabilityChecker returns a checker with the default sampling policy:
// three consecutive equal sizes 600ms apart, within six samples.
func NewStabilityChecker() *StabilityChecker {
	return &StabilityChecker{
		Interval:    600 * time.Millisecond,
		Required:    3,
		MaxAttempts: 6,
	}
}

// WaitStable blocks until the file at path is considered settled. It
// returns ErrVanished if the file disappears, ErrNeverSettled if the
// sampling budget runs out, or the context error on cancellation. Any size
// change resets the consecutive-equal count to zero.
func (c *StabilityChecker) WaitStable(ctx context.Context, path string) error {
	last, err := fileSize(path)
	if err != nil {
		return err
	}

	timer := time.NewTimer(c.Interval)
	defer timer.Stop()

	stable := 0
	for attempt := 0; attempt < c.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		timer.Reset(c.Interval)

		size, err := fileSize(path)
		if err != nil {
			return err
		}
		if size == last {
			stable++
			if stable >= c.Required {
				return nil
			}
		} else {
			stable = 0
			last = size
		}
	}
	return ErrNeverSettled
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrVanished
		}
		return 0, err
	}
	return info.Size(), nil
}
