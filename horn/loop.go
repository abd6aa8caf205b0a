package horn

import (
	"context"
	"log/slog"
	"time"
)

// Hold durations of the example loop.
const (
	SequencedHold  = 1500 * time.Millisecond
	ContinuousHold = 4000 * time.Millisecond
)

// Controller is the part of Client the example loop drives.
type Controller interface {
	ActivatePrebuilt(ctx context.Context, tag PrebuiltRequest) error
	Deactivate(ctx context.Context) error
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunExampleLoop plays a sequenced pattern for 1500 ms, deactivates, sounds
// continuously for 4000 ms and deactivates again. The first error aborts the
// remaining steps.
func RunExampleLoop(ctx context.Context, logger *slog.Logger, c Controller, sleep Sleeper) error {
	if logger == nil {
		logger = slog.Default()
	}
	if sleep == nil {
		sleep = Sleep
	}

	steps := []struct {
		tag  PrebuiltRequest
		hold time.Duration
	}{
		{Sequenced, SequencedHold},
		{Continuous, ContinuousHold},
	}

	for _, step := range steps {
		logger.Info("Activating horn", "pattern", step.tag.String(), "hold", step.hold)
		if err := c.ActivatePrebuilt(ctx, step.tag); err != nil {
			return err
		}
		if err := sleep(ctx, step.hold); err != nil {
			return err
		}

		logger.Info("Deactivating horn")
		if err := c.Deactivate(ctx); err != nil {
			return err
		}
	}

	return nil
}
