package pipecheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aptible/supercronic/cronexpr"
)

var ERR_SCHEDULE_EXHAUSTED = errors.New("Cron expression has no future run time")

// Runs cb every time the cron expression fires.  Stops after runs calls when runs is greater than 0,
// when ctx is done, or on the first error returned by cb.
//
// Expressions follow cronexpr: 5 fields, or 7 with leading seconds and trailing year.
func RunSchedule(ctx context.Context, cron string, runs int, cb func(run int) error) error {
	expr, err := cronexpr.Parse(cron)
	if err != nil {
		return fmt.Errorf("Failed to parse cron expression: %q, error was %w", cron, err)
	}

	for run := 0; runs <= 0 || run < runs; run++ {
		now := time.Now()
		next := expr.Next(now)
		if next.IsZero() {
			return ERR_SCHEDULE_EXHAUSTED
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if err = cb(run); err != nil {
			return err
		}
	}
	return nil
}
