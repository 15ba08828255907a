package pipecheck

import (
	"context"
	"errors"
	"testing"
	"time"
)

const EVERY_SECOND = "* * * * * * *"

func TestRunScheduleBadCron(t *testing.T) {
	err := RunSchedule(context.Background(), "not a cron", 1, func(int) error { return nil })
	if err == nil {
		t.Fatalf("Expected a parse error")
	}
}

func TestRunScheduleRuns(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []int
	err := RunSchedule(ctx, EVERY_SECOND, 2, func(run int) error {
		got = append(got, run)
		return nil
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("Expected runs [0 1], got: %v", got)
	}
}

func TestRunScheduleStopsOnError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	count := 0
	err := RunSchedule(ctx, EVERY_SECOND, 0, func(int) error {
		count++
		return ERR_FATAL_SYSCALL
	})
	if !errors.Is(err, ERR_FATAL_SYSCALL) {
		t.Fatalf("Expected the callback error, got: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected a single call, got: %d", count)
	}
}

func TestRunScheduleCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// once a year, so only the context can end this
	err := RunSchedule(ctx, "0 0 0 1 1 * *", 0, func(int) error {
		t.Fatalf("Callback should never run")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
}

func TestRunScheduleExhausted(t *testing.T) {
	err := RunSchedule(context.Background(), "0 0 0 1 1 * 2000", 0, func(int) error { return nil })
	if err != ERR_SCHEDULE_EXHAUSTED {
		t.Fatalf("Expected ERR_SCHEDULE_EXHAUSTED, got: %v", err)
	}
}
