package chatcron

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAddJobRejectsInvalidSpec(t *testing.T) {
	s := New()
	err := s.AddJob("bad", "not a cron spec", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}
}

func TestAddAgingJobFiresOnSchedule(t *testing.T) {
	s := New()
	fired := make(chan struct{}, 1)
	if err := s.AddAgingJob("@every 50ms", func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("AddAgingJob: %v", err)
	}

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected the aging job to fire within one second")
	}
}

func TestAddJobLogsAndSwallowsFailures(t *testing.T) {
	s := New()
	attempted := make(chan struct{}, 1)
	if err := s.AddJob("always-fails", "@every 50ms", func(context.Context) error {
		select {
		case attempted <- struct{}{}:
		default:
		}
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	select {
	case <-attempted:
	case <-time.After(time.Second):
		t.Fatal("expected the failing job to still be attempted")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	s := New()
	s.Start()
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
