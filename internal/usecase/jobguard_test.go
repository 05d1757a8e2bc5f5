package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func TestJobGuard_TryRun(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Runs When Idle", func(t *testing.T) {
		guard := NewJobGuard("purge", nil, logger)
		ran := false

		ok := guard.TryRun(context.Background(), func(ctx context.Context) error {
			ran = true
			return nil
		})
		if !ok || !ran {
			t.Errorf("expected fn to run, ok=%v ran=%v", ok, ran)
		}
	})

	t.Run("Overlapping Trigger Is Skipped", func(t *testing.T) {
		guard := NewJobGuard("purge", nil, logger)
		started := make(chan struct{})
		release := make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard.TryRun(context.Background(), func(ctx context.Context) error {
				close(started)
				<-release
				return nil
			})
		}()

		<-started
		if guard.TryRun(context.Background(), func(ctx context.Context) error { return nil }) {
			t.Error("expected overlapping run to be skipped")
		}
		close(release)
		wg.Wait()

		if !guard.TryRun(context.Background(), func(ctx context.Context) error { return nil }) {
			t.Error("expected guard to be free after first run finished")
		}
	})

	t.Run("Async Dispatch Leaves The Trigger Loop Free", func(t *testing.T) {
		guard := NewJobGuard("purge", nil, logger)
		started := make(chan struct{})
		release := make(chan struct{})

		guard.RunAsync(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
		<-started

		// The dispatching loop is not blocked by the in-flight run, so a
		// trigger arriving now is genuinely overlapping and gets skipped
		// rather than queued behind it.
		executed := false
		if guard.TryRun(context.Background(), func(ctx context.Context) error {
			executed = true
			return nil
		}) || executed {
			t.Error("expected overlapping trigger to be skipped")
		}
		close(release)

		deadline := time.Now().Add(time.Second)
		for !guard.TryRun(context.Background(), func(ctx context.Context) error { return nil }) {
			if time.Now().After(deadline) {
				t.Fatal("guard never became free after the run finished")
			}
			time.Sleep(time.Millisecond)
		}
	})

	t.Run("Job Error Does Not Poison The Guard", func(t *testing.T) {
		guard := NewJobGuard("purge", nil, logger)

		guard.TryRun(context.Background(), func(ctx context.Context) error {
			return errors.New("job failed")
		})
		if !guard.TryRun(context.Background(), func(ctx context.Context) error { return nil }) {
			t.Error("expected guard to be reusable after a failed run")
		}
	})
}
