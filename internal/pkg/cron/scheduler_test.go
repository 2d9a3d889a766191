package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_RunsOnStartAndEveryInterval(t *testing.T) {
	fake := clockwork.NewFakeClock()
	scheduler := NewScheduler(fake, zap.NewNop())

	runs := make(chan struct{}, 10)
	require.NoError(t, scheduler.AddJob("relay", 3*time.Second, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	}))

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	waitRun(t, runs)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fake.BlockUntilContext(ctx, 1))

	fake.Advance(3 * time.Second)
	waitRun(t, runs)
}

func TestScheduler_StopEndsJobs(t *testing.T) {
	scheduler := NewScheduler(clockwork.NewFakeClock())

	started := make(chan struct{})
	require.NoError(t, scheduler.AddJob("block", time.Minute, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	scheduler.Start(context.Background())
	<-started

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_AddJobRejectsZeroInterval(t *testing.T) {
	scheduler := NewScheduler(nil)
	assert.Error(t, scheduler.AddJob("bad", 0, func(ctx context.Context) error { return nil }))
}

func TestScheduler_RunOnce(t *testing.T) {
	scheduler := NewScheduler(clockwork.NewFakeClock())
	boom := errors.New("boom")

	calls := 0
	require.NoError(t, scheduler.AddJob("ok", time.Second, func(ctx context.Context) error { calls++; return nil }))
	require.NoError(t, scheduler.AddJob("fails", time.Second, func(ctx context.Context) error { calls++; return boom }))

	err := scheduler.RunOnce(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
	assert.Equal(t, 2, calls)
}

func waitRun(t *testing.T, runs <-chan struct{}) {
	t.Helper()
	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
}
