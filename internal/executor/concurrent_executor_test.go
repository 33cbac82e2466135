package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rngbench/internal"
)

func quietLogger() *internal.Logger { return internal.NewLogger(internal.LogLevelError) }

func TestExecuteRunsEveryJob(t *testing.T) {
	ce := NewConcurrentExecutor(4, quietLogger())

	var ran int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{Name: "job", Cost: 1, Run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}}
	}

	errs := ce.Execute(context.Background(), jobs)
	require.Len(t, errs, 10)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(10), atomic.LoadInt32(&ran))
}

func TestExecuteKeepsErrorsInTheirSlot(t *testing.T) {
	ce := NewConcurrentExecutor(2, quietLogger())
	boom := errors.New("boom")

	errs := ce.Execute(context.Background(), []Job{
		{Name: "ok", Run: func(ctx context.Context) error { return nil }},
		{Name: "bad", Run: func(ctx context.Context) error { return boom }},
		{Name: "ok2", Run: func(ctx context.Context) error { return nil }},
	})

	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], boom)
	assert.NoError(t, errs[2])
}

func TestExecuteRespectsCapacity(t *testing.T) {
	ce := NewConcurrentExecutor(3, quietLogger())

	var current, peak int32
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{Name: "weighted", Cost: 1, Run: func(ctx context.Context) error {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil
		}}
	}

	ce.Execute(context.Background(), jobs)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestExecuteQueuedJobsWaitForCapacity(t *testing.T) {
	ce := NewConcurrentExecutor(1, quietLogger())

	var ran int32
	jobs := make([]Job, 4)
	for i := range jobs {
		jobs[i] = Job{Name: "slow", Cost: 1, Run: func(ctx context.Context) error {
			time.Sleep(40 * time.Millisecond)
			atomic.AddInt32(&ran, 1)
			return nil
		}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	start := time.Now()
	for _, err := range ce.Execute(ctx, jobs) {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&ran))
	assert.GreaterOrEqual(t, time.Since(start), 160*time.Millisecond)
}

func TestExecuteClampsOversizedJobs(t *testing.T) {
	ce := NewConcurrentExecutor(2, quietLogger())

	errs := ce.Execute(context.Background(), []Job{
		{Name: "huge", Cost: 50, Run: func(ctx context.Context) error { return nil }},
	})
	assert.NoError(t, errs[0])
}

func TestExecuteCancelled(t *testing.T) {
	ce := NewConcurrentExecutor(1, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errs := ce.Execute(ctx, []Job{
		{Name: "never", Cost: 1, Run: func(ctx context.Context) error { return ctx.Err() }},
	})
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestCostOf(t *testing.T) {
	assert.Equal(t, int64(1), CostOf("nist_monobit"))
	assert.Equal(t, int64(6), CostOf("nist_linear_complexity"))
	assert.Equal(t, int64(DefaultCost), CostOf("something_else"))
	assert.Equal(t, int64(1), NewConcurrentExecutor(0, nil).Capacity())
}
