package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flatground/skateline/internal/testing/leaktest"
	"github.com/flatground/skateline/internal/worker"
)

type signalJob struct {
	runs int
	done chan struct{}
}

func (j *signalJob) Process(ctx context.Context) error {
	j.runs++
	select {
	case j.done <- struct{}{}:
	default:
	}
	return nil
}

func TestSchedulerRunsJobOnInterval(t *testing.T) {
	pool := worker.NewPool(1, 10)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	defer sched.Stop()

	job := &signalJob{done: make(chan struct{}, 10)}
	sched.Schedule(10*time.Millisecond, job)

	timeout := time.After(time.Second)
	runCount := 0
	for runCount < 2 {
		select {
		case <-job.done:
			runCount++
		case <-timeout:
			t.Fatal("Timeout waiting for job execution")
		}
	}

	assert.GreaterOrEqual(t, runCount, 2)
}

func TestSchedulerStopHaltsTicking(t *testing.T) {
	pool := worker.NewPool(1, 10)
	pool.Start()
	defer pool.Stop()

	sched := New(pool)
	job := &signalJob{done: make(chan struct{}, 10)}
	sched.Schedule(5*time.Millisecond, job)

	<-job.done
	sched.Stop()

	// Drain anything already enqueued, then expect silence
	time.Sleep(20 * time.Millisecond)
	for len(job.done) > 0 {
		<-job.done
	}
	select {
	case <-job.done:
		t.Fatal("job ran after Stop")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestSchedulerStopLeavesNoGoroutines(t *testing.T) {
	leaktest.CheckNone(t, func() {
		pool := worker.NewPool(1, 10)
		pool.Start()

		sched := New(pool)
		sched.Schedule(5*time.Millisecond, &signalJob{done: make(chan struct{}, 10)})

		sched.Stop()
		pool.Stop()
	})
}
