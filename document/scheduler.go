package document

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Scheduler runs parse tasks for one document. Starting a task cancels the
// one still in flight, so only the newest request produces a result.
type Scheduler struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	current string
}

// NewScheduler returns a scheduler with no task in flight.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Task is a running parse task.
type Task[T any] struct {
	ID     string
	done   chan struct{}
	result T
	err    error
}

// Done is closed when the task has finished.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its outcome. A cancelled
// task returns the context error and no result.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.result, t.err
}

// Schedule cancels the scheduler's in-flight task and runs fn in a new
// goroutine with a context derived from ctx.
func Schedule[T any](ctx context.Context, s *Scheduler, fn func(ctx context.Context) (T, error)) *Task[T] {
	taskCtx, cancel := context.WithCancel(ctx)
	task := &Task[T]{ID: uuid.NewString(), done: make(chan struct{})}

	s.mu.Lock()
	if s.cancel != nil {
		log.Debug().Str("task", s.current).Msg("cancelling stale parse task")
		s.cancel()
	}
	s.cancel = cancel
	s.current = task.ID
	s.mu.Unlock()

	log.Debug().Str("task", task.ID).Msg("parse task started")
	go func() {
		defer close(task.done)
		defer s.finish(task.ID, cancel)

		result, err := fn(taskCtx)
		if err == nil {
			err = taskCtx.Err()
		}
		if err != nil {
			task.err = err
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Debug().Str("task", task.ID).Msg("parse task cancelled")
			} else {
				log.Debug().Err(err).Str("task", task.ID).Msg("parse task failed")
			}
			return
		}
		task.result = result
		log.Debug().Str("task", task.ID).Msg("parse task finished")
	}()

	return task
}

// Cancel cancels the in-flight task, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.current = ""
	}
}

func (s *Scheduler) finish(id string, cancel context.CancelFunc) {
	cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == id {
		s.cancel = nil
		s.current = ""
	}
}
