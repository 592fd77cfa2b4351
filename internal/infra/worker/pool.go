package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrQueueFull is returned by Submit when every worker is busy and the buffer is full.
	ErrQueueFull = errors.New("worker queue full")
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("worker pool stopped")
)

// TaskTimeout bounds a single task. Tasks run on a context detached from the
// pool's, so shutdown never aborts a send that is already queued.
const TaskTimeout = 30 * time.Second

// A small worker pool for post-commit side effects (emails, alerts).
type Task func(ctx context.Context) error

type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	jobs    chan Task
	quit    chan struct{}
	once    sync.Once
	n       int
	logger  *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	l := logger.With().Str("component", "worker_pool").Logger()
	return &Pool{jobs: make(chan Task, workers*16), quit: make(chan struct{}), n: workers, logger: &l}
}

// Start launches the workers. Cancelling ctx makes them finish the buffer and exit;
// Stop then runs anything queued afterwards.
func (p *Pool) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					p.drain(base, id)
					return
				case <-p.quit:
					p.drain(base, id)
					return
				case task := <-p.jobs:
					p.run(base, id, task)
				}
			}
		}(i)
	}
}

// drain runs whatever is still buffered so queued emails are not lost on shutdown.
func (p *Pool) drain(ctx context.Context, id int) {
	for {
		select {
		case task := <-p.jobs:
			p.run(ctx, id, task)
		default:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	if task == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Int("worker", id).Interface("panic", r).Msg("task panicked")
		}
	}()
	tctx, cancel := context.WithTimeout(ctx, TaskTimeout)
	defer cancel()
	if err := task(tctx); err != nil {
		p.logger.Warn().Err(err).Int("worker", id).Msg("task error")
	}
}

// Stop rejects new work, waits for the workers and runs any task they left behind.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.quit)
		p.mu.Unlock()
	})
	p.wg.Wait()
	p.drain(context.Background(), -1)
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return ErrQueueFull
	}
}
