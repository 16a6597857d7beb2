package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/docvector/internal/config"
	"github.com/akolanti/docvector/internal/metrics"
	"github.com/akolanti/docvector/pkg/logger_i"
)

var ErrPoolStopped = errors.New("worker pool stopped")

type Config struct {
	Min         int
	Max         int
	IdleTimeout time.Duration
	QueueSize   int
}

func ConfigFrom(c config.WorkerConfig) Config {
	return Config{Min: c.Min, Max: c.Max, IdleTimeout: c.IdleTimeout, QueueSize: c.QueueSize}
}

type task struct {
	ctx context.Context
	fn  func(ctx context.Context)
}

// Pool runs submitted tasks on a bounded, elastic set of workers. Min workers
// are always running; the dispatcher adds workers while queued tasks outnumber
// idle workers, up to Max. Workers above Min retire after IdleTimeout.
type Pool struct {
	cfg               Config
	taskChannel       chan task
	dispatcherChannel chan struct{}
	stopChannel       chan struct{}
	workerWaitGroup   sync.WaitGroup
	mu                sync.RWMutex
	stopped           bool
	started           atomic.Bool
	stopOnce          sync.Once

	currentWorkerCount atomic.Int64
	busyWorkerCount    atomic.Int64
	logger             *logger_i.Logger
}

func NewPool(cfg Config) *Pool {
	if cfg.Min < 1 {
		cfg.Min = 1
	}
	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = config.IdleWorkerTimeout
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	return &Pool{
		cfg:               cfg,
		taskChannel:       make(chan task, cfg.QueueSize),
		dispatcherChannel: make(chan struct{}, 1),
		stopChannel:       make(chan struct{}),
		logger:            logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	p.logger.Info("Initializing worker pool", "min", p.cfg.Min, "max", p.cfg.Max)
	for i := 0; i < p.cfg.Min; i++ {
		p.createWorker()
	}
	go p.dispatcher()
}

// Submit queues fn to run with ctx. It blocks while the queue is full and
// returns ctx's error if ctx ends first.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	metrics.IncrementTasksInQueue()
	select {
	case p.taskChannel <- task{ctx: ctx, fn: fn}:
	case <-ctx.Done():
		metrics.DecrementTasksInQueue()
		return ctx.Err()
	}

	p.signalDispatcher()
	return nil
}

// Stop refuses new work, lets workers drain the queue and waits for them.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.stopChannel)
		p.mu.Unlock()

		p.workerWaitGroup.Wait()
		p.logger.Info("Worker pool stopped")
	})
}

func (p *Pool) WorkerCount() int {
	return int(p.currentWorkerCount.Load())
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.dispatcherChannel:
			p.mu.RLock()
			for !p.stopped && p.currentWorkerCount.Load() < int64(p.cfg.Max) && p.needsWorker() {
				p.logger.Debug("Creating new worker", "workerCount", p.currentWorkerCount.Load())
				p.createWorker()
			}
			p.mu.RUnlock()
		case <-p.stopChannel:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	p.currentWorkerCount.Add(1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	for {
		select {
		case t := <-p.taskChannel:
			p.execute(t)

		case <-p.stopChannel:
			p.drain()
			p.currentWorkerCount.Add(-1)
			p.removeWorker("Stop worker signal received")
			return

		case <-time.After(p.cfg.IdleTimeout):
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
		}
	}
}
