package worker

import (
	"time"

	"github.com/akolanti/docvector/internal/metrics"
)

func (p *Pool) execute(t task) {
	metrics.DecrementTasksInQueue()
	if t.ctx.Err() != nil {
		p.logger.FromContext(t.ctx).Debug("Skipping task with finished context", "error", t.ctx.Err())
		metrics.CaptureTaskMetrics("skipped", 0)
		return
	}

	start := time.Now()
	p.busyWorkerCount.Add(1)
	p.signalDispatcher()
	defer func() {
		p.busyWorkerCount.Add(-1)
		metrics.CaptureTaskMetrics("executed", time.Since(start))
	}()
	t.fn(t.ctx)
}

// drain runs whatever is still queued once the pool is stopping.
func (p *Pool) drain() {
	for {
		select {
		case t := <-p.taskChannel:
			p.execute(t)
		default:
			return
		}
	}
}

func (p *Pool) signalDispatcher() {
	if !p.needsWorker() {
		return
	}
	select {
	case p.dispatcherChannel <- struct{}{}:
		metrics.StartDispatcherSignalCount()
	default:
	}
}

// needsWorker reports whether queued tasks outnumber idle workers.
func (p *Pool) needsWorker() bool {
	idle := p.currentWorkerCount.Load() - p.busyWorkerCount.Load()
	return int64(len(p.taskChannel)) > idle
}

// tryRetire decrements the worker count unless that would drop below Min.
func (p *Pool) tryRetire() bool {
	for {
		n := p.currentWorkerCount.Load()
		if n <= int64(p.cfg.Min) {
			return false
		}
		if p.currentWorkerCount.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// removeWorker expects the caller to have already decremented the worker count.
func (p *Pool) removeWorker(reason string) {
	p.workerWaitGroup.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", p.currentWorkerCount.Load())
}
