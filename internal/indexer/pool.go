package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrQueueFull is returned by Submit when every worker is busy and the
	// queue has no room.
	ErrQueueFull = errors.New("index queue full")

	// ErrPoolClosed is returned by Submit after Shutdown.
	ErrPoolClosed = errors.New("index pool closed")
)

// Task is one unit of background work. ctx is canceled when the pool gives up
// waiting on shutdown.
type Task func(ctx context.Context)

// PoolConfig sizes the worker pool.
type PoolConfig struct {
	CoreWorkers int
	MaxWorkers  int
	QueueSize   int
	// ShutdownTimeout bounds how long Shutdown waits for queued work.
	ShutdownTimeout time.Duration
	// IdleTimeout retires an extra worker that found no work for this long.
	IdleTimeout time.Duration
}

// DefaultPoolConfig returns 5 core workers, up to 10 under load, a queue of
// 100 and a 60s drain on shutdown.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		CoreWorkers:     5,
		MaxWorkers:      10,
		QueueSize:       100,
		ShutdownTimeout: 60 * time.Second,
		IdleTimeout:     30 * time.Second,
	}
}

// Pool runs tasks on a bounded set of goroutines. Core workers live for the
// lifetime of the pool. When the queue is full, extra workers are started up
// to MaxWorkers and retire after IdleTimeout. Beyond that Submit rejects.
type Pool struct {
	cfg    PoolConfig
	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	wg    sync.WaitGroup
	extra atomic.Int32
}

// NewPool starts the core workers.
func NewPool(cfg PoolConfig, logger *slog.Logger) *Pool {
	if cfg.CoreWorkers <= 0 {
		cfg.CoreWorkers = 1
	}
	if cfg.MaxWorkers < cfg.CoreWorkers {
		cfg.MaxWorkers = cfg.CoreWorkers
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		queue:  make(chan Task, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}

	p.wg.Add(cfg.CoreWorkers)
	for range cfg.CoreWorkers {
		go p.coreWorker()
	}
	indexWorkers.Set(float64(cfg.CoreWorkers))
	return p
}

// Submit queues task, or hands it to a new extra worker when the queue is
// full. It never blocks.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- task:
		indexQueueDepth.Set(float64(len(p.queue)))
		return nil
	default:
	}

	if p.startExtra(task) {
		return nil
	}
	return ErrQueueFull
}

func (p *Pool) startExtra(task Task) bool {
	limit := int32(p.cfg.MaxWorkers - p.cfg.CoreWorkers)
	for {
		n := p.extra.Load()
		if n >= limit {
			return false
		}
		if p.extra.CompareAndSwap(n, n+1) {
			break
		}
	}
	p.wg.Add(1)
	indexWorkers.Inc()
	go p.extraWorker(task)
	return true
}

func (p *Pool) coreWorker() {
	defer p.wg.Done()
	for task := range p.queue {
		indexQueueDepth.Set(float64(len(p.queue)))
		p.run(task)
	}
}

func (p *Pool) extraWorker(first Task) {
	defer func() {
		p.extra.Add(-1)
		indexWorkers.Dec()
		p.wg.Done()
	}()

	p.run(first)

	idle := time.NewTimer(p.cfg.IdleTimeout)
	defer idle.Stop()
	for {
		select {
		case task, ok := <-p.queue:
			if !ok {
				return
			}
			indexQueueDepth.Set(float64(len(p.queue)))
			p.run(task)
			idle.Reset(p.cfg.IdleTimeout)
		case <-idle.C:
			return
		}
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("index task panicked", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	task(p.ctx)
}

// Shutdown stops accepting tasks and waits up to ShutdownTimeout for queued
// and running tasks. After that it cancels the task context and returns an
// error once the workers have observed it.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(p.cfg.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-timer.C:
	}

	pending := len(p.queue)
	p.cancel()
	p.logger.Warn("index pool drain timed out, canceling remaining work",
		slog.Int("pending", pending),
		slog.Duration("timeout", p.cfg.ShutdownTimeout),
	)
	<-done
	return fmt.Errorf("index pool: drain timed out after %s with %d tasks pending", p.cfg.ShutdownTimeout, pending)
}
