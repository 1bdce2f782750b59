package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrQueueFull = errors.New("notification queue full")

// EmailSender is the synchronous delivery path the pool workers call.
type EmailSender interface {
	SendDocumentEmail(ctx context.Context, email DocumentEmail) (Receipt, error)
}

type Job struct {
	Email DocumentEmail
	// Done, when set, receives the outcome. It must not block.
	Done func(Receipt, error)
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

// Start registers the worker as idle until quit is closed or ctx is done.
func (w *Worker) Start(ctx context.Context, quit <-chan struct{}, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			// register as idle
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-quit:
				return
			case <-ctx.Done():
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker sending email", "worker_id", w.ID, "to", job.Email.To)
				processFunc(job)
			case <-quit:
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Pool delivers emails in the background with a bounded queue.
type Pool struct {
	sender EmailSender
	logger *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	quit       chan struct{}
	wg         sync.WaitGroup
	once       sync.Once
	mu         sync.RWMutex
	closed     bool
}

type PoolConfig struct {
	Workers   int
	QueueSize int
}

func NewPool(sender EmailSender, cfg PoolConfig, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}

	p := &Pool{
		sender:     sender,
		logger:     logger,
		maxWorkers: cfg.Workers,
		jobQueue:   make(chan Job, cfg.QueueSize),
		workerPool: make(chan chan Job, cfg.Workers),
		ctx:        ctx,
		cancel:     cancel,
		quit:       make(chan struct{}),
	}
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			NewWorker(i, p.workerPool, p.logger).Start(p.ctx, p.quit, &p.wg, p.process)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("notification worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

// dispatch hands queued jobs to idle workers until the queue is closed and
// empty. Once the pool is cancelled the remaining jobs are dropped one by one.
func (p *Pool) dispatch() {
	defer p.wg.Done()
	defer close(p.quit)

	for job := range p.jobQueue {
		if p.ctx.Err() != nil {
			p.drop(job)
			continue
		}
		select {
		case jobChannel := <-p.workerPool:
			select {
			case jobChannel <- job:
			case <-p.ctx.Done():
				p.drop(job)
			}
		case <-p.ctx.Done():
			p.drop(job)
		}
	}
	p.logger.Info("notification dispatcher shutting down")
}

func (p *Pool) process(job Job) {
	receipt, err := p.sender.SendDocumentEmail(p.ctx, job.Email)
	if err != nil {
		p.logger.Error("queued document email failed", "to", job.Email.To, "error", err)
	}
	if job.Done != nil {
		job.Done(receipt, err)
	}
}

func (p *Pool) drop(job Job) {
	p.logger.Warn("notification dropped on shutdown", "to", job.Email.To)
	if job.Done != nil {
		job.Done(Receipt{}, context.Canceled)
	}
}

// Enqueue never blocks; a full queue is reported to the caller.
func (p *Pool) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return context.Canceled
	}

	select {
	case p.jobQueue <- job:
		p.logger.Debug("document email queued", "to", job.Email.To, "queue_length", len(p.jobQueue))
		return nil
	default:
		p.logger.Warn("notification queue full, rejecting email",
			"to", job.Email.To,
			"queue_capacity", cap(p.jobQueue))
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and delivers what is already queued. When ctx
// is done first, in-flight sends are cancelled and the rest of the queue is
// dropped with a Done(context.Canceled) for each job.
func (p *Pool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.logger.Info("shutting down notification pool", "pending", len(p.jobQueue))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("notification drain deadline reached, dropping pending emails", "pending", len(p.jobQueue))
		p.cancel()
		<-done
	}
	p.cancel()
	p.logger.Info("notification pool shutdown complete")
}
