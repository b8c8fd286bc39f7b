package worker

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Submit when the job queue has no free slot.
var ErrQueueFull = errors.New("worker: job queue full")

// ErrStopped is returned by Submit after the dispatcher has been stopped.
var ErrStopped = errors.New("worker: dispatcher stopped")

// Job is a unit of work executed by a worker.
type Job interface {
	Execute(ctx context.Context) error
	ID() string
}

// JobFunc adapts a function to the Job interface.
type JobFunc struct {
	Name string
	Fn   func(ctx context.Context) error
}

func (j JobFunc) Execute(ctx context.Context) error { return j.Fn(ctx) }
func (j JobFunc) ID() string                        { return j.Name }

// Worker pulls jobs from its own channel after registering it with the pool.
type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	quit       <-chan struct{}
	wg         *sync.WaitGroup
	logger     logrus.FieldLogger
}

// NewWorker creates a new Worker.
func NewWorker(id int, workerPool chan chan Job, quit <-chan struct{}, wg *sync.WaitGroup, logger logrus.FieldLogger) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		quit:       quit,
		wg:         wg,
		logger:     logger.WithField("worker", id),
	}
}

// Start makes the Worker listen for jobs until the pool quits.
func (w Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.quit:
				return
			}

			select {
			case job := <-w.JobChannel:
				w.run(ctx, job)
			case <-w.quit:
				w.logger.Debug("stopping")
				return
			}
		}
	}()
}

func (w Worker) run(ctx context.Context, job Job) {
	log := w.logger.WithField("job", job.ID())
	log.Debug("started job")
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("job panicked")
		}
	}()
	if err := job.Execute(ctx); err != nil {
		log.WithError(err).Warn("job failed")
		return
	}
	log.Debug("finished job")
}

// Dispatcher manages a pool of workers and dispatches queued jobs to them.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job
	JobQueue   chan Job
	Workers    []Worker

	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
	ctx      context.Context
	cancel   context.CancelFunc
	logger   logrus.FieldLogger
}

// NewDispatcher creates a new Dispatcher. A nil logger discards output.
func NewDispatcher(maxWorkers, jobQueueSize int, logger logrus.FieldLogger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if jobQueueSize < 0 {
		jobQueueSize = 0
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the workers and the dispatch loop. Jobs receive a context
// derived from ctx that is cancelled by Stop.
func (d *Dispatcher) Run(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.logger.WithField("workers", d.MaxWorkers).Info("dispatcher starting")
	for i := 1; i <= d.MaxWorkers; i++ {
		w := NewWorker(i, d.WorkerPool, d.quit, &d.wg, d.logger)
		d.Workers = append(d.Workers, w)
		w.Start(d.ctx)
	}

	d.wg.Add(1)
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.JobQueue:
			// hand off without blocking the queue while all workers are busy
			d.wg.Add(1)
			go func(job Job) {
				defer d.wg.Done()
				select {
				case ch := <-d.WorkerPool:
					select {
					case ch <- job:
					case <-d.quit:
					}
				case <-d.quit:
				}
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues a job without blocking.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case <-d.quit:
		return ErrStopped
	default:
	}
	select {
	case d.JobQueue <- job:
		d.logger.WithField("job", job.ID()).Debug("job queued")
		return nil
	default:
		d.logger.WithField("job", job.ID()).Warn("job queue full")
		return ErrQueueFull
	}
}

// Stop cancels in-flight jobs and waits for every worker to exit. Jobs still
// queued are dropped. Stop may be called more than once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.logger.Info("dispatcher stopping")
		if d.cancel != nil {
			d.cancel()
		}
		close(d.quit)
		d.wg.Wait()
		d.logger.Info("dispatcher stopped")
	})
}
