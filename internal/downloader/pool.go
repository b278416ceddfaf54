package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vinearchive/pkg/logger"
	"vinearchive/pkg/vine"
)

// Job is a single post to archive into a user folder
type Job struct {
	PostID vine.PostID
	Folder string
}

// Result is the outcome of archiving one post
type Result struct {
	PostID    vine.PostID
	Success   bool
	Error     error
	Duration  time.Duration
	Thumbnail bool
	HasVideo  bool
	Video     bool
}

// PostArchiver archives one post. Implementations report failures in the
// returned Result rather than panicking.
type PostArchiver interface {
	ArchivePost(ctx context.Context, postID vine.PostID, folder string) Result
}

// WorkerPool runs a fixed number of workers over a queue of posts
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	archiver    PostArchiver
	logger      logger.Logger
	startOnce   sync.Once
	stopOnce    sync.Once
}

// NewWorkerPool creates a new worker pool bound to ctx
func NewWorkerPool(ctx context.Context, numWorkers int, archiver PostArchiver, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}

	if log == nil {
		log = logger.GetLogger()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		archiver:    archiver,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
			"num_workers": wp.numWorkers,
		})

		for i := 0; i < wp.numWorkers; i++ {
			wp.wg.Add(1)
			go wp.worker(i)
		}
	})
}

// Stop closes the queue and waits for every queued job to produce a result.
// Results must be drained concurrently or Stop blocks.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		wp.logger.Debug("Stopping worker pool")

		// Close job queue to signal no more jobs will be added
		close(wp.jobQueue)

		// Wait for all workers to finish processing remaining jobs
		wp.wg.Wait()

		close(wp.resultQueue)
		wp.cancel()

		wp.logger.Debug("Worker pool stopped")
	})
}

// Submit queues a job, blocking while the queue is full
func (wp *WorkerPool) Submit(job Job) error {
	if err := wp.ctx.Err(); err != nil {
		return fmt.Errorf("worker pool is shutting down: %w", err)
	}

	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"post_id": job.PostID.String(),
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel. It is closed by Stop.
func (wp *WorkerPool) Results() <-chan Result {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.resultQueue <- wp.processJob(job, id)
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// processJob archives one post. Once the pool's context is done, remaining
// jobs fail immediately without touching the network.
func (wp *WorkerPool) processJob(job Job, workerID int) Result {
	start := time.Now()

	if err := wp.ctx.Err(); err != nil {
		return Result{PostID: job.PostID, Error: err, Duration: time.Since(start)}
	}

	result := wp.archiver.ArchivePost(wp.ctx, job.PostID, job.Folder)
	result.PostID = job.PostID
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker finished job", map[string]interface{}{
		"worker_id": workerID,
		"post_id":   job.PostID.String(),
		"success":   result.Success,
		"duration":  result.Duration,
	})

	return result
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
