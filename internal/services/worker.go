package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(analysisID uuid.UUID)
}

type worker struct {
	analysisRepo    repositories.AnalysisRepository
	analyzerService AnalyzerService
	jobQueue        chan uuid.UUID
	concurrency     int
	pollInterval    time.Duration
	wg              sync.WaitGroup
	stopChan        chan struct{}
	stopOnce        sync.Once

	// inFlight guards against the poller enqueueing a job that is already queued.
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewWorker(
	analysisRepo repositories.AnalysisRepository,
	analyzerService AnalyzerService,
	concurrency int,
	pollInterval time.Duration,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		analysisRepo:    analysisRepo,
		analyzerService: analyzerService,
		jobQueue:        make(chan uuid.UUID, 100),
		concurrency:     concurrency,
		pollInterval:    pollInterval,
		stopChan:        make(chan struct{}),
		inFlight:        make(map[uuid.UUID]struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(analysisID uuid.UUID) {
	w.mu.Lock()
	if _, queued := w.inFlight[analysisID]; queued {
		w.mu.Unlock()
		return
	}
	w.inFlight[analysisID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.jobQueue <- analysisID:
		log.Printf("📥 Job %s enqueued", analysisID)
	case <-w.stopChan:
		w.done(analysisID)
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s", analysisID)
	}
}

func (w *worker) done(analysisID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, analysisID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped", workerID)
			return
		case <-ctx.Done():
			return
		case analysisID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing job %s", workerID, analysisID)
			err := w.analyzerService.RunAnalysis(ctx, analysisID)
			switch {
			case errors.Is(err, ErrAnalysisNotQueued):
				log.Printf("⏭️  Worker #%d skipped job %s: already claimed", workerID, analysisID)
			case err != nil:
				log.Printf("❌ Worker #%d failed to process job %s: %v", workerID, analysisID, err)
			default:
				log.Printf("✅ Worker #%d completed job %s", workerID, analysisID)
			}
			w.done(analysisID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.analysisRepo.FindPendingJobs(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d pending jobs", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
