package transcode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"hlsforge/config"

	"github.com/lithammer/shortuuid/v4"
)

// Manager owns the job registry and the request queue. Jobs are
// processed by an Orchestrator, at most cfg.MaxActiveJobs at a time.
// Stored jobs are mutated only under mu; accessors hand out copies so
// callers can never race the processing goroutine.
type Manager struct {
	cfg          *config.Config
	mu           sync.RWMutex
	jobs         sync.Map
	jobQueue     chan *Job
	activeSem    chan struct{}
	orchestrator *Orchestrator
}

func NewManager(cfg *config.Config, encoder Encoder) (*Manager, error) {
	if err := cfg.Ladder.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ladder: %w", err)
	}
	m := &Manager{
		cfg:          cfg,
		jobQueue:     make(chan *Job, 100),
		activeSem:    make(chan struct{}, cfg.MaxActiveJobs),
		orchestrator: NewOrchestrator(encoder, cfg.MaxConcurrency, cfg.FFTimeout, cfg.KeepPartial),
	}
	return m, nil
}

func (m *Manager) Start(ctx context.Context) {
	log.Printf("Transcode manager started. Active jobs limit: %d, encode workers per job: %d",
		m.cfg.MaxActiveJobs, m.cfg.MaxConcurrency)
	go m.workerLoop(ctx)
}

// workerLoop pulls jobs from the queue and processes them
func (m *Manager) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("Worker loop shutting down.")
			return
		case job := <-m.jobQueue:
			// Wait for a free processing slot
			m.activeSem <- struct{}{}
			go func(j *Job) {
				defer func() { <-m.activeSem }() // Release slot
				m.processJob(ctx, j)
			}(job)
		}
	}
}

// processJob drives one job through the orchestrator
func (m *Manager) processJob(parentCtx context.Context, j *Job) {
	jobCtx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	m.mu.Lock()
	// Check if the job was canceled while in queue
	if j.Status == StatusCanceled {
		m.mu.Unlock()
		log.Printf("Job %s was canceled before processing.", j.ID)
		return
	}
	j.cancelFunc = cancel // Store cancel func so it can be called externally
	j.Status = StatusProcessing
	startedAt := time.Now()
	j.StartedAt = &startedAt
	m.mu.Unlock()

	log.Printf("Processing job %s", j.ID)

	masterPath, err := m.orchestrator.Run(jobCtx, Request{
		SourcePath: j.SourcePath,
		OutputRoot: j.OutputDir,
		Ladder:     m.cfg.Ladder,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("Job %s canceled.", j.ID)
			j.Status = StatusCanceled
			j.Error = "Job was canceled"
		} else {
			log.Printf("Job %s failed: %v", j.ID, err)
			j.Status = StatusFailed
			j.Error = err.Error()
		}
	} else {
		log.Printf("Job %s completed successfully.", j.ID)
		j.Status = StatusCompleted
		j.MasterPath = masterPath
	}
	completedAt := time.Now()
	j.CompletedAt = &completedAt
}

// Submit registers a new job for the given uploaded source file and
// queues it for processing. The returned job is a snapshot.
func (m *Manager) Submit(sourcePath string) (*Job, error) {
	id := shortuuid.New()
	j := &Job{
		ID:         id,
		Status:     StatusQueued,
		SourcePath: sourcePath,
		OutputDir:  filepath.Join(m.cfg.OutputRoot, id),
		CreatedAt:  time.Now(),
	}

	m.jobs.Store(j.ID, j)
	// Snapshot before queueing: once queued, a worker may start
	// writing to the stored job.
	snap := m.snapshot(j)
	select {
	case m.jobQueue <- j:
	default:
		m.jobs.Delete(j.ID)
		return nil, fmt.Errorf("job queue is full")
	}
	log.Printf("Job %s submitted to queue.", j.ID)
	return snap, nil
}

// snapshot copies a stored job for handing out. Callers may decorate
// the copy freely; writes never reach the registry. Must be called
// with mu held once the job is queued.
func (m *Manager) snapshot(j *Job) *Job {
	c := *j
	c.cancelFunc = nil
	return &c
}

func (m *Manager) Get(jobID string) (*Job, bool) {
	val, ok := m.jobs.Load(jobID)
	if !ok {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(val.(*Job)), true
}

func (m *Manager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobList []*Job
	m.jobs.Range(func(key, value interface{}) bool {
		jobList = append(jobList, m.snapshot(value.(*Job)))
		return true
	})
	return jobList
}

func (m *Manager) Cancel(jobID string) error {
	val, ok := m.jobs.Load(jobID)
	if !ok {
		return fmt.Errorf("job %s not found", jobID)
	}

	j := val.(*Job)
	m.mu.Lock()
	defer m.mu.Unlock()
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return fmt.Errorf("cannot cancel job in state: %s", j.Status)
	case StatusQueued:
		j.Status = StatusCanceled
		j.Error = "Canceled by user while in queue"
		log.Printf("Job %s marked as canceled in queue.", j.ID)
	case StatusProcessing:
		if j.cancelFunc != nil {
			j.cancelFunc()
			log.Printf("Cancellation signal sent to running job %s.", j.ID)
		} else {
			return fmt.Errorf("job %s is processing but has no cancellation handle", j.ID)
		}
	}
	return nil
}
