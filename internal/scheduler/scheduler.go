package scheduler

import (
	"context"
	"sync"
	"time"

	"notesheet/internal/pkg/logger"
)

type Task struct {
	Name     string
	Interval time.Duration
	Execute  func(ctx context.Context) error
}

// Scheduler fires periodic tasks from one ticker each and runs them on a
// single worker, so two tasks never execute at the same time.
type Scheduler struct {
	logger    logger.ILogger
	tasks     []Task
	taskQueue chan Task

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler with the specified queue size
func NewScheduler(queueSize int, log logger.ILogger) *Scheduler {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Scheduler{
		logger:    log,
		taskQueue: make(chan Task, queueSize),
	}
}

// Add registers a task. Tasks added after Start are picked up on the next Start.
func (s *Scheduler) Add(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Start launches the worker and one ticker per task. Calling Start on a
// running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.runWorker(ctx)

	for _, task := range s.tasks {
		if task.Interval <= 0 || task.Execute == nil {
			s.logger.Warn("Scheduler", "Skipping task without interval", map[string]interface{}{"task": task.Name})
			continue
		}
		s.wg.Add(1)
		go s.schedulePeriodicTask(ctx, task)
	}

	s.logger.Info("Scheduler", "Scheduler started", map[string]interface{}{"tasks": len(s.tasks)})
}

// Stop cancels every timer and waits for the task in flight, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("Scheduler", "Scheduler stopped", nil)
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runWorker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case task := <-s.taskQueue:
			s.execute(ctx, task)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) schedulePeriodicTask(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case s.taskQueue <- task:
			default:
				s.logger.Debug("Scheduler", "Queue full, skipping tick", map[string]interface{}{"task": task.Name})
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, task Task) {
	if err := task.Execute(ctx); err != nil {
		s.logger.Error("Scheduler", "Task failed", map[string]interface{}{
			"task":  task.Name,
			"error": err.Error(),
		})
	}
}
