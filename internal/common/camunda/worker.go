// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"dogwalk-workers/internal/common/config"
	"dogwalk-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc is the Zeebe job callback every matching worker exposes as Handle.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerSet tracks opened job workers so they can be closed together.
type WorkerSet struct {
	client  zbc.Client
	logger  logger.Logger
	workers map[string]worker.JobWorker
}

func NewWorkerSet(client zbc.Client, log logger.Logger) *WorkerSet {
	return &WorkerSet{client: client, logger: log, workers: map[string]worker.JobWorker{}}
}

// Start opens a job worker for taskType unless it is disabled in wcfg.
// It reports whether a worker was opened.
func (s *WorkerSet) Start(taskType string, wcfg config.WorkerConfig, handler HandlerFunc) bool {
	if !wcfg.Enabled {
		s.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	s.workers[taskType] = s.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(timeout).
		Open()

	s.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Count is the number of open workers.
func (s *WorkerSet) Count() int {
	return len(s.workers)
}

// Close stops polling on every worker and waits for in-flight jobs.
func (s *WorkerSet) Close() {
	for taskType, w := range s.workers {
		s.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
}
