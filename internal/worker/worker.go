package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/recordings"
	"github.com/batchlms/backend/internal/zoom"
	"github.com/batchlms/backend/pkg/queue"
)

// QueueDispatcher adapts the Redis job queue to the webhook handler's
// Dispatcher interface.
type QueueDispatcher struct {
	Queue *queue.Queue
}

// DispatchReconcile enqueues the raw webhook event for the reconcile worker.
func (d QueueDispatcher) DispatchReconcile(ctx context.Context, rawEvent json.RawMessage) error {
	return d.Queue.EnqueueReconcile(ctx, rawEvent)
}

// ReconcileProcessor consumes reconcile jobs and runs the recording
// reconciler over each event.
type ReconcileProcessor struct {
	reconciler *recordings.Reconciler
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewReconcileProcessor creates a reconcile job processor.
func NewReconcileProcessor(reconciler *recordings.Reconciler, q *queue.Queue, logger *zap.Logger) *ReconcileProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileProcessor{reconciler: reconciler, queue: q, logger: logger}
}

// Process executes one reconcile job.
func (p *ReconcileProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReconcile {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ReconcilePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	var event zoom.WebhookEvent
	if err := json.Unmarshal(payload.Event, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	// Per-file failures are handled (and logged) inside the reconciler;
	// a job only fails on malformed payloads, which retrying cannot fix,
	// so ProcessEvent's outcome is final.
	p.reconciler.ProcessEvent(ctx, &event)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ReconcileProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reconcile worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("reconcile worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
		}
	}
}
