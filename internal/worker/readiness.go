// Package worker consumes readiness-aggregation jobs and caches the
// rolled-up flags so certificate dashboards never pay the aggregate
// query on the request path.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atena-events/backend/internal/certificates"
	"github.com/atena-events/backend/pkg/queue"
)

const (
	activityReadyKey = "readiness:activity:%s"
	eventReadyKey    = "readiness:event:%s"
)

// ReadinessProcessor recomputes activity and event readiness aggregates.
type ReadinessProcessor struct {
	pool      *pgxpool.Pool
	redis     *goredis.Client
	queue     *queue.Queue
	evaluator *certificates.Evaluator
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewReadinessProcessor creates the processor.
func NewReadinessProcessor(pool *pgxpool.Pool, redis *goredis.Client, q *queue.Queue,
	evaluator *certificates.Evaluator, cacheTTL time.Duration, logger *zap.Logger) *ReadinessProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadinessProcessor{
		pool:      pool,
		redis:     redis,
		queue:     q,
		evaluator: evaluator,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Run consumes jobs until ctx is cancelled. Failed jobs go back through
// the queue's retry path and land in the DLQ after exhausting attempts.
func (p *ReadinessProcessor) Run(ctx context.Context) error {
	p.logger.Info("readiness worker started")
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("readiness worker stopped")
				return nil
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := p.process(ctx, job); err != nil {
			p.logger.Warn("job failed",
				zap.String("job_id", job.ID),
				zap.Int("attempt", job.Attempt),
				zap.Error(err))
			if rerr := p.queue.Retry(ctx, job); rerr != nil {
				p.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(rerr))
			}
		}
	}
}

func (p *ReadinessProcessor) process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReadinessAggregation {
		p.logger.Warn("unknown job type dropped", zap.String("type", string(job.Type)))
		return nil
	}
	var payload queue.ReadinessPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// Malformed payloads never succeed on retry.
		p.logger.Warn("malformed payload dropped", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}

	activityReady, err := p.aggregateActivity(ctx, payload.ActivityID)
	if err != nil {
		return fmt.Errorf("aggregate activity: %w", err)
	}
	eventReady, err := p.aggregateEvent(ctx, payload.EventID)
	if err != nil {
		return fmt.Errorf("aggregate event: %w", err)
	}

	if err := p.cache(ctx, fmt.Sprintf(activityReadyKey, payload.ActivityID), activityReady); err != nil {
		return err
	}
	if err := p.cache(ctx, fmt.Sprintf(eventReadyKey, payload.EventID), eventReady); err != nil {
		return err
	}

	p.logger.Info("readiness aggregated",
		zap.String("activity_id", payload.ActivityID.String()),
		zap.Bool("activity_ready", activityReady),
		zap.Bool("event_ready", eventReady))
	return nil
}

func (p *ReadinessProcessor) aggregateActivity(ctx context.Context, activityID uuid.UUID) (bool, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT ready_for_certificate FROM activity_registrations WHERE activity_id = $1`, activityID)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	var flags []bool
	for rows.Next() {
		var f bool
		if err := rows.Scan(&f); err != nil {
			return false, err
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return p.evaluator.ActivityReady(flags), nil
}

func (p *ReadinessProcessor) aggregateEvent(ctx context.Context, eventID uuid.UUID) (bool, error) {
	// Per-activity readiness in SQL: every registration ready, at least one.
	rows, err := p.pool.Query(ctx, `
		SELECT bool_and(ar.ready_for_certificate) AND COUNT(ar.id) > 0
		FROM activities a
		LEFT JOIN activity_registrations ar ON ar.activity_id = a.id
		WHERE a.event_id = $1
		GROUP BY a.id`, eventID)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	var flags []bool
	for rows.Next() {
		var f *bool
		if err := rows.Scan(&f); err != nil {
			return false, err
		}
		flags = append(flags, f != nil && *f)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return p.evaluator.EventReady(flags), nil
}

func (p *ReadinessProcessor) cache(ctx context.Context, key string, ready bool) error {
	if err := p.redis.Set(ctx, key, ready, p.cacheTTL).Err(); err != nil {
		return fmt.Errorf("cache %s: %w", key, err)
	}
	return nil
}
