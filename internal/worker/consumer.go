package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hmsd/hospital-api/pkg/logger"
	"github.com/hmsd/hospital-api/pkg/messaging"
	"github.com/hmsd/hospital-api/pkg/metrics"

	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/service/report"
)

type ConsumerConfig struct {
	Queue         string
	EventChannel  string
	PollTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Consumer drains the export job queue and materializes CSV files through
// the report service. One consumer loop runs per worker process.
type Consumer struct {
	broker    messaging.Broker
	reportSvc *report.Service
	config    ConsumerConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewConsumer(
	broker messaging.Broker,
	reportSvc *report.Service,
	config ConsumerConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Consumer {
	if config.Queue == "" {
		panic("Queue must be set")
	}
	if config.EventChannel == "" {
		config.EventChannel = config.Queue + ":events"
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}

	return &Consumer{
		broker:    broker,
		reportSvc: reportSvc,
		config:    config,
		logger:    logger,
		metrics:   metrics,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Starting report job consumer", "queue", c.config.Queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Shutting down report job consumer")
			return
		default:
		}

		payload, err := c.broker.Dequeue(ctx, c.config.Queue, c.config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Error(err, "Failed to dequeue job")
			time.Sleep(c.config.RetryDelay)
			continue
		}
		if payload == nil {
			continue
		}

		if err := c.processJob(ctx, payload); err != nil {
			c.metrics.JobsFailed.Inc()
			c.logger.Error(err, "Export job failed")
			continue
		}
		c.metrics.JobsProcessed.Inc()
	}
}

func (c *Consumer) processJob(ctx context.Context, payload []byte) error {
	timer := prometheus.NewTimer(c.metrics.JobDuration)
	defer timer.ObserveDuration()

	var job model.ExportJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("failed to decode export job: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.metrics.JobRetries.WithLabelValues(string(job.Type)).Inc()
			time.Sleep(time.Duration(attempt) * c.config.RetryDelay)
		}

		path, err := c.reportSvc.Run(ctx, &job)
		if err == nil {
			c.logger.Info("Export job completed",
				"task_id", job.TaskID.String(), "type", string(job.Type), "path", path)
			c.publishEvent(ctx, model.ExportEventCompleted, model.ExportEvent{
				TaskID: job.TaskID,
				Type:   job.Type,
				Path:   path,
			})
			return nil
		}
		lastErr = err
		c.logger.Warn("Retrying export job",
			"task_id", job.TaskID.String(), "attempt", attempt+1, "error", err.Error())
	}

	c.publishEvent(ctx, model.ExportEventFailed, model.ExportEvent{
		TaskID: job.TaskID,
		Type:   job.Type,
		Error:  lastErr.Error(),
	})

	return fmt.Errorf("export job %s failed after %d attempts: %w",
		job.TaskID, c.config.RetryAttempts, lastErr)
}

// publishEvent announces a job outcome on the event channel. Delivery is
// best-effort: a publish failure is logged, never surfaced to the job loop.
func (c *Consumer) publishEvent(ctx context.Context, eventType string, event model.ExportEvent) {
	msg := messaging.Message{Type: eventType, Payload: event}
	if err := c.broker.Publish(ctx, c.config.EventChannel, msg); err != nil {
		c.logger.Warn("Failed to publish export event",
			"task_id", event.TaskID.String(), "type", eventType, "error", err.Error())
	}
}
