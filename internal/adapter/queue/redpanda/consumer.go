package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/interview-eval/internal/domain"
	"github.com/fairyhunter13/interview-eval/internal/observability"
)

// Consumer wraps a Kafka group transact session with a scaling worker
// pool. Records are fetched on one goroutine and fanned out to workers.
type Consumer struct {
	session *kgo.GroupTransactSession
	handler *EvaluationHandler

	groupID string
	topic   string

	minWorkers    int
	maxWorkers    int
	activeWorkers int
	workerMu      sync.RWMutex
	taskQueue     chan *kgo.Record
	shutdown      chan struct{}
}

// NewConsumer constructs a Consumer with exactly-once semantics.
func NewConsumer(brokers []string, groupID string, handler *EvaluationHandler, minWorkers, maxWorkers int) (*Consumer, error) {
	return NewConsumerWithTopic(brokers, groupID, "interview-eval-consumer", handler, minWorkers, maxWorkers, TopicEvaluate)
}

// NewConsumerWithTopic constructs a Consumer with a custom transactional ID
// and topic. Tests use this for isolation.
func NewConsumerWithTopic(brokers []string, groupID, transactionalID string, handler *EvaluationHandler, minWorkers, maxWorkers int, topic string) (*Consumer, error) {
	slog.Info("creating redpanda consumer",
		slog.Any("brokers", brokers),
		slog.String("group_id", groupID),
		slog.String("transactional_id", transactionalID))

	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if handler == nil {
		return nil, fmt.Errorf("missing evaluation handler")
	}
	if minWorkers <= 0 {
		minWorkers = 1
	}
	if maxWorkers < minWorkers {
		maxWorkers = minWorkers
	}

	ctx := context.Background()
	tempClient, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("temp client: %w", err)
	}
	defer tempClient.Close()

	if err := createTopicIfNotExists(ctx, tempClient, topic, 8, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", topic),
			slog.Any("error", err))
	}

	kotelTracer := kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
	)
	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotelTracer),
	)

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.RequireStableFetchOffsets(),

		kgo.WithHooks(kotelService.Hooks()...),

		kgo.DialTimeout(10 * time.Second),
		kgo.RequestTimeoutOverhead(5 * time.Second),
		kgo.RetryTimeout(30 * time.Second),
		kgo.SessionTimeout(30 * time.Second),
		kgo.HeartbeatInterval(3 * time.Second),
		kgo.RebalanceTimeout(10 * time.Second),

		kgo.FetchMaxBytes(10 * 1024 * 1024),
		kgo.FetchMaxWait(5 * time.Second),
		kgo.FetchMinBytes(512),
		kgo.FetchMaxPartitionBytes(2 * 1024 * 1024),

		kgo.AutoCommitMarks(),
		kgo.AutoCommitInterval(1 * time.Second),
	}

	session, err := kgo.NewGroupTransactSession(opts...)
	if err != nil {
		return nil, fmt.Errorf("redpanda transactional session: %w", err)
	}

	slog.Info("redpanda consumer created",
		slog.String("group_id", groupID),
		slog.String("topic", topic),
		slog.Int("min_workers", minWorkers),
		slog.Int("max_workers", maxWorkers))

	return &Consumer{
		session:       session,
		handler:       handler,
		groupID:       groupID,
		topic:         topic,
		minWorkers:    minWorkers,
		maxWorkers:    maxWorkers,
		activeWorkers: minWorkers,
		taskQueue:     make(chan *kgo.Record, maxWorkers*2),
		shutdown:      make(chan struct{}),
	}, nil
}

// Start begins consuming messages. It blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("starting redpanda consumer",
		slog.String("group_id", c.groupID),
		slog.String("topic", c.topic))

	for i := 0; i < c.minWorkers; i++ {
		go c.worker(ctx, i)
	}
	go c.fetchLoop(ctx)
	go c.scaleLoop(ctx)

	<-ctx.Done()
	slog.Info("redpanda consumer shutting down")
	close(c.shutdown)
	return ctx.Err()
}

// fetchLoop polls the session and queues records for the worker pool.
func (c *Consumer) fetchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		default:
		}

		fetches := c.session.PollFetches(ctx)
		if errs := fetches.Errors(); len(errs) > 0 {
			fatal := false
			for _, err := range errs {
				slog.Error("fetch error",
					slog.String("topic", err.Topic),
					slog.Int("partition", int(err.Partition)),
					slog.Any("error", err.Err))
				if err.Err == context.Canceled {
					fatal = true
				}
			}
			if fatal {
				return
			}
			time.Sleep(2 * time.Second)
			continue
		}

		fetches.EachRecord(func(record *kgo.Record) {
			select {
			case c.taskQueue <- record:
			default:
				// Queue full; process inline rather than dropping.
				slog.Warn("task queue full, processing synchronously",
					slog.Int64("offset", record.Offset),
					slog.Int("partition", int(record.Partition)))
				_ = c.processRecord(ctx, record)
			}
		})
	}
}

// scaleLoop grows and shrinks the worker pool with queue depth.
func (c *Consumer) scaleLoop(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case <-ticker.C:
			queueLen := len(c.taskQueue)
			active := c.getActiveWorkers()
			if queueLen > 0 && active < c.maxWorkers {
				add := min(queueLen, c.maxWorkers-active)
				for i := 0; i < add; i++ {
					c.incrementActiveWorkers()
					go c.worker(ctx, c.getActiveWorkers())
				}
				slog.Info("scaled up workers",
					slog.Int("added", add),
					slog.Int("queue_length", queueLen),
					slog.Int("active", c.getActiveWorkers()))
			}
		}
	}
}

// worker processes queued records. Excess workers exit once the queue
// drains so the pool shrinks back toward minWorkers.
func (c *Consumer) worker(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdown:
			return
		case record := <-c.taskQueue:
			if record == nil {
				return
			}
			if err := c.processRecord(ctx, record); err != nil {
				slog.Error("failed to process record",
					slog.Int("worker_id", workerID),
					slog.Int64("offset", record.Offset),
					slog.Int("partition", int(record.Partition)),
					slog.Any("error", err))
			}
			if c.getActiveWorkers() > c.minWorkers && len(c.taskQueue) == 0 {
				c.decrementActiveWorkers()
				return
			}
		}
	}
}

// processRecord unmarshals one record and hands it to the evaluation handler.
func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) error {
	tracer := otel.Tracer("queue.consumer")
	ctx, span := tracer.Start(ctx, "ProcessEvaluateTask")
	defer span.End()

	var payload domain.EvaluateTaskPayload
	if err := json.Unmarshal(record.Value, &payload); err != nil {
		slog.Error("failed to unmarshal payload",
			slog.Int64("offset", record.Offset),
			slog.Any("error", err))
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	// Correlate worker logs with the originating HTTP request.
	if payload.RequestID != "" {
		ctx = observability.ContextWithRequestID(ctx, payload.RequestID)
	}
	lg := observability.LoggerFromContext(ctx).With(
		slog.String("submission_id", payload.SubmissionID),
		slog.String("question_id", payload.QuestionID),
	)
	if payload.RequestID != "" {
		lg = lg.With(slog.String("request_id", payload.RequestID))
	}
	ctx = observability.ContextWithLogger(ctx, lg)

	lg.Info("processing evaluate task")
	if err := c.handler.HandleEvaluate(ctx, payload); err != nil {
		lg.Error("evaluate task failed",
			slog.String("failure_code", classifyFailureCode(err.Error())),
			slog.Any("error", err))
		return err
	}
	lg.Info("evaluate task completed")
	return nil
}

func (c *Consumer) getActiveWorkers() int {
	c.workerMu.RLock()
	defer c.workerMu.RUnlock()
	return c.activeWorkers
}

func (c *Consumer) incrementActiveWorkers() {
	c.workerMu.Lock()
	defer c.workerMu.Unlock()
	c.activeWorkers++
}

func (c *Consumer) decrementActiveWorkers() {
	c.workerMu.Lock()
	defer c.workerMu.Unlock()
	if c.activeWorkers > 0 {
		c.activeWorkers--
	}
}

// Close closes the consumer session.
func (c *Consumer) Close() error {
	if c.session != nil {
		c.session.Close()
	}
	if c.shutdown != nil {
		select {
		case <-c.shutdown:
		default:
			close(c.shutdown)
		}
	}
	return nil
}
