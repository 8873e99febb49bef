// Package redpanda provides Redpanda/Kafka queue integration.
//
// It publishes submitted answers for asynchronous evaluation and
// consumes them in worker processes with exactly-once semantics.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/interview-eval/internal/adapter/observability"
	"github.com/fairyhunter13/interview-eval/internal/domain"
)

const (
	// TopicEvaluate is the Kafka topic carrying evaluation tasks.
	TopicEvaluate = "evaluate-submissions"
)

// Producer wraps a transactional Kafka producer and implements domain.Queue.
type Producer struct {
	client *kgo.Client
	// Serializes transactions so concurrent enqueues do not interleave.
	transactionChan chan struct{}
}

// NewProducer constructs a Producer with exactly-once semantics.
func NewProducer(brokers []string) (*Producer, error) {
	return NewProducerWithTransactionalID(brokers, "interview-eval-producer")
}

// NewProducerWithTransactionalID constructs a Producer with a custom
// transactional ID. Tests use this to avoid conflicts between producers.
func NewProducerWithTransactionalID(brokers []string, transactionalID string) (*Producer, error) {
	slog.Info("creating redpanda producer", slog.Any("brokers", brokers), slog.String("transactional_id", transactionalID))

	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		slog.Error("failed to create redpanda client", slog.Any("error", err))
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	// Best effort; the topic usually exists already.
	ctx := context.Background()
	if err := createTopicIfNotExists(ctx, client, TopicEvaluate, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", TopicEvaluate),
			slog.Any("error", err))
	}

	return &Producer{
		client:          client,
		transactionChan: make(chan struct{}, 1),
	}, nil
}

// EnqueueEvaluate enqueues an evaluation task with exactly-once semantics.
func (p *Producer) EnqueueEvaluate(ctx domain.Context, payload domain.EvaluateTaskPayload) (string, error) {
	return p.EnqueueEvaluateToTopic(ctx, payload, TopicEvaluate)
}

// EnqueueEvaluateToTopic enqueues an evaluation task to a specific topic.
// This method allows tests to use unique topics for isolation.
func (p *Producer) EnqueueEvaluateToTopic(ctx domain.Context, payload domain.EvaluateTaskPayload, topic string) (string, error) {
	slog.Info("enqueueing evaluate task",
		slog.String("submission_id", payload.SubmissionID),
		slog.String("question_id", payload.QuestionID),
		slog.String("topic", topic))

	select {
	case p.transactionChan <- struct{}{}:
		defer func() { <-p.transactionChan }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := p.client.BeginTransaction(); err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		if abortErr := p.client.EndTransaction(ctx, kgo.TryAbort); abortErr != nil {
			slog.Error("failed to abort transaction", slog.Any("error", abortErr))
		}
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		// Submission ID keys the record so per-submission ordering holds.
		Key:   []byte(payload.SubmissionID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "submission_id", Value: []byte(payload.SubmissionID)},
			{Key: "question_id", Value: []byte(payload.QuestionID)},
		},
	}

	e := kgo.AbortingFirstErrPromise(p.client)
	p.client.Produce(ctx, record, e.Promise())

	if err := e.Err(); err != nil {
		slog.Error("failed to produce message",
			slog.String("submission_id", payload.SubmissionID),
			slog.String("topic", topic),
			slog.Any("error", err))
		if abortErr := p.client.EndTransaction(ctx, kgo.TryAbort); abortErr != nil {
			slog.Error("failed to abort transaction", slog.Any("error", abortErr))
		}
		return "", fmt.Errorf("produce: %w", err)
	}

	if err := p.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	observability.EnqueueSubmission("evaluate")
	slog.Info("redpanda enqueue successful",
		slog.String("topic", topic),
		slog.String("submission_id", payload.SubmissionID))

	return payload.SubmissionID, nil
}

// Ping checks broker connectivity for readiness probes.
func (p *Producer) Ping(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("producer not connected")
	}
	return p.client.Ping(ctx)
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	if p.transactionChan != nil {
		select {
		case <-p.transactionChan:
		default:
			close(p.transactionChan)
		}
	}
	return nil
}
