package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/pos-core/internal/domain"
	"github.com/tair/pos-core/pkg/logger"
)

// Publisher mirrors record store changes onto a Kafka topic. It satisfies
// store.Mirror so the store retries and reconciles it like any other copy.
type Publisher struct {
	producer    sarama.SyncProducer
	topic       string
	noticeTopic string
	now         func() time.Time
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer, topic), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	if topic == "" {
		topic = TopicChanges
	}
	return &Publisher{producer: producer, topic: topic, noticeTopic: TopicSystemNotices, now: time.Now}
}

// WithNoticeTopic sets the topic system notices are published to
func (p *Publisher) WithNoticeTopic(topic string) *Publisher {
	if topic != "" {
		p.noticeTopic = topic
	}
	return p
}

func (p *Publisher) Name() string { return "kafka" }

func (p *Publisher) UpsertProduct(ctx context.Context, product domain.Product) error {
	return p.publishChange(ctx, ChangeEvent{
		EventType: EventTypeProductUpserted,
		EntityID:  strconv.FormatInt(product.ID, 10),
		Product:   &product,
	})
}

func (p *Publisher) DeleteProduct(ctx context.Context, id int64) error {
	return p.publishChange(ctx, ChangeEvent{
		EventType: EventTypeProductDeleted,
		EntityID:  strconv.FormatInt(id, 10),
	})
}

func (p *Publisher) InsertOrder(ctx context.Context, order domain.Order) error {
	return p.publishChange(ctx, ChangeEvent{
		EventType: EventTypeOrderCreated,
		EntityID:  order.ID,
		Order:     &order,
	})
}

func (p *Publisher) InsertExpense(ctx context.Context, expense domain.Expense) error {
	return p.publishChange(ctx, ChangeEvent{
		EventType: EventTypeExpenseCreated,
		EntityID:  strconv.FormatInt(expense.ID, 10),
		Expense:   &expense,
	})
}

func (p *Publisher) DeleteExpense(ctx context.Context, id int64) error {
	return p.publishChange(ctx, ChangeEvent{
		EventType: EventTypeExpenseDeleted,
		EntityID:  strconv.FormatInt(id, 10),
	})
}

func (p *Publisher) publishChange(ctx context.Context, event ChangeEvent) error {
	event.EventID = uuid.NewString()
	event.Timestamp = p.now()
	return p.publish(ctx, p.topic, event.EventType, event.EventID, event.EventType+":"+event.EntityID, event)
}

// PublishNotice broadcasts a system notice to every subscribed till
func (p *Publisher) PublishNotice(ctx context.Context, notice SystemNoticeEvent) error {
	if notice.EventID == "" {
		notice.EventID = uuid.NewString()
	}
	notice.EventType = EventTypeSystemNotice
	if notice.Timestamp.IsZero() {
		notice.Timestamp = p.now()
	}
	return p.publish(ctx, p.noticeTopic, notice.EventType, notice.EventID, notice.Source, notice)
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, eventID, key string, payload any) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published")

	logger.Debug(ctx).
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
