package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/pos-core/internal/notification"
	"github.com/tair/pos-core/pkg/logger"
)

var errMissingEventType = errors.New("message without event_type header")

// NoticeSink receives system notices
type NoticeSink interface {
	Push(ctx context.Context, title, message, source string, at time.Time) notification.Notice
}

// Consumer feeds system notices from Kafka into the notification inbox
type Consumer struct {
	group  sarama.ConsumerGroup
	topics []string
	sink   NoticeSink
}

// NewConsumer creates a new Kafka consumer group member reading system
// notices from topic
func NewConsumer(brokers []string, groupID, topic string, sink NoticeSink) (*Consumer, error) {
	if topic == "" {
		topic = TopicSystemNotices
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Str("topic", topic).
		Msg("Kafka consumer initialized")

	return &Consumer{group: group, topics: []string{topic}, sink: sink}, nil
}

// Run consumes until ctx is cancelled
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			logger.Logger.Error().Err(err).Msg("Consumer error")
		}
	}()

	logger.Logger.Info().Strs("topics", c.topics).Msg("Kafka consumer started")
	handler := &groupHandler{consumer: c}
	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			logger.Logger.Error().Err(err).Msg("Error from consumer")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close closes the consumer group
func (c *Consumer) Close() error {
	if c.group != nil {
		return c.group.Close()
	}
	return nil
}

type groupHandler struct {
	consumer *Consumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.consumer.handleMessage(session.Context(), message); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("topic", message.Topic).
				Int64("offset", message.Offset).
				Msg("Dropped message")
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	carrier := propagation.MapCarrier{}
	var eventType, eventID string
	for _, header := range message.Headers {
		switch key := string(header.Key); key {
		case "traceparent", "tracestate":
			carrier[key] = string(header.Value)
		case "event_type":
			eventType = string(header.Value)
		case "event_id":
			eventID = string(header.Value)
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	tracer := otel.Tracer("kafka-consumer")
	ctx, span := tracer.Start(ctx, "kafka.consume."+eventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	if eventType == "" {
		span.SetStatus(codes.Error, errMissingEventType.Error())
		return errMissingEventType
	}
	if eventType != EventTypeSystemNotice {
		span.SetStatus(codes.Error, "Unknown event type")
		return fmt.Errorf("unknown event type %q", eventType)
	}

	var notice SystemNoticeEvent
	if err := json.Unmarshal(message.Value, &notice); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to unmarshal event")
		return fmt.Errorf("failed to unmarshal notice: %w", err)
	}
	if strings.TrimSpace(notice.Title) == "" && strings.TrimSpace(notice.Message) == "" {
		return fmt.Errorf("empty notice %s", eventID)
	}
	if notice.Timestamp.IsZero() {
		notice.Timestamp = message.Timestamp
	}
	if notice.Source == "" {
		notice.Source = "kafka"
	}

	c.sink.Push(ctx, notice.Title, notice.Message, notice.Source, notice.Timestamp)
	span.SetStatus(codes.Ok, "Notice delivered")
	return nil
}
