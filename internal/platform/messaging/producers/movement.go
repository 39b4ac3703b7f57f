package producers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/natillera-ledger/internal/config"
	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/segmentio/kafka-go"
)

const (
	headerEventID = "event-id"
	headerSource  = "source"
	sourceOutbox  = "movement-outbox"
)

// MovementProducer writes movement events keyed by member so a member's events stay ordered
type MovementProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewMovementProducer ensures the movement topic exists and opens a synchronous writer
func NewMovementProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*MovementProducer, error) {
	if cfg.MovementTopic == "" {
		return nil, fmt.Errorf("kafka movement topic is not configured")
	}

	if err := provisionTopic(cfg, cfg.MovementTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure movement topic %s exists: %w", cfg.MovementTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.MovementTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &MovementProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.MovementTopic,
	}, nil
}

// Publish writes the outbox payload as-is. The write is synchronous so the caller only marks
// the message processed once the broker acknowledged it.
func (p *MovementProducer) Publish(ctx context.Context, msg *outbox.Message) error {
	key := strconv.FormatInt(msg.MemberID, 10)

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(msg.EventID.String())},
			{Key: headerSource, Value: []byte(sourceOutbox)},
		},
	})
	if err != nil {
		p.logger.Error("Failed to publish movement event",
			"topic", p.topic,
			"member_id", msg.MemberID,
			"event_id", msg.EventID,
			"error", err,
		)
		return fmt.Errorf("failed to publish movement event %s to %s: %w", msg.EventID, p.topic, err)
	}

	p.logger.Debug("Published movement event", "topic", p.topic, "member_id", msg.MemberID, "event_id", msg.EventID)
	return nil
}

func (p *MovementProducer) Close() error {
	p.logger.Info("Closing movement producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close movement writer for topic %s: %w", p.topic, err)
	}
	return nil
}
