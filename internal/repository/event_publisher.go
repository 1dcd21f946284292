package repository

import (
	"context"

	"SmartCVD/internal/domain/models"
	"SmartCVD/internal/domain/repository"
	applogger "SmartCVD/pkg/logger"
)

// keyedPublisher is the part of the Kafka producer the publisher needs.
type keyedPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher for Kafka.
// Assessment events are keyed by report ID.
type KafkaEventPublisher struct {
	producer keyedPublisher
}

// NewKafkaEventPublisher creates a Kafka event publisher.
func NewKafkaEventPublisher(producer keyedPublisher) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, eventKey(payload), payload)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func eventKey(payload interface{}) []byte {
	switch ev := payload.(type) {
	case models.AssessmentEvent:
		return []byte(ev.ReportID)
	case *models.AssessmentEvent:
		if ev != nil {
			return []byte(ev.ReportID)
		}
	}
	return nil
}

// LogEventPublisher writes events to the logger when no broker is configured.
type LogEventPublisher struct {
	log *applogger.Logger
}

// NewLogEventPublisher creates a publisher backed by the application logger.
func NewLogEventPublisher(l *applogger.Logger) repository.EventPublisher {
	return &LogEventPublisher{log: l}
}

func (p *LogEventPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.log.Debug("event", applogger.String("topic", topic), applogger.Any("payload", payload))
	return nil
}
