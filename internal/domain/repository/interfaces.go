package repository

import (
	"context"
	"time"

	"SmartCVD/internal/domain/models"
)

type Metrics interface {
	RecordEstimate(tenYear float64)
	RecordIntervention(id string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// ReportCache stores serialized responses keyed by request digest.
type ReportCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}

// EventPublisher ships payloads to a topic.
type EventPublisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// LiveStream is a client connection to the live assessment endpoint.
type LiveStream interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, req models.AssessmentRequest) error
	Read(ctx context.Context) (<-chan models.LiveFrame, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}
