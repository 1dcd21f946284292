package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"SmartCVD/internal/domain/models"
	domrepo "SmartCVD/internal/domain/repository"

	"github.com/creasty/defaults"
)

// Assessor is the minimal processor interface the pipeline needs.
type Assessor interface {
	Assess(ctx context.Context, req models.AssessmentRequest) (*models.Report, error)
}

// LivePipeline sits between one WebSocket connection and the assessor.
// It decodes, throttles and evaluates each inbound message and always yields
// exactly one frame. No request state survives between messages.
type LivePipeline struct {
	assessor Assessor
	metrics  domrepo.Metrics
	maxRPS   int
	now      func() time.Time

	mu   sync.Mutex
	seq  uint64
	last time.Time // last accepted message
}

type PipelineOption func(*LivePipeline)

// WithMaxRPS sets the max accepted messages per second on the connection.
// Zero disables throttling.
func WithMaxRPS(n int) PipelineOption {
	return func(p *LivePipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

// NewLivePipeline creates a pipeline for one connection.
func NewLivePipeline(a Assessor, metrics domrepo.Metrics, opts ...PipelineOption) *LivePipeline {
	p := &LivePipeline{
		assessor: a,
		metrics:  metrics,
		maxRPS:   10,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process turns one raw message into a frame.
func (p *LivePipeline) Process(ctx context.Context, raw []byte) models.LiveFrame {
	start := p.now()
	p.mu.Lock()
	p.seq++
	seq := p.seq
	allowed := p.allow(start)
	p.mu.Unlock()

	if !allowed {
		p.record("live_throttle")
		return models.LiveFrame{Type: models.FrameThrottled, Seq: seq}
	}

	var req models.AssessmentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		p.record("live_decode")
		return errorFrame(seq, "ERR_BAD_REQUEST", "", "message is not a valid assessment request")
	}
	if err := defaults.Set(&req); err != nil {
		p.record("live_decode")
		return errorFrame(seq, "ERR_BAD_REQUEST", "", err.Error())
	}

	rep, err := p.assessor.Assess(ctx, req)
	if err != nil {
		var ie *models.InvalidInputError
		if errors.As(err, &ie) {
			return errorFrame(seq, "ERR_INVALID_INPUT", ie.Field, ie.Error())
		}
		p.record("live_process")
		return errorFrame(seq, "ERR_INTERNAL", "", "assessment failed")
	}
	if p.metrics != nil {
		p.metrics.RecordLatency("live_process", p.now().Sub(start).Seconds())
	}
	return models.LiveFrame{Type: models.FrameReport, Seq: seq, Report: rep}
}

func (p *LivePipeline) allow(now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	if !p.last.IsZero() && now.Sub(p.last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.last = now
	return true
}

func (p *LivePipeline) record(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

func errorFrame(seq uint64, code, field, msg string) models.LiveFrame {
	return models.LiveFrame{
		Type:  models.FrameError,
		Seq:   seq,
		Error: &models.LiveError{Code: code, Field: field, Message: msg},
	}
}
