package mq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is where itinerary lifecycle events are published.
const Channel = "itinerary-events"

const (
	EventGenerated  = "itinerary.generated"
	EventFailed     = "itinerary.failed"
	EventCustomized = "itinerary.customized"
	EventDeleted    = "itinerary.deleted"
)

// Event is an itinerary lifecycle message.
type Event struct {
	Name      string    `json:"event"`
	TripID    string    `json:"trip_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// Emitter publishes events. Publishing is best effort and never fails the
// caller.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

type RedisEmitter struct {
	conn   *redis.Client
	logger *zap.Logger
}

func NewRedisEmitter(conn *redis.Client, logger *zap.Logger) *RedisEmitter {
	return &RedisEmitter{conn: conn, logger: logger}
}

func (e *RedisEmitter) Emit(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		e.logger.Warn("marshal event", zap.String("event", ev.Name), zap.Error(err))
		return
	}
	if err := e.conn.Publish(context.WithoutCancel(ctx), Channel, data).Err(); err != nil {
		e.logger.Warn("publish event", zap.String("event", ev.Name), zap.Error(err))
		return
	}
	e.logger.Debug("event published", zap.String("event", ev.Name), zap.String("channel", Channel))
}

// LogEmitter only logs. Used when Redis is not configured.
type LogEmitter struct {
	logger *zap.Logger
}

func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(_ context.Context, ev Event) {
	e.logger.Info("event", zap.String("event", ev.Name),
		zap.String("trip_id", ev.TripID), zap.String("request_id", ev.RequestID))
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, ev := range r.events {
		names[i] = ev.Name
	}
	return names
}
