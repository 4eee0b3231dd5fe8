package mq

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedisEmitterSwallowsPublishErrors(t *testing.T) {
	conn := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer conn.Close()

	core, logs := observer.New(zap.WarnLevel)
	e := NewRedisEmitter(conn, zap.New(core))

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), Event{Name: EventGenerated, TripID: "t1"})
	})
	assert.Equal(t, 1, logs.FilterMessage("publish event").Len())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Emit(context.Background(), Event{Name: EventGenerated})
	r.Emit(context.Background(), Event{Name: EventDeleted})
	assert.Equal(t, []string{EventGenerated, EventDeleted}, r.Names())
}
