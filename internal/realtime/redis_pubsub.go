package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix    = "room:"
	publishTimeout   = 5 * time.Second
	mirrorQueueDepth = 1024
)

// redisPayload is the message published on a room channel.
type redisPayload struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	At    int64           `json:"at"`
}

// Publisher is the subset of the go-redis client used by RedisMirror.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type mirrored struct {
	code  string
	event string
	data  []byte
	at    time.Time
}

// RedisMirror republishes room events on Redis channels room:<CODE> for
// external observers. Publish only enqueues; Run drains the queue.
type RedisMirror struct {
	client Publisher
	queue  chan mirrored
	logger *zap.Logger
}

// NewRedisMirror creates a mirror publishing through client.
func NewRedisMirror(client Publisher, logger *zap.Logger) *RedisMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMirror{
		client: client,
		queue:  make(chan mirrored, mirrorQueueDepth),
		logger: logger,
	}
}

// RoomChannel is the Redis channel carrying events of room code.
func RoomChannel(code string) string {
	return channelPrefix + code
}

// Publish queues an event. It drops the event when the queue is full.
func (m *RedisMirror) Publish(code, event string, payload []byte) {
	select {
	case m.queue <- mirrored{code: code, event: event, data: payload, at: time.Now()}:
	default:
		m.logger.Warn("redis mirror queue full, dropping event", zap.String("code", code), zap.String("event", event))
	}
}

// Run publishes queued events until ctx is cancelled.
func (m *RedisMirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.queue:
			if err := m.publish(ctx, ev); err != nil {
				m.logger.Warn("redis mirror publish failed",
					zap.String("code", ev.code),
					zap.String("event", ev.event),
					zap.Error(err),
				)
			}
		}
	}
}

func (m *RedisMirror) publish(ctx context.Context, ev mirrored) error {
	body, err := json.Marshal(redisPayload{Event: ev.event, Data: ev.data, At: ev.at.Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return m.client.Publish(ctx, RoomChannel(ev.code), body).Err()
}
