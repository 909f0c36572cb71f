// Package relay fans applied document changes out to peer server instances
// through Redis pub/sub, so clients connected to different instances still
// converge on the same block state.
package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/scribehq/scribe/internal/collab"
	"github.com/scribehq/scribe/pkg/logger"
)

const changesChannel = "scribe:changes"

// envelope is the wire format published to Redis. The instance id lets
// subscribers drop their own messages.
type envelope struct {
	Instance   string        `json:"instance"`
	DocumentID string        `json:"documentId"`
	Change     collab.Change `json:"change"`
}

// Relay connects one server instance to the shared change channel.
type Relay struct {
	client     *redis.Client
	instanceID string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string) (*Relay, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Relay{
		client:     client,
		instanceID: uuid.NewString(),
	}, nil
}

// PublishChange sends an applied change to peer instances.
func (r *Relay) PublishChange(ctx context.Context, documentID string, change collab.Change) error {
	raw, err := json.Marshal(envelope{
		Instance:   r.instanceID,
		DocumentID: documentID,
		Change:     change,
	})
	if err != nil {
		return fmt.Errorf("encode relay envelope: %w", err)
	}
	if err := r.client.Publish(ctx, changesChannel, raw).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Subscribe starts consuming peer changes and invokes handler for each one.
// Messages published by this instance are dropped. The subscription ends when
// ctx is cancelled.
func (r *Relay) Subscribe(ctx context.Context, handler func(documentID string, change collab.Change)) {
	sub := r.client.Subscribe(ctx, changesChannel)

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					logger.Warnf("[relay] bad envelope: %v", err)
					continue
				}
				if env.Instance == r.instanceID {
					continue
				}
				handler(env.DocumentID, env.Change)
			}
		}
	}()
}

// Close tears down the Redis connection.
func (r *Relay) Close() error {
	return r.client.Close()
}
