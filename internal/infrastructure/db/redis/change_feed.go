package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/core/domain"
)

// ApplicationsChannel is the pub/sub channel carrying application changes.
const ApplicationsChannel = "hrportal:applications"

// ChangeFeed publishes application change events over Redis pub/sub so every
// API instance can push them to its connected HR dashboards.
type ChangeFeed struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewChangeFeed(client *redis.Client, log zerolog.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, log: log}
}

func (f *ChangeFeed) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := f.client.Publish(ctx, ApplicationsChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	return nil
}

// Subscribe forwards raw event payloads until ctx is done or the returned
// release function is called.
func (f *ChangeFeed) Subscribe(ctx context.Context) (<-chan []byte, func(), error) {
	pubsub := f.client.Subscribe(ctx, ApplicationsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", ApplicationsChannel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				default:
					f.log.Warn().Msg("change feed subscriber is slow, dropping event")
				}
			}
		}
	}()

	return out, cancel, nil
}
