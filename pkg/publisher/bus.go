package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BusMessage is one message received from a bus subscription.
type BusMessage struct {
	Topic   string
	Payload []byte
}

// Subscription is an active bus subscription. Messages is closed when the
// subscription closes.
type Subscription interface {
	Messages() <-chan BusMessage
	Close() error
}

// Bus is the pub/sub boundary. The core assumes at-least-once delivery and
// nothing about ordering.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topics ...string) (Subscription, error)
	Close() error
}

// RedisBus implements Bus on Redis pub/sub.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus creates a Redis-backed bus.
func NewRedisBus(client *redis.Client) (*RedisBus, error) {
	if client == nil {
		return nil, ErrBusNil
	}
	return &RedisBus{client: client}, nil
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		return errors.Join(ErrBusUnavailable, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topics ...string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topics...)

	// Wait for the subscription confirmation so a dead bus fails here
	// instead of silently delivering nothing.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Join(ErrBusUnavailable, fmt.Errorf("subscribe failed: %w", err))
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan BusMessage, 64),
	}
	go sub.pump(ctx)
	return sub, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan BusMessage
}

func (s *redisSubscription) Messages() <-chan BusMessage {
	return s.out
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}

func (s *redisSubscription) pump(ctx context.Context) {
	defer close(s.out)

	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			select {
			case s.out <- BusMessage{Topic: msg.Channel, Payload: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}
}
