package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"stream-service/config"
	"stream-service/dto"
)

// EventsExchange carries row-change events (stream lifecycle, chat inserts,
// coach video go-live) to every service instance.
const EventsExchange = "stream_events"

type Publisher struct {
	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(EventsExchange, cfg.Kind, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}

	return &Publisher{ch: ch}, nil
}

// Publish serializes the event and emits it on the stream exchange. The
// channel is not safe for concurrent use, hence the mutex.
func (p *Publisher) Publish(ctx context.Context, routingKey string, event dto.ChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, EventsExchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
