package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cargarn1/MovieFan/internal/logging"
)

// ErrPublisherFull is returned by Publish when the outgoing buffer is full.
var ErrPublisherFull = errors.New("event buffer full")

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

// Publisher hands RoomEvents to RabbitMQ.  Publish only enqueues; Run drains
// the buffer on its own goroutine so request handling never waits on the
// broker.  Delivery is best effort: events that fail to publish are logged
// and dropped.
type Publisher struct {
	url    string
	queue  string
	events chan RoomEvent

	mu     sync.Mutex
	closed bool
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// NewPublisher builds a Publisher with room for buffer pending events.
func NewPublisher(url string, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{url: url, queue: RoomEventsQueue, events: make(chan RoomEvent, buffer)}
}

// Publish enqueues ev without blocking.
func (p *Publisher) Publish(_ context.Context, ev RoomEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublisherFull
	}
}

// Run publishes buffered events until ctx is cancelled or Close is called.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.closeChannel()
			return
		case ev, ok := <-p.events:
			if !ok {
				p.closeChannel()
				return
			}
			if err := p.send(ctx, ev); err != nil {
				logging.Warn().Err(err).
					Str("event_id", ev.ID).
					Str("type", string(ev.Type)).
					Uint64("room_id", ev.RoomID).
					Msg("rabbitmq: publish failed, event dropped")
			}
		}
	}
}

// Close stops accepting events and lets Run finish the buffered ones.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
}

func (p *Publisher) send(ctx context.Context, ev RoomEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	sendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := ch.PublishWithContext(sendCtx, "", p.queue, false, false, pub); err != nil {
		// Drop the connection so the next event redials.
		p.closeChannel()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel with the queue declared, dialing when
// the previous connection was lost.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeChannel()
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) closeChannel() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
