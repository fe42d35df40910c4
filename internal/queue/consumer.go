package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cargarn1/MovieFan/internal/logging"
)

// Consumer reads the room.events queue and appends one line per event to
// <LogDir>/rooms.log.
type Consumer struct {
	URL    string
	LogDir string
}

// NewConsumer returns a Consumer writing under logDir ("logs" when empty).
func NewConsumer(url, logDir string) *Consumer {
	if logDir == "" {
		logDir = "logs"
	}
	return &Consumer{URL: url, LogDir: logDir}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures trigger a reconnect with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logging.Warn().Err(err).Dur("retry_in", backoff).Msg("room-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("room-consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logging.Warn().Err(err).Msg("room-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(RoomEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(RoomEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				logging.Error().Err(err).Str("message_id", d.MessageId).Msg("room-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one delivery body and appends its log line.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev RoomEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" {
		return errors.New("event without type")
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "rooms.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human friendly line ending in '\n'.
func FormatLine(ev RoomEvent) string {
	at := ev.OccurredAt.UTC().Format(time.RFC3339)
	switch ev.Type {
	case RoomCreated:
		return fmt.Sprintf("[%s] Room created | room_id=%d | name=%q | movie_id=%d | creator_id=%d | event_id=%s\n",
			at, ev.RoomID, ev.RoomName, ev.MovieID, ev.UserID, ev.ID)
	case InvitationCreated:
		return fmt.Sprintf("[%s] Invitation created | invitation_id=%d | room_id=%d | inviter_id=%d | invitee_id=%d | event_id=%s\n",
			at, ev.InvitationID, ev.RoomID, ev.InviterID, ev.UserID, ev.ID)
	case MemberJoined:
		line := fmt.Sprintf("[%s] Member joined | room_id=%d | user_id=%d | members=%d",
			at, ev.RoomID, ev.UserID, ev.MemberCount)
		if ev.InvitationID != 0 {
			line += fmt.Sprintf(" | invitation_id=%d", ev.InvitationID)
		}
		return line + fmt.Sprintf(" | event_id=%s\n", ev.ID)
	default:
		return fmt.Sprintf("[%s] %s | room_id=%d | user_id=%d | event_id=%s\n",
			at, ev.Type, ev.RoomID, ev.UserID, ev.ID)
	}
}
