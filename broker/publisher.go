package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// Publisher sends booking events to a durable topic exchange; the routing key is the event type.
type Publisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureConnection(); err != nil {
		return nil, err
	}
	return p, nil
}

// ensureConnection redials when the connection dropped. Callers hold p.mu.
func (p *Publisher) ensureConnection() error {
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		p.conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.channel = ch
	return nil
}

func (p *Publisher) Name() string { return "rabbitmq" }

func (p *Publisher) Notify(ctx context.Context, e events.Event) error {
	body, err := EncodeEvent(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureConnection(); err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		e.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.At,
			Type:         e.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	utils.InfoLogger.Debugf("Published %s for booking %d", e.Type, e.Booking.ID)
	return nil
}

// Message is the JSON body published for every booking event.
type Message struct {
	Event       string `json:"event"`
	BookingID   uint   `json:"booking_id"`
	UserID      uint   `json:"user_id"`
	TableID     uint   `json:"table_id"`
	BookingDate string `json:"booking_date"`
	TimeSlot    string `json:"time_slot"`
	GuestsCount int    `json:"guests_count"`
	Status      string `json:"status"`
	ActorID     uint   `json:"actor_id,omitempty"`
	At          string `json:"at"`
}

func EncodeEvent(e events.Event) ([]byte, error) {
	b := e.Booking
	msg := Message{
		Event:       e.Type,
		BookingID:   b.ID,
		UserID:      b.UserID,
		TableID:     b.TableID,
		BookingDate: b.BookingDate,
		TimeSlot:    string(b.TimeSlot),
		GuestsCount: b.GuestsCount,
		Status:      string(b.Status),
		ActorID:     e.ActorID,
		At:          e.At.Format(time.RFC3339),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return body, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil && err != amqp.ErrClosed {
			return err
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}
