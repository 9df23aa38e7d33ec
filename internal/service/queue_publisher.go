// Package service publishes catalog change events to RabbitMQ.  Failures
// are logged and returned; callers treat them as non-fatal.
package service

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/queue"
)

// dialTimeout bounds connect and handshake when the caller's context has
// no deadline.
const dialTimeout = 5 * time.Second

// QueuePublisher sends CatalogChangedEvent messages to the configured
// queue.  Each publish dials its own connection; admin writes are rare.
type QueuePublisher struct {
	cfg config.QueueConfig
}

func NewQueuePublisher(cfg config.QueueConfig) *QueuePublisher {
	return &QueuePublisher{cfg: cfg}
}

// Stamp fills EventID and At when they are empty.
func Stamp(ev *queue.CatalogChangedEvent) {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.At == "" {
		ev.At = time.Now().UTC().Format(time.RFC3339)
	}
}

// Publish marks the message persistent so it survives a broker restart.
func (p *QueuePublisher) Publish(ctx context.Context, ev queue.CatalogChangedEvent) error {
	if !p.cfg.Enabled {
		return nil
	}
	Stamp(&ev)

	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      contextDial(ctx),
	})
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// contextDial connects within ctx and keeps the AMQP handshake inside the
// same deadline.  The client clears the deadline once the connection opens.
func contextDial(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(dialTimeout)
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
