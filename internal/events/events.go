// Package events publishes domain events for downstream consumers such as
// notification and analytics workers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Event types.
const (
	ResumeAnalyzed    = "resume.analyzed"
	RoadmapCreated    = "roadmap.created"
	QuizCompleted     = "quiz.completed"
	InterviewFinished = "interview.round_completed"
	JobApplied        = "job.applied"
)

// Event is the JSON envelope written to the exchange.
type Event struct {
	Type       string    `json:"type"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// New returns an AMQP publisher when url is set, otherwise Noop.
func New(url, exchange string) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewAMQP(url, exchange)
}

// AMQPPublisher writes events to a topic exchange, keyed by event type.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// amqp channels are not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(p.exchange, ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

const publishTimeout = 5 * time.Second

// Dispatcher publishes in the background and tracks every send, so the
// underlying connection is only closed once in-flight events are written.
type Dispatcher struct {
	next Publisher
	wg   sync.WaitGroup
}

func NewDispatcher(next Publisher) *Dispatcher {
	if next == nil {
		next = Noop{}
	}
	return &Dispatcher{next: next}
}

// Publish queues ev and returns immediately. Failures are logged only.
func (d *Dispatcher) Publish(ctx context.Context, ev Event) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		send(ctx, d.next, ev)
	}()
	return nil
}

// Wait blocks until every queued event has been attempted or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending events, each bounded by publishTimeout, then closes
// the underlying publisher.
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	return d.next.Close()
}

// PublishAsync sends ev without blocking the caller. Failures are logged only;
// an event is never worth failing a user request. A Dispatcher tracks the
// send; any other publisher gets a detached goroutine.
func PublishAsync(ctx context.Context, p Publisher, ev Event) {
	switch p := p.(type) {
	case nil:
		return
	case *Dispatcher:
		_ = p.Publish(ctx, ev)
	default:
		go send(ctx, p, ev)
	}
}

func send(ctx context.Context, p Publisher, ev Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(pubCtx, ev); err != nil {
		slog.Warn("event publish failed", "type", ev.Type, "error", err)
	}
}
