// Package notify delivers short human-readable messages about board
// activity. Delivery is fire-and-forget: a failing or panicking sink never
// reaches the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier sends one notification.
type Notifier interface {
	Notify(title, message string)
}

// Message is the payload handed to sinks.
type Message struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Sink delivers a message and may fail.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// Dispatcher fans a notification out to every sink on its own goroutine.
type Dispatcher struct {
	sinks   []Sink
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		log:     log,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Notify returns immediately. Failures are logged.
func (d *Dispatcher) Notify(title, message string) {
	msg := Message{Title: title, Message: message, SentAt: d.now()}
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go d.deliver(sink, msg)
	}
}

// Wait blocks until every pending delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(sink Sink, msg Message) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("notification sink panicked", zap.Any("panic", r), zap.String("title", msg.Title))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := sink.Deliver(ctx, msg); err != nil {
		d.log.Warn("notification not delivered", zap.Error(err), zap.String("title", msg.Title))
	}
}

// LogSink writes notifications to the application log.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, msg Message) error {
	s.log.Info("notification", zap.String("title", msg.Title), zap.String("message", msg.Message))
	return nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) {}
