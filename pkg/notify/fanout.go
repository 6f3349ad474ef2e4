package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-request/internal/logger"
)

const defaultDeliveryTimeout = 5 * time.Second

// Fanout is a Notifier that delivers every message to all configured sinks.
// Delivery failures are logged and never surface to the caller.
type Fanout struct {
	sinks   []Sink
	source  string
	timeout time.Duration
	log     logger.Logger
}

// NewFanout builds a notifier that fans out notices across sinks. source tags
// every notice with the emitting application.
func NewFanout(sinks []Sink, source string, log logger.Logger) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp, source: source, timeout: defaultDeliveryTimeout, log: logger.Ensure(log)}
}

func (f *Fanout) Create(message string, opts MessageOptions) {
	f.deliver(NewNotice(f.source, message, opts))
}

func (f *Fanout) Error(message string) {
	f.deliver(NewNotice(f.source, message, MessageOptions{Type: TypeError}))
}

func (f *Fanout) deliver(n Notice) {
	if f == nil || len(f.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	if _, err := f.Publish(ctx, n); err != nil {
		f.log.WarnObj("notification delivery failed", "notification_error", map[string]any{
			"message": n.Message,
			"error":   err.Error(),
		})
	}
}

// Publish forwards the notice to every sink.
// It returns the number of sinks that successfully handled the notice.
func (f *Fanout) Publish(ctx context.Context, n Notice) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range f.sinks {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close releases every sink.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.sinks)
}
