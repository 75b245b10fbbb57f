package notification

import (
	"context"
	"sync"

	"github.com/tillgreens/microfarm/internal/domain"
	"github.com/tillgreens/microfarm/internal/logger"
)

// Dispatcher delivers notifications. Email, chat and webhook transports
// live behind this interface; the planning engine only hands over the
// payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification) error
}

// LogDispatcher writes notifications to the structured log. The default
// transport for deployments with no outbound channel configured.
type LogDispatcher struct{}

// NewLogDispatcher creates a log-backed dispatcher
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Dispatch logs the notification at a level matching its severity
func (d *LogDispatcher) Dispatch(ctx context.Context, n domain.Notification) error {
	log := logger.FromContext(ctx)
	attrs := []any{
		"subject", n.Subject,
		"body", n.Body,
		"targets", n.Targets,
	}
	switch n.Severity {
	case domain.SeverityCritical:
		log.Error("Notification", attrs...)
	case domain.SeverityWarning:
		log.Warn("Notification", attrs...)
	default:
		log.Info("Notification", attrs...)
	}
	return nil
}

// MemoryDispatcher records notifications in memory for tests
type MemoryDispatcher struct {
	mu   sync.Mutex
	sent []domain.Notification
}

// NewMemoryDispatcher creates a recording dispatcher
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{}
}

// Dispatch records the notification
func (d *MemoryDispatcher) Dispatch(_ context.Context, n domain.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return nil
}

// Sent returns a copy of everything dispatched so far
func (d *MemoryDispatcher) Sent() []domain.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Notification, len(d.sent))
	copy(out, d.sent)
	return out
}
